package profilesync

import (
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/identity"
)

// MapRequiredFields copies the identity-service fields every enrichment
// cycle must sync (first name, last name, email) onto the local record.
// Additional fields are mapped by AccountFieldsMappingEvent subscribers.
func MapRequiredFields(account *identity.Account, c *customer.Customer) error {
	firstName := account.FirstName
	lastName := account.LastName
	if firstName == "" && account.DisplayName != "" {
		firstName = account.DisplayName
	}

	email := account.Email
	if email == "" {
		email = c.Email
	}

	return c.ApplyExternalProfile(firstName, lastName, email)
}
