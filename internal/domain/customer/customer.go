package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/profilesync/internal/domain/shared"
)

// Status represents the status of a customer account
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Customer is the storefront's own customer record. It is the aggregate
// root for profile-synchronization operations. The identity service may
// own some of its profile fields; ExternalUID links the two.
type Customer struct {
	shared.BaseAggregateRoot
	ExternalUID string
	FirstName   string
	LastName    string
	Email       string
	Status      Status
	StoreCredit decimal.Decimal
	Attributes  string

	// Lifecycle flags, never persisted. A record is "new" until its first
	// save and "deleted" once a delete is underway; enrichment skips both.
	isNew     bool
	isDeleted bool
}

// New creates a new customer with required fields
func New(email, firstName, lastName string) (*Customer, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(firstName, lastName); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          lastName,
		Email:             strings.ToLower(email),
		Status:            StatusActive,
		StoreCredit:       decimal.Zero,
		Attributes:        "{}",
		isNew:             true,
	}

	c.AddDomainEvent(NewCreatedEvent(c))

	return c, nil
}

// IsNew reports whether the record has never been persisted
func (c *Customer) IsNew() bool {
	return c.isNew
}

// IsDeleted reports whether a delete of the record is underway
func (c *Customer) IsDeleted() bool {
	return c.isDeleted
}

// MarkPersisted clears the new flag after a successful first save
func (c *Customer) MarkPersisted() {
	c.isNew = false
}

// MarkDeleted flags the record as being deleted
func (c *Customer) MarkDeleted() {
	c.isDeleted = true
}

// HasExternalAccount reports whether the record is linked to an
// identity-service account
func (c *Customer) HasExternalAccount() bool {
	return c.ExternalUID != ""
}

// LinkExternalAccount links the record to an identity-service account
func (c *Customer) LinkExternalAccount(uid string) error {
	if uid == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_UID", "External UID cannot be empty")
	}
	if len(uid) > 64 {
		return shared.NewDomainError("INVALID_EXTERNAL_UID", "External UID cannot exceed 64 characters")
	}

	c.ExternalUID = uid
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewExternalLinkedEvent(c))

	return nil
}

// UnlinkExternalAccount removes the identity-service link
func (c *Customer) UnlinkExternalAccount() {
	c.ExternalUID = ""
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetName sets the customer's name
func (c *Customer) SetName(firstName, lastName string) error {
	if err := validateName(firstName, lastName); err != nil {
		return err
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewProfileChangedEvent(c))

	return nil
}

// SetEmail sets the customer's email
func (c *Customer) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Email = strings.ToLower(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewProfileChangedEvent(c))

	return nil
}

// ApplyExternalProfile copies the required identity-service fields onto
// the record in one step. It bypasses per-field change events; the caller
// owns event publication for the enrichment cycle.
func (c *Customer) ApplyExternalProfile(firstName, lastName, email string) error {
	if err := validateName(firstName, lastName); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.Email = strings.ToLower(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetStoreCredit sets the customer's store credit balance
func (c *Customer) SetStoreCredit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Store credit cannot be negative")
	}

	c.StoreCredit = amount
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAttributes sets custom attributes as JSON
func (c *Customer) SetAttributes(attributes string) error {
	if attributes == "" {
		attributes = "{}"
	}
	trimmed := strings.TrimSpace(attributes)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return shared.NewDomainError("INVALID_ATTRIBUTES", "Attributes must be valid JSON object")
	}

	c.Attributes = trimmed
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Disable disables the customer account
func (c *Customer) Disable() error {
	if c.Status == StatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Customer is already disabled")
	}

	c.Status = StatusDisabled
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate re-activates the customer account
func (c *Customer) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}

	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

// FullName returns the customer's full name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validation functions

func validateName(firstName, lastName string) error {
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if len(firstName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "First name cannot exceed 100 characters")
	}
	if len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Last name cannot exceed 100 characters")
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
