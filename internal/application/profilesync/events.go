package profilesync

import (
	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/domain/shared"
)

// Event type constants
const (
	EventTypeAccountFieldsMapping = "AccountFieldsMapping"
	EventTypeCustomerEnriched     = "CustomerEnriched"
)

// AccountFieldsMappingEvent is the extension point of the enrichment
// cycle. It carries the fetched account and the in-memory customer record
// so subscribers can map additional profile fields before the record is
// persisted. Subscribers mutate the record directly.
type AccountFieldsMappingEvent struct {
	shared.BaseDomainEvent
	Account  *identity.Account  `json:"-"`
	Customer *customer.Customer `json:"-"`
}

// NewAccountFieldsMappingEvent creates a new AccountFieldsMappingEvent
func NewAccountFieldsMappingEvent(account *identity.Account, c *customer.Customer) *AccountFieldsMappingEvent {
	return &AccountFieldsMappingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountFieldsMapping, customer.AggregateTypeCustomer, c.ID),
		Account:         account,
		Customer:        c,
	}
}

// CustomerEnrichedEvent is published after an enrichment cycle has
// persisted the record.
type CustomerEnrichedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	ExternalUID string    `json:"external_uid"`
}

// NewCustomerEnrichedEvent creates a new CustomerEnrichedEvent
func NewCustomerEnrichedEvent(c *customer.Customer) *CustomerEnrichedEvent {
	return &CustomerEnrichedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerEnriched, customer.AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		ExternalUID:     c.ExternalUID,
	}
}
