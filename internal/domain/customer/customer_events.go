package customer

import (
	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated        = "CustomerCreated"
	EventTypeCustomerLoaded         = "CustomerLoaded"
	EventTypeCustomerProfileChanged = "CustomerProfileChanged"
	EventTypeCustomerExternalLinked = "CustomerExternalLinked"
	EventTypeCustomerDeleted        = "CustomerDeleted"
)

// CreatedEvent is published when a new customer is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(c *Customer) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
	}
}

// LoadedEvent is the lifecycle event published when a customer record is
// loaded. It carries the in-memory record so subscribers can enrich it
// before it is handed back for saving.
type LoadedEvent struct {
	shared.BaseDomainEvent
	Customer *Customer `json:"-"`
}

// NewLoadedEvent creates a new LoadedEvent
func NewLoadedEvent(c *Customer) *LoadedEvent {
	var aggID uuid.UUID
	if c != nil {
		aggID = c.ID
	}
	return &LoadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerLoaded, AggregateTypeCustomer, aggID),
		Customer:        c,
	}
}

// ProfileChangedEvent is published when profile fields change locally.
// The reverse-sync subscriber pushes these changes to the identity service
// unless the record is excluded for the Local→External direction.
type ProfileChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	ExternalUID string    `json:"external_uid,omitempty"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
}

// NewProfileChangedEvent creates a new ProfileChangedEvent
func NewProfileChangedEvent(c *Customer) *ProfileChangedEvent {
	return &ProfileChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerProfileChanged, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		ExternalUID:     c.ExternalUID,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
	}
}

// ExternalLinkedEvent is published when a customer is linked to an
// identity-service account
type ExternalLinkedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	ExternalUID string    `json:"external_uid"`
}

// NewExternalLinkedEvent creates a new ExternalLinkedEvent
func NewExternalLinkedEvent(c *Customer) *ExternalLinkedEvent {
	return &ExternalLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerExternalLinked, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		ExternalUID:     c.ExternalUID,
	}
}
