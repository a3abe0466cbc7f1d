package identity

import (
	"context"

	"github.com/google/uuid"
)

// SyncDirection identifies which way profile data flows between the
// storefront and the identity service.
type SyncDirection string

const (
	// DirectionExternalToLocal pulls identity-service data onto the local record
	DirectionExternalToLocal SyncDirection = "external_to_local"
	// DirectionLocalToExternal pushes local changes back to the identity service
	DirectionLocalToExternal SyncDirection = "local_to_external"
)

// Valid reports whether the direction is one of the known values
func (d SyncDirection) Valid() bool {
	return d == DirectionExternalToLocal || d == DirectionLocalToExternal
}

// SyncExclusions tracks (customer, direction) pairs that are temporarily
// excluded from synchronization. An exclusion is held only for the duration
// of the save it protects; the holder that added it must remove it
// afterward even when the save fails. Single writer per customer id at a
// time; cross-process coordination is up to the implementation.
type SyncExclusions interface {
	// IsExcluded reports whether the customer is excluded for the direction
	IsExcluded(ctx context.Context, customerID uuid.UUID, direction SyncDirection) (bool, error)
	// Exclude marks the customer as excluded for the direction
	Exclude(ctx context.Context, customerID uuid.UUID, direction SyncDirection) error
	// UndoExclude removes the exclusion for the direction
	UndoExclude(ctx context.Context, customerID uuid.UUID, direction SyncDirection) error
}

// ProcessedRegistry is the enrichment loop guard: a set of customer ids
// currently inside an enrichment cycle, preventing re-entrant enrichment
// of the same record within one call chain. The chain that registers an
// id removes it when the cycle ends, whatever the outcome; a later load
// of the same customer starts a fresh cycle.
type ProcessedRegistry interface {
	// Register marks a customer as being enriched in the current call chain
	Register(customerID uuid.UUID)
	// Unregister releases the customer when its enrichment cycle ends
	Unregister(customerID uuid.UUID)
	// IsRegistered reports whether the customer is inside an enrichment cycle
	IsRegistered(customerID uuid.UUID) bool
	// Reset clears the registry
	Reset()
}
