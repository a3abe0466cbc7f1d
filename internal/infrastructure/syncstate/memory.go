// Package syncstate holds the shared mutable state of the profile-sync
// protocol: the per-direction exclusion set and the enrichment loop guard.
package syncstate

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/domain/identity"
)

type exclusionKey struct {
	customerID uuid.UUID
	direction  identity.SyncDirection
}

// InMemoryExclusionSet implements SyncExclusions with a process-local map.
// Suitable for single-instance deployments; multi-instance deployments
// should use RedisExclusionSet so all instances observe the same state.
type InMemoryExclusionSet struct {
	mu       sync.RWMutex
	excluded map[exclusionKey]struct{}
}

// NewInMemoryExclusionSet creates a new in-memory exclusion set
func NewInMemoryExclusionSet() *InMemoryExclusionSet {
	return &InMemoryExclusionSet{
		excluded: make(map[exclusionKey]struct{}),
	}
}

// IsExcluded reports whether the customer is excluded for the direction
func (s *InMemoryExclusionSet) IsExcluded(_ context.Context, customerID uuid.UUID, direction identity.SyncDirection) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.excluded[exclusionKey{customerID, direction}]
	return ok, nil
}

// Exclude marks the customer as excluded for the direction
func (s *InMemoryExclusionSet) Exclude(_ context.Context, customerID uuid.UUID, direction identity.SyncDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded[exclusionKey{customerID, direction}] = struct{}{}
	return nil
}

// UndoExclude removes the exclusion for the direction
func (s *InMemoryExclusionSet) UndoExclude(_ context.Context, customerID uuid.UUID, direction identity.SyncDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.excluded, exclusionKey{customerID, direction})
	return nil
}

var _ identity.SyncExclusions = (*InMemoryExclusionSet)(nil)

// ProcessedRegistry is the in-memory enrichment loop guard. Entries live
// only for the duration of the call chain that registered them; the
// enrichment cycle unregisters on exit so later loads of the same
// customer enrich again.
type ProcessedRegistry struct {
	mu         sync.RWMutex
	registered map[uuid.UUID]struct{}
}

// NewProcessedRegistry creates a new loop-guard registry
func NewProcessedRegistry() *ProcessedRegistry {
	return &ProcessedRegistry{
		registered: make(map[uuid.UUID]struct{}),
	}
}

// Register marks a customer as being enriched in the current call chain
func (r *ProcessedRegistry) Register(customerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered[customerID] = struct{}{}
}

// Unregister releases the customer when its enrichment cycle ends
func (r *ProcessedRegistry) Unregister(customerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registered, customerID)
}

// IsRegistered reports whether the customer is inside an enrichment cycle
func (r *ProcessedRegistry) IsRegistered(customerID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registered[customerID]
	return ok
}

// Reset clears the registry
func (r *ProcessedRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = make(map[uuid.UUID]struct{})
}

var _ identity.ProcessedRegistry = (*ProcessedRegistry)(nil)
