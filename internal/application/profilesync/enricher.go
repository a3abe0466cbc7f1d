// Package profilesync implements the customer-profile synchronization
// protocol between the storefront and the identity service: enrichment of
// loaded customer records with identity-service data, and reverse push of
// local profile changes.
package profilesync

import (
	"context"
	"errors"

	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/domain/shared"
	"go.uber.org/zap"
)

// Enricher is the narrow capability interface of the enrichment cycle:
// the guard predicate, the remote fetch, and the field mapping step.
type Enricher interface {
	ShallEnrich(ctx context.Context, c *customer.Customer) bool
	Fetch(ctx context.Context, externalUID string) (*identity.Account, error)
	Enrich(ctx context.Context, c *customer.Customer, account *identity.Account) error
}

// CustomerEnricher enriches loaded customer records with identity-service
// account data. It subscribes to CustomerLoaded lifecycle events; the
// enrichment-triggered save is wrapped in a scoped Local→External sync
// exclusion so it cannot re-trigger a push back to the identity service.
type CustomerEnricher struct {
	accounts       identity.AccountRepository
	customers      customer.Repository
	exclusions     identity.SyncExclusions
	processed      identity.ProcessedRegistry
	publisher      shared.EventPublisher
	logger         *zap.Logger
	loggingEmail   string
	onMappingError MappingErrorPolicy
}

// EnricherOption configures a CustomerEnricher
type EnricherOption func(*CustomerEnricher)

// WithMappingErrorPolicy overrides the default log-and-continue policy
// for field-mapping subscriber failures
func WithMappingErrorPolicy(policy MappingErrorPolicy) EnricherOption {
	return func(e *CustomerEnricher) {
		e.onMappingError = policy
	}
}

// WithLoggingEmail sets the service email included in enrichment log
// entries, identifying which sync integration produced them
func WithLoggingEmail(email string) EnricherOption {
	return func(e *CustomerEnricher) {
		e.loggingEmail = email
	}
}

// NewCustomerEnricher creates a new CustomerEnricher
func NewCustomerEnricher(
	accounts identity.AccountRepository,
	customers customer.Repository,
	exclusions identity.SyncExclusions,
	processed identity.ProcessedRegistry,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...EnricherOption,
) *CustomerEnricher {
	e := &CustomerEnricher{
		accounts:       accounts,
		customers:      customers,
		exclusions:     exclusions,
		processed:      processed,
		publisher:      publisher,
		logger:         logger,
		onMappingError: ContinueOnMappingError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EventTypes returns the lifecycle events this handler subscribes to
func (e *CustomerEnricher) EventTypes() []string {
	return []string{customer.EventTypeCustomerLoaded}
}

// Handle is the passive entry point of the enrichment cycle. Fetch
// failures are logged and swallowed: enrichment on load is best effort
// and must never abort the customer-load flow. Persistence failures
// propagate.
func (e *CustomerEnricher) Handle(ctx context.Context, event shared.DomainEvent) error {
	loaded, ok := event.(*customer.LoadedEvent)
	if !ok {
		return nil
	}
	c := loaded.Customer

	err := e.Sync(ctx, c)
	var callErr *identity.ServiceCallError
	if errors.As(err, &callErr) {
		e.logger.Error("failed to fetch identity account, skipping enrichment",
			zap.String("customer_id", c.ID.String()),
			zap.String("external_uid", c.ExternalUID),
			zap.String("logging_email", e.loggingEmail),
			zap.Error(err),
		)
		return nil
	}
	return err
}

// Sync runs one enrichment cycle and reports every failure, including
// identity-service call errors. The manual trigger path calls it
// directly so the caller learns when the remote fetch failed.
func (e *CustomerEnricher) Sync(ctx context.Context, c *customer.Customer) error {
	if !e.ShallEnrich(ctx, c) {
		return nil
	}

	// the loop-guard entry belongs to this cycle; release it on exit so
	// a later load of the same customer enriches again
	defer e.processed.Unregister(c.ID)

	account, err := e.Fetch(ctx, c.ExternalUID)
	if err != nil {
		return err
	}

	if err := e.Enrich(ctx, c, account); err != nil {
		return err
	}

	return e.save(ctx, c)
}

// ShallEnrich is the enrichment guard: true iff the record exists, is not
// being deleted, has been persisted before, was not already enriched in
// this call chain, is linked to an identity-service account, and is not
// excluded for the External→Local direction.
func (e *CustomerEnricher) ShallEnrich(ctx context.Context, c *customer.Customer) bool {
	if c == nil || c.IsDeleted() || c.IsNew() {
		return false
	}
	if e.processed.IsRegistered(c.ID) {
		return false
	}
	if !c.HasExternalAccount() {
		return false
	}

	excluded, err := e.exclusions.IsExcluded(ctx, c.ID, identity.DirectionExternalToLocal)
	if err != nil {
		// a broken exclusion store must not silently disable enrichment
		e.logger.Warn("failed to read sync exclusions, assuming not excluded",
			zap.String("customer_id", c.ID.String()),
			zap.Error(err),
		)
		return true
	}
	return !excluded
}

// Fetch retrieves the identity-service account for an external UID.
// Failures surface as *identity.ServiceCallError.
func (e *CustomerEnricher) Fetch(ctx context.Context, externalUID string) (*identity.Account, error) {
	account, err := e.accounts.Get(ctx, externalUID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Enrich copies the required account fields onto the record and publishes
// the field-mapping extension event. The record is registered in the loop
// guard before any mutation so a subscriber-triggered reload cannot
// re-enter enrichment.
func (e *CustomerEnricher) Enrich(ctx context.Context, c *customer.Customer, account *identity.Account) error {
	e.processed.Register(c.ID)

	if err := MapRequiredFields(account, c); err != nil {
		return err
	}

	if err := e.publisher.Publish(ctx, NewAccountFieldsMappingEvent(account, c)); err != nil {
		e.logger.Warn("field-mapping subscriber failed",
			zap.String("customer_id", c.ID.String()),
			zap.String("external_uid", account.UID),
			zap.String("logging_email", e.loggingEmail),
			zap.Error(err),
		)
		if !e.onMappingError(err, MappingContext{CustomerID: c.ID, ExternalUID: account.UID}) {
			return identity.NewFieldMappingError(account.UID, err)
		}
	}

	return nil
}

// save persists the enriched record. The Local→External exclusion added
// here is removed whatever the save outcome; an exclusion that already
// existed belongs to another in-flight operation and is left untouched.
func (e *CustomerEnricher) save(ctx context.Context, c *customer.Customer) error {
	owned := false
	excluded, err := e.exclusions.IsExcluded(ctx, c.ID, identity.DirectionLocalToExternal)
	if err != nil {
		e.logger.Warn("failed to read sync exclusions before save",
			zap.String("customer_id", c.ID.String()),
			zap.Error(err),
		)
	}
	if err == nil && !excluded {
		if exErr := e.exclusions.Exclude(ctx, c.ID, identity.DirectionLocalToExternal); exErr != nil {
			e.logger.Warn("failed to set sync exclusion, save may trigger a reverse push",
				zap.String("customer_id", c.ID.String()),
				zap.Error(exErr),
			)
		} else {
			owned = true
		}
	}
	defer func() {
		if !owned {
			return
		}
		if undoErr := e.exclusions.UndoExclude(ctx, c.ID, identity.DirectionLocalToExternal); undoErr != nil {
			e.logger.Error("failed to remove sync exclusion, reverse sync stays suppressed",
				zap.String("customer_id", c.ID.String()),
				zap.Error(undoErr),
			)
		}
	}()

	if err := e.customers.Save(ctx, c); err != nil {
		return err
	}

	if pubErr := e.publisher.Publish(ctx, NewCustomerEnrichedEvent(c)); pubErr != nil {
		e.logger.Warn("enriched-event subscriber failed",
			zap.String("customer_id", c.ID.String()),
			zap.Error(pubErr),
		)
	}

	return nil
}

// Ensure CustomerEnricher implements both capability interfaces
var (
	_ Enricher            = (*CustomerEnricher)(nil)
	_ shared.EventHandler = (*CustomerEnricher)(nil)
)
