package profilesync

import (
	"context"

	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/domain/shared"
	"go.uber.org/zap"
)

// AccountPusher is the reverse-sync subscriber: it pushes local profile
// changes back to the identity service. Records currently excluded for
// the Local→External direction are skipped, which is how an
// enrichment-triggered save avoids echoing back to the identity service.
type AccountPusher struct {
	accounts   identity.AccountRepository
	exclusions identity.SyncExclusions
	logger     *zap.Logger
}

// NewAccountPusher creates a new AccountPusher
func NewAccountPusher(accounts identity.AccountRepository, exclusions identity.SyncExclusions, logger *zap.Logger) *AccountPusher {
	return &AccountPusher{
		accounts:   accounts,
		exclusions: exclusions,
		logger:     logger,
	}
}

// EventTypes returns the events this handler subscribes to
func (p *AccountPusher) EventTypes() []string {
	return []string{customer.EventTypeCustomerProfileChanged}
}

// Handle pushes the changed profile to the identity service. Push
// failures are logged, not raised: reverse sync is best effort and must
// not fail the local save that emitted the event.
func (p *AccountPusher) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*customer.ProfileChangedEvent)
	if !ok {
		return nil
	}
	if changed.ExternalUID == "" {
		return nil
	}

	excluded, err := p.exclusions.IsExcluded(ctx, changed.CustomerID, identity.DirectionLocalToExternal)
	if err != nil {
		p.logger.Warn("failed to read sync exclusions, skipping reverse push",
			zap.String("customer_id", changed.CustomerID.String()),
			zap.Error(err),
		)
		return nil
	}
	if excluded {
		p.logger.Debug("customer excluded from reverse sync, skipping push",
			zap.String("customer_id", changed.CustomerID.String()),
			zap.String("external_uid", changed.ExternalUID),
		)
		return nil
	}

	update := identity.AccountUpdate{
		UID:       changed.ExternalUID,
		Email:     changed.Email,
		FirstName: changed.FirstName,
		LastName:  changed.LastName,
	}
	if err := p.accounts.Update(ctx, update); err != nil {
		p.logger.Error("failed to push profile to identity service",
			zap.String("customer_id", changed.CustomerID.String()),
			zap.String("external_uid", changed.ExternalUID),
			zap.Error(err),
		)
		return nil
	}

	p.logger.Info("pushed profile to identity service",
		zap.String("customer_id", changed.CustomerID.String()),
		zap.String("external_uid", changed.ExternalUID),
	)
	return nil
}

var _ shared.EventHandler = (*AccountPusher)(nil)
