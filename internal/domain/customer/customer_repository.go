package customer

import (
	"context"

	"github.com/storefront/profilesync/internal/domain/shared"
)

// Repository defines the persistence contract for customers
type Repository interface {
	shared.Repository[Customer]
	FindByExternalUID(ctx context.Context, uid string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
