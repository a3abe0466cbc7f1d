package profilesync

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-facing operations of the sync service
type CustomerService struct {
	customers customer.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers customer.Repository, publisher shared.EventPublisher, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a new customer, optionally pre-linked to an
// identity-service account
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customers.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists")
	}

	c, err := customer.New(req.Email, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	if req.ExternalUID != "" {
		if err := c.LinkExternalAccount(req.ExternalUID); err != nil {
			return nil, err
		}
	}

	if err := s.customers.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	response := ToCustomerResponse(c)
	return &response, nil
}

// publishEvents publishes the aggregate's buffered domain events after a
// successful save. Subscriber failures are logged, not raised: the local
// save already happened.
func (s *CustomerService) publishEvents(ctx context.Context, c *customer.Customer) {
	for _, e := range c.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.Warn("domain-event subscriber failed",
				zap.String("event_type", e.EventType()),
				zap.String("customer_id", c.ID.String()),
				zap.Error(err),
			)
		}
	}
	c.ClearDomainEvents()
}

// GetByID loads a customer and publishes the load lifecycle event; the
// enrichment subscriber may sync identity-service fields onto the record
// before it is returned.
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, customer.NewLoadedEvent(c)); err != nil {
		// enrichment is best effort; the load itself succeeded
		s.logger.Warn("customer-load subscriber failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	customers, err := s.customers.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// LinkExternalAccount links a customer to an identity-service account
func (s *CustomerService) LinkExternalAccount(ctx context.Context, customerID uuid.UUID, externalUID string) (*CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if other, err := s.customers.FindByExternalUID(ctx, externalUID); err == nil && other.ID != c.ID {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "External account is linked to another customer")
	}

	if err := c.LinkExternalAccount(externalUID); err != nil {
		return nil, err
	}

	if err := s.customers.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	response := ToCustomerResponse(c)
	return &response, nil
}

// UpdateProfile changes a customer's profile fields. The buffered
// profile-changed event published after the save is what drives the
// reverse push to the identity service.
func (s *CustomerService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req UpdateProfileRequest) (*CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.FirstName != c.FirstName || req.LastName != c.LastName {
		if err := c.SetName(req.FirstName, req.LastName); err != nil {
			return nil, err
		}
		changed = true
	}
	if !strings.EqualFold(req.Email, c.Email) {
		if exists, err := s.customers.ExistsByEmail(ctx, req.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists")
		}
		if err := c.SetEmail(req.Email); err != nil {
			return nil, err
		}
		changed = true
	}

	if changed {
		if err := s.customers.Save(ctx, c); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, c)
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// ProfileSyncer runs one enrichment cycle for a loaded customer record,
// reporting identity-service call failures instead of swallowing them.
type ProfileSyncer interface {
	Sync(ctx context.Context, c *customer.Customer) error
}

// SyncService triggers enrichment cycles on demand
type SyncService struct {
	customers customer.Repository
	syncer    ProfileSyncer
	logger    *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(customers customer.Repository, syncer ProfileSyncer, logger *zap.Logger) *SyncService {
	return &SyncService{
		customers: customers,
		syncer:    syncer,
		logger:    logger,
	}
}

// TriggerSync loads a customer and runs the enrichment cycle directly.
// Unlike the passive load path, fetch failures propagate so the caller
// learns the sync did not complete.
func (s *SyncService) TriggerSync(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !c.HasExternalAccount() {
		return nil, shared.NewDomainError("NOT_LINKED", "Customer is not linked to an external account")
	}

	if err := s.syncer.Sync(ctx, c); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	return &response, nil
}
