package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/profilesync/internal/application/profilesync"
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/infrastructure/event"
	"github.com/storefront/profilesync/internal/infrastructure/syncstate"
	"github.com/storefront/profilesync/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// mockAccountRepository is a mock identity.AccountRepository
type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Get(ctx context.Context, uid string) (*identity.Account, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *mockAccountRepository) Update(ctx context.Context, update identity.AccountUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func newSyncRouter(repo customer.Repository, accounts identity.AccountRepository) *gin.Engine {
	bus := event.NewInMemoryEventBus(zap.NewNop())
	enricher := profilesync.NewCustomerEnricher(
		accounts, repo,
		syncstate.NewInMemoryExclusionSet(), syncstate.NewProcessedRegistry(),
		bus, zap.NewNop(),
	)
	service := profilesync.NewSyncService(repo, enricher, zap.NewNop())
	h := NewSyncHandler(service)

	engine := gin.New()
	engine.POST("/api/v1/customers/:id/sync", h.TriggerSync)
	return engine
}

func TestSyncHandler_TriggerSync(t *testing.T) {
	t.Run("runs the enrichment cycle for a linked customer", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)
		accounts := new(mockAccountRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("Save", mock.Anything, c).Return(nil)
		accounts.On("Get", mock.Anything, "u-123").Return(&identity.Account{
			UID:       "u-123",
			Email:     "remote@example.com",
			FirstName: "Remote",
			LastName:  "Name",
		}, nil)

		w := performRequest(newSyncRouter(repo, accounts), http.MethodPost, "/api/v1/customers/"+c.ID.String()+"/sync", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Remote", c.FirstName)
		repo.AssertCalled(t, "Save", mock.Anything, c)
	})

	t.Run("rejects unlinked customer", func(t *testing.T) {
		c := persistedCustomer(t, "")
		repo := new(mockCustomerRepository)
		accounts := new(mockAccountRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		w := performRequest(newSyncRouter(repo, accounts), http.MethodPost, "/api/v1/customers/"+c.ID.String()+"/sync", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotLinked, resp.Error.Code)
		accounts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("surfaces identity-service failure as bad gateway", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)
		accounts := new(mockAccountRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		accounts.On("Get", mock.Anything, "u-123").Return(nil,
			identity.NewServiceCallError("get account", "u-123", assert.AnError))

		w := performRequest(newSyncRouter(repo, accounts), http.MethodPost, "/api/v1/customers/"+c.ID.String()+"/sync", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		repo := new(mockCustomerRepository)
		accounts := new(mockAccountRepository)

		w := performRequest(newSyncRouter(repo, accounts), http.MethodPost, "/api/v1/customers/oops/sync", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "FindByID")
	})
}
