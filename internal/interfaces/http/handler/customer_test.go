package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/application/profilesync"
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/shared"
	"github.com/storefront/profilesync/internal/infrastructure/event"
	"github.com/storefront/profilesync/internal/interfaces/http/dto"
	"github.com/storefront/profilesync/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// mockCustomerRepository is a testify mock of customer.Repository
type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	if cs, ok := args.Get(0).([]customer.Customer); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustomerRepository) FindByExternalUID(ctx context.Context, uid string) (*customer.Customer, error) {
	args := m.Called(ctx, uid)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newCustomerRouter(repo customer.Repository) *gin.Engine {
	bus := event.NewInMemoryEventBus(zap.NewNop())
	service := profilesync.NewCustomerService(repo, bus, zap.NewNop())
	h := NewCustomerHandler(service)

	engine := gin.New()
	group := engine.Group("/api/v1")
	group.POST("/customers", h.Create)
	group.GET("/customers", h.List)
	group.GET("/customers/:id", h.GetByID)
	group.PUT("/customers/:id", h.UpdateProfile)
	group.PUT("/customers/:id/account", h.LinkAccount)
	return engine
}

func performRequest(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func persistedCustomer(t *testing.T, uid string) *customer.Customer {
	t.Helper()
	c, err := customer.New("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	if uid != "" {
		require.NoError(t, c.LinkExternalAccount(uid))
	}
	c.MarkPersisted()
	c.ClearDomainEvents()
	return c
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("creates customer", func(t *testing.T) {
		repo := new(mockCustomerRepository)
		repo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", CreateCustomerRequest{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		repo := new(mockCustomerRepository)

		w := performRequest(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", CreateCustomerRequest{
			Email:     "not-an-email",
			FirstName: "Jane",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects malformed external uid", func(t *testing.T) {
		repo := new(mockCustomerRepository)

		w := performRequest(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", CreateCustomerRequest{
			Email:       "jane@example.com",
			FirstName:   "Jane",
			ExternalUID: "has spaces!",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("reports duplicate email as conflict", func(t *testing.T) {
		repo := new(mockCustomerRepository)
		repo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(true, nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", CreateCustomerRequest{
			Email:     "jane@example.com",
			FirstName: "Jane",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	})
}

func TestCustomerHandler_GetByID(t *testing.T) {
	t.Run("returns customer", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		w := performRequest(newCustomerRouter(repo), http.MethodGet, "/api/v1/customers/"+c.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		repo := new(mockCustomerRepository)

		w := performRequest(newCustomerRouter(repo), http.MethodGet, "/api/v1/customers/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "FindByID")
	})

	t.Run("maps missing customer to 404", func(t *testing.T) {
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		w := performRequest(newCustomerRouter(repo), http.MethodGet, "/api/v1/customers/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestCustomerHandler_List(t *testing.T) {
	t.Run("lists customers with pagination meta", func(t *testing.T) {
		c := persistedCustomer(t, "")
		repo := new(mockCustomerRepository)
		repo.On("FindAll", mock.Anything, mock.Anything).Return([]customer.Customer{*c}, nil)
		repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

		w := performRequest(newCustomerRouter(repo), http.MethodGet, "/api/v1/customers?page=1&page_size=10", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Equal(t, 10, resp.Meta.PageSize)
	})

	t.Run("rejects invalid order direction", func(t *testing.T) {
		repo := new(mockCustomerRepository)

		w := performRequest(newCustomerRouter(repo), http.MethodGet, "/api/v1/customers?order_dir=sideways", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "FindAll")
	})
}

func TestCustomerHandler_UpdateProfile(t *testing.T) {
	t.Run("updates profile fields", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("Save", mock.Anything, c).Return(nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/"+c.ID.String(), UpdateProfileRequest{
			Email:     "jane@example.com",
			FirstName: "Janet",
			LastName:  "Doe",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Janet", c.FirstName)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)

		w := performRequest(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/"+c.ID.String(), UpdateProfileRequest{
			Email:     "nope",
			FirstName: "Janet",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("reports email conflict", func(t *testing.T) {
		c := persistedCustomer(t, "u-123")
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/"+c.ID.String(), UpdateProfileRequest{
			Email:     "taken@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestCustomerHandler_LinkAccount(t *testing.T) {
	t.Run("links account", func(t *testing.T) {
		c := persistedCustomer(t, "")
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("FindByExternalUID", mock.Anything, "u-456").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, c).Return(nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/"+c.ID.String()+"/account", LinkAccountRequest{
			ExternalUID: "u-456",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u-456", c.ExternalUID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects uid held by another customer", func(t *testing.T) {
		c := persistedCustomer(t, "")
		other := persistedCustomer(t, "u-456")
		repo := new(mockCustomerRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("FindByExternalUID", mock.Anything, "u-456").Return(other, nil)

		w := performRequest(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/"+c.ID.String()+"/account", LinkAccountRequest{
			ExternalUID: "u-456",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		repo.AssertNotCalled(t, "Save")
	})
}
