package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/application/profilesync"
	"github.com/storefront/profilesync/internal/domain/shared"
	"github.com/storefront/profilesync/internal/interfaces/http/dto"
	"github.com/storefront/profilesync/internal/interfaces/http/middleware"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *profilesync.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *profilesync.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Email       string `json:"email" binding:"required,email,max=200"`
	FirstName   string `json:"first_name" binding:"required,min=1,max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	ExternalUID string `json:"external_uid" binding:"omitempty,external_uid"`
}

// LinkAccountRequest represents a request to link a customer to an
// identity-service account
type LinkAccountRequest struct {
	ExternalUID string `json:"external_uid" binding:"required,external_uid"`
}

// UpdateProfileRequest represents a request to change profile fields
type UpdateProfileRequest struct {
	Email     string `json:"email" binding:"required,email,max=200"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// ListCustomersRequest represents customer list query parameters
type ListCustomersRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active disabled"`
	Linked *bool  `form:"linked"`
}

// Create creates a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := profilesync.CreateCustomerRequest{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ExternalUID: req.ExternalUID,
	}

	created, err := h.customerService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID retrieves a customer by ID. Loading through this endpoint runs
// the enrichment subscriber before the response is assembled.
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	found, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, found)
}

// List retrieves customers with filtering and pagination
func (h *CustomerHandler) List(c *gin.Context) {
	req := ListCustomersRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Linked != nil {
		filter.Filters["linked"] = *req.Linked
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// UpdateProfile changes a customer's profile fields. A successful change
// is pushed back to the identity service by the reverse-sync subscriber.
func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	updated, err := h.customerService.UpdateProfile(c.Request.Context(), customerID, profilesync.UpdateProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// LinkAccount links a customer to an identity-service account
func (h *CustomerHandler) LinkAccount(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	linked, err := h.customerService.LinkExternalAccount(c.Request.Context(), customerID, req.ExternalUID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, linked)
}
