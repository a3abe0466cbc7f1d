package profilesync

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/profilesync/internal/domain/customer"
)

// CreateCustomerRequest carries the fields for creating a customer
type CreateCustomerRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ExternalUID string `json:"external_uid,omitempty"`
}

// UpdateProfileRequest carries the profile fields a customer may change
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CustomerResponse is the application-level view of a customer
type CustomerResponse struct {
	ID          string          `json:"id"`
	ExternalUID string          `json:"external_uid,omitempty"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Status      string          `json:"status"`
	StoreCredit decimal.Decimal `json:"store_credit"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID.String(),
		ExternalUID: c.ExternalUID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Status:      string(c.Status),
		StoreCredit: c.StoreCredit,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of domain customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
