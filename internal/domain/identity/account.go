// Package identity defines the contracts for the third-party
// identity-management service that acts as the profile source of truth.
package identity

import (
	"context"
	"time"
)

// Account is the identity-service view of a user. It is an immutable
// value fetched per call; nothing in this process caches it.
type Account struct {
	UID         string            `json:"uid"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	DisplayName string            `json:"display_name,omitempty"`
	Locale      string            `json:"locale,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
}

// FullName returns the account holder's display-friendly name
func (a *Account) FullName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.LastName
	}
}

// AccountUpdate carries the profile fields pushed back to the
// identity service during a Local→External sync.
type AccountUpdate struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AccountRepository is the gateway to the identity service.
// Implementations fail with *ServiceCallError when the remote call errors.
type AccountRepository interface {
	// Get fetches the account for an external UID
	Get(ctx context.Context, uid string) (*Account, error)
	// Update pushes local profile changes back to the identity service
	Update(ctx context.Context, update AccountUpdate) error
}
