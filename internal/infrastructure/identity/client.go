// Package identity provides the HTTP gateway to the third-party
// identity-management service.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the identity service (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrInvalidUID indicates an invalid external UID format
var ErrInvalidUID = errors.New("identity: invalid external uid")

// ClientConfig holds the identity-service connection settings
type ClientConfig struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// Validate checks the configuration
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("identity: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("identity: invalid base URL: %w", err)
	}
	if c.APIToken == "" {
		return errors.New("identity: API token is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// Client implements domain identity.AccountRepository against the
// identity service's REST API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new identity-service client
func NewClient(config *ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// validateUID rejects uids that cannot appear in a URL path segment
func validateUID(uid string) error {
	if uid == "" {
		return ErrInvalidUID
	}
	if strings.ContainsAny(uid, "/?#%") {
		return fmt.Errorf("%w: %q", ErrInvalidUID, uid)
	}
	return nil
}

// Get fetches the account for an external UID
func (c *Client) Get(ctx context.Context, uid string) (*domain.Account, error) {
	if err := validateUID(uid); err != nil {
		return nil, domain.NewServiceCallError("get", uid, err)
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s", strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(uid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewServiceCallError("get", uid, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewServiceCallError("get", uid, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, domain.NewServiceCallError("get", uid, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewServiceCallError("get", uid, shared.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewServiceCallError("get", uid, c.apiError(resp.StatusCode, body))
	}

	var account domain.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, domain.NewServiceCallError("get", uid, fmt.Errorf("decode response: %w", err))
	}
	if account.UID == "" {
		account.UID = uid
	}

	return &account, nil
}

// Update pushes local profile changes back to the identity service
func (c *Client) Update(ctx context.Context, update domain.AccountUpdate) error {
	if err := validateUID(update.UID); err != nil {
		return domain.NewServiceCallError("update", update.UID, err)
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return domain.NewServiceCallError("update", update.UID, err)
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s", strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(update.UID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.NewServiceCallError("update", update.UID, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewServiceCallError("update", update.UID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.NewServiceCallError("update", update.UID, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return domain.NewServiceCallError("update", update.UID, c.apiError(resp.StatusCode, body))
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Accept", "application/json")
}

// apiError builds an error from a non-success API response, preferring
// the service's own error message when the body carries one
func (c *Client) apiError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return fmt.Errorf("status %d: %s", status, payload.Message)
		}
		if payload.Error != "" {
			return fmt.Errorf("status %d: %s", status, payload.Error)
		}
	}
	return fmt.Errorf("unexpected status %d", status)
}

var _ domain.AccountRepository = (*Client)(nil)
