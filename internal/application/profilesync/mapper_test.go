package profilesync

import (
	"testing"

	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRequiredFields(t *testing.T) {
	t.Run("copies name and email", func(t *testing.T) {
		c := persistedCustomer(t, "u123")

		require.NoError(t, MapRequiredFields(testAccount(), c))
		assert.Equal(t, "A", c.FirstName)
		assert.Equal(t, "B", c.LastName)
		assert.Equal(t, "a@b.com", c.Email)
	})

	t.Run("falls back to display name", func(t *testing.T) {
		c := persistedCustomer(t, "u123")
		account := &identity.Account{
			UID:         "u123",
			Email:       "a@b.com",
			DisplayName: "Ada",
		}

		require.NoError(t, MapRequiredFields(account, c))
		assert.Equal(t, "Ada", c.FirstName)
	})

	t.Run("keeps local email when the account has none", func(t *testing.T) {
		c := persistedCustomer(t, "u123")
		account := &identity.Account{UID: "u123", FirstName: "A", LastName: "B"}

		require.NoError(t, MapRequiredFields(account, c))
		assert.Equal(t, "old@example.com", c.Email)
	})

	t.Run("rejects accounts without any usable name", func(t *testing.T) {
		c := persistedCustomer(t, "u123")
		account := &identity.Account{UID: "u123", Email: "a@b.com"}

		err := MapRequiredFields(account, c)
		require.Error(t, err)
		assert.Equal(t, "Old", c.FirstName)
	})
}
