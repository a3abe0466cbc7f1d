package syncstate

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryExclusionSet(t *testing.T) {
	ctx := context.Background()
	set := NewInMemoryExclusionSet()
	id := uuid.New()

	t.Run("not excluded by default", func(t *testing.T) {
		excluded, err := set.IsExcluded(ctx, id, identity.DirectionLocalToExternal)
		require.NoError(t, err)
		assert.False(t, excluded)
	})

	t.Run("exclude then undo", func(t *testing.T) {
		require.NoError(t, set.Exclude(ctx, id, identity.DirectionLocalToExternal))

		excluded, err := set.IsExcluded(ctx, id, identity.DirectionLocalToExternal)
		require.NoError(t, err)
		assert.True(t, excluded)

		require.NoError(t, set.UndoExclude(ctx, id, identity.DirectionLocalToExternal))

		excluded, err = set.IsExcluded(ctx, id, identity.DirectionLocalToExternal)
		require.NoError(t, err)
		assert.False(t, excluded)
	})

	t.Run("directions are independent", func(t *testing.T) {
		require.NoError(t, set.Exclude(ctx, id, identity.DirectionExternalToLocal))

		excluded, err := set.IsExcluded(ctx, id, identity.DirectionLocalToExternal)
		require.NoError(t, err)
		assert.False(t, excluded)

		excluded, err = set.IsExcluded(ctx, id, identity.DirectionExternalToLocal)
		require.NoError(t, err)
		assert.True(t, excluded)
	})

	t.Run("undo of absent exclusion is a no-op", func(t *testing.T) {
		require.NoError(t, set.UndoExclude(ctx, uuid.New(), identity.DirectionLocalToExternal))
	})
}

func TestInMemoryExclusionSet_Concurrent(t *testing.T) {
	ctx := context.Background()
	set := NewInMemoryExclusionSet()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			_ = set.Exclude(ctx, id, identity.DirectionLocalToExternal)
			_, _ = set.IsExcluded(ctx, id, identity.DirectionLocalToExternal)
			_ = set.UndoExclude(ctx, id, identity.DirectionLocalToExternal)
		}()
	}
	wg.Wait()
}

func TestProcessedRegistry(t *testing.T) {
	registry := NewProcessedRegistry()
	id := uuid.New()

	assert.False(t, registry.IsRegistered(id))

	registry.Register(id)
	assert.True(t, registry.IsRegistered(id))
	assert.False(t, registry.IsRegistered(uuid.New()))

	registry.Unregister(id)
	assert.False(t, registry.IsRegistered(id), "unregistered id must be free for the next cycle")

	// unregister of an absent id is a no-op
	registry.Unregister(uuid.New())

	registry.Register(id)
	registry.Reset()
	assert.False(t, registry.IsRegistered(id))
}
