package syncstate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/profilesync/internal/domain/identity"
)

// defaultExclusionTTL caps how long an exclusion can live in Redis. An
// exclusion is normally removed by its holder within one save; the TTL is
// a backstop so a crashed holder cannot suppress reverse sync forever.
const defaultExclusionTTL = 5 * time.Minute

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisExclusionSet implements SyncExclusions on Redis. Suitable for
// distributed deployments where multiple instances must observe the same
// exclusion state.
type RedisExclusionSet struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisExclusionSet creates a new Redis-backed exclusion set
func NewRedisExclusionSet(cfg RedisConfig) (*RedisExclusionSet, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisExclusionSet{
		client:    client,
		keyPrefix: "sync:exclusion:",
		ttl:       defaultExclusionTTL,
	}, nil
}

// NewRedisExclusionSetWithClient creates an exclusion set with an existing
// Redis client. Useful for testing or when sharing a client across
// components.
func NewRedisExclusionSetWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisExclusionSet {
	if keyPrefix == "" {
		keyPrefix = "sync:exclusion:"
	}
	if ttl <= 0 {
		ttl = defaultExclusionTTL
	}
	return &RedisExclusionSet{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisExclusionSet) key(customerID uuid.UUID, direction identity.SyncDirection) string {
	return s.keyPrefix + string(direction) + ":" + customerID.String()
}

// IsExcluded reports whether the customer is excluded for the direction
func (s *RedisExclusionSet) IsExcluded(ctx context.Context, customerID uuid.UUID, direction identity.SyncDirection) (bool, error) {
	exists, err := s.client.Exists(ctx, s.key(customerID, direction)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check sync exclusion: %w", err)
	}
	return exists > 0, nil
}

// Exclude marks the customer as excluded for the direction
func (s *RedisExclusionSet) Exclude(ctx context.Context, customerID uuid.UUID, direction identity.SyncDirection) error {
	if err := s.client.Set(ctx, s.key(customerID, direction), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set sync exclusion: %w", err)
	}
	return nil
}

// UndoExclude removes the exclusion for the direction
func (s *RedisExclusionSet) UndoExclude(ctx context.Context, customerID uuid.UUID, direction identity.SyncDirection) error {
	if err := s.client.Del(ctx, s.key(customerID, direction)).Err(); err != nil {
		return fmt.Errorf("failed to remove sync exclusion: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisExclusionSet) Close() error {
	return s.client.Close()
}

var _ identity.SyncExclusions = (*RedisExclusionSet)(nil)
