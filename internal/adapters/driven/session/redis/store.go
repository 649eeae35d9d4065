// Package redis provides a Redis-backed session store for deployments
// that need conversation history to survive process restarts or be
// shared across instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

const (
	// DefaultMaxHistory is the number of exchanges kept per session.
	DefaultMaxHistory = 2

	// DefaultTTL expires idle sessions after a day.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "lectern:session:"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Config holds Redis session store configuration.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password for authenticated servers. Empty means no auth.
	Password string

	// DB is the Redis database number.
	DB int

	// MaxHistory caps the number of exchanges kept per session.
	MaxHistory int

	// TTL is how long an idle session lives before Redis expires it.
	TTL time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:       "localhost:6379",
		MaxHistory: DefaultMaxHistory,
		TTL:        DefaultTTL,
	}
}

// Store is a Redis-backed implementation of driven.SessionStore. Each
// session is a Redis list of JSON-encoded exchanges, trimmed on append.
type Store struct {
	client     *redis.Client
	maxHistory int
	ttl        time.Duration
}

// NewStore creates a new Redis session store.
func NewStore(cfg Config) *Store {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Store{
		client:     client,
		maxHistory: cfg.MaxHistory,
		ttl:        cfg.TTL,
	}
}

// Ping checks connectivity to the Redis server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Append records an exchange and trims the session to the most recent
// maxHistory entries.
func (s *Store) Append(ctx context.Context, sessionID string, exchange domain.Exchange) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("encoding exchange: %w", err)
	}

	key := keyPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.maxHistory), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending exchange: %w", err)
	}
	return nil
}

// Exchanges returns the session's history in chronological order. An
// unknown session yields an empty slice.
func (s *Store) Exchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	values, err := s.client.LRange(ctx, keyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	exchanges := make([]domain.Exchange, 0, len(values))
	for _, v := range values {
		var exchange domain.Exchange
		if err := json.Unmarshal([]byte(v), &exchange); err != nil {
			return nil, fmt.Errorf("decoding exchange: %w", err)
		}
		exchanges = append(exchanges, exchange)
	}
	return exchanges, nil
}

// Clear removes all history for the session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
