package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the session ID does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store keeps session payloads server-side, keyed by an opaque session ID
// that lives in a cookie. Payloads go through JSON, so the store stays
// agnostic of what callers keep in a session. Redis handles expiry via
// key TTLs.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(host, password string, db int, ttl time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:         host,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		ttl: ttl,
	}
}

// NewStoreWithClient wires an existing client; used by tests.
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Create stores the payload under a fresh session ID and returns the ID.
func (s *Store) Create(ctx context.Context, payload interface{}) (string, error) {
	sid := uuid.NewString()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal session payload: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sid), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return sid, nil
}

// Get resolves a session ID and unmarshals its payload into out. An expired
// or unknown session is ErrNotFound; anything else is an infrastructure
// failure.
func (s *Store) Get(ctx context.Context, sid string, out interface{}) error {
	data, err := s.client.Get(ctx, sessionKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode session payload: %w", err)
	}

	return nil
}

// Destroy removes the session. Destroying an absent session is not an error.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection for health checks.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
