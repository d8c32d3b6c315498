package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// RedisStore keeps the library as one JSON document in Redis, so several
// servers can share it.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. Default is "supernova".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL expires the library after ttl without saves. Default 0 keeps it forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "supernova"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key() string {
	return s.prefix + ":library"
}

func (s *RedisStore) Load(ctx context.Context) ([]book.Book, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal library: %w", err)
	}
	return snap.Books, nil
}

func (s *RedisStore) Save(ctx context.Context, books []book.Book) error {
	if books == nil {
		books = []book.Book{}
	}
	data, err := json.Marshal(snapshot{Books: books})
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
