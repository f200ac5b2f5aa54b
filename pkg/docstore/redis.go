package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "docstore:"

// RedisStore keeps each collection as a JSON array under one key. Updates are optimistic:
// WATCH the key, compute, and commit in MULTI/EXEC, retrying when another writer got there first.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	maxRetries int
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps a connected client
func NewRedisStore(client *redis.Client, maxRetries int) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &RedisStore{
		client:     client,
		prefix:     defaultRedisPrefix,
		maxRetries: maxRetries,
	}
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *RedisStore) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	data, err := s.client.Get(ctx, s.key(collection)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	records, err := decodeArray(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return records, nil
}

func (s *RedisStore) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	key := s.key(collection)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read collection %s: %w", collection, err)
		}

		current, err := decodeArray(data)
		if err != nil {
			return fmt.Errorf("failed to decode collection %s: %w", collection, err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		encoded, err := encodeArray(next)
		if err != nil {
			return fmt.Errorf("failed to encode collection %s: %w", collection, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("collection %s: %w", collection, ErrConflict)
}

func (s *RedisStore) Replace(ctx context.Context, collection string, records []json.RawMessage) error {
	encoded, err := encodeArray(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	if err := s.client.Set(ctx, s.key(collection), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client is owned by the caller
func (s *RedisStore) Close() error {
	return nil
}
