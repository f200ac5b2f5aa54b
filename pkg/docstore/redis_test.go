package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, maxRetries int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, maxRetries), mr
}

func TestRedisStore_ReadMissingCollection(t *testing.T) {
	s, _ := newRedisStore(t, 10)

	records, err := s.Read(context.Background(), "users")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRedisStore_UpdateStoresUnderPrefixedKey(t *testing.T) {
	s, mr := newRedisStore(t, 10)

	require.NoError(t, s.Update(context.Background(), "users", appendRecord("u1")))

	raw, err := mr.Get("docstore:users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"u1"}]`, raw)
}

func TestRedisStore_ConcurrentUpdatesKeepEveryWrite(t *testing.T) {
	const writers = 10
	s, _ := newRedisStore(t, writers*2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, "tokens", appendRecord(fmt.Sprint(i))))
		}(i)
	}
	wg.Wait()

	records, err := s.Read(ctx, "tokens")
	require.NoError(t, err)
	assert.Len(t, records, writers)
}

func TestRedisStore_GivesUpAfterRepeatedConflicts(t *testing.T) {
	s, mr := newRedisStore(t, 3)
	ctx := context.Background()

	rival := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rival.Close()

	attempts := 0
	err := s.Update(ctx, "users", func(records []json.RawMessage) ([]json.RawMessage, error) {
		attempts++
		require.NoError(t, rival.Set(ctx, "docstore:users", fmt.Sprintf(`[{"id":"rival%d"}]`, attempts), 0).Err())
		return append(records, json.RawMessage(`{"id":"mine"}`)), nil
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, attempts)
}

func TestRedisStore_Replace(t *testing.T) {
	s, _ := newRedisStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, "healthTips", []json.RawMessage{json.RawMessage(`{"id":"z"}`)}))

	records, err := s.Read(ctx, "healthTips")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NoError(t, s.Ping(ctx))
}
