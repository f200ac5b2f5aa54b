package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendRecord(v string) UpdateFunc {
	return func(records []json.RawMessage) ([]json.RawMessage, error) {
		return append(records, json.RawMessage(fmt.Sprintf(`{"id":%q}`, v))), nil
	}
}

func TestMemoryStore_ReadMissingCollection(t *testing.T) {
	s := NewMemoryStore()

	records, err := s.Read(context.Background(), "users")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMemoryStore_ConcurrentUpdatesKeepEveryWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const writers = 100
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

func TestMemoryStore_UpdateErrorLeavesCollectionUntouched(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "users", appendRecord("a")))

	boom := errors.New("boom")
	err := s.Update(ctx, "users", func(records []json.RawMessage) ([]json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := s.Read(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMemoryStore_ReadReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "users", appendRecord("a")))

	records, err := s.Read(ctx, "users")
	require.NoError(t, err)
	records[0][2] = 'X'

	again, err := s.Read(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(again[0]))
}

func TestMemoryStore_PersistFailureRollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "users", appendRecord("a")))

	s.persist = func(map[string][]json.RawMessage) error {
		return errors.New("disk full")
	}

	err := s.Update(ctx, "users", appendRecord("b"))
	require.Error(t, err)
	err = s.Update(ctx, "goals", appendRecord("g"))
	require.Error(t, err)

	users, err := s.Read(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	goals, err := s.Read(ctx, "goals")
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestMemoryStore_Replace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "tips", appendRecord("a")))

	require.NoError(t, s.Replace(ctx, "tips", []json.RawMessage{json.RawMessage(`{"id":"z"}`)}))

	records, err := s.Read(ctx, "tips")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"id":"z"}`, string(records[0]))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Update(ctx, "users", appendRecord("a")), context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
