package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps collections in process memory. A persist hook, when set, is called with a
// snapshot of every collection after each successful write; a failing hook rolls the write back.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]json.RawMessage
	locks   map[string]*sync.Mutex
	writeMu sync.Mutex
	persist func(snapshot map[string][]json.RawMessage) error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]json.RawMessage),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) collectionLock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *MemoryStore) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRecords(s.data[collection]), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	l := s.collectionLock(collection)
	l.Lock()
	defer l.Unlock()

	current, err := s.Read(ctx, collection)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, next)
}

func (s *MemoryStore) Replace(ctx context.Context, collection string, records []json.RawMessage) error {
	l := s.collectionLock(collection)
	l.Lock()
	defer l.Unlock()

	return s.write(ctx, collection, records)
}

func (s *MemoryStore) write(ctx context.Context, collection string, records []json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	previous, existed := s.data[collection]
	s.data[collection] = cloneRecords(records)
	var snapshot map[string][]json.RawMessage
	if s.persist != nil {
		snapshot = make(map[string][]json.RawMessage, len(s.data))
		for name, recs := range s.data {
			snapshot[name] = recs
		}
	}
	s.mu.Unlock()

	if s.persist == nil {
		return nil
	}

	if err := s.persist(snapshot); err != nil {
		s.mu.Lock()
		if existed {
			s.data[collection] = previous
		} else {
			delete(s.data, collection)
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
