// Package docstore provides a durable mapping from collection name to an ordered list of
// JSON records. Every backend serializes read-modify-write cycles per collection, so two
// concurrent Update calls on the same collection never drop each other's writes.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrConflict is returned when an optimistic update kept losing the race for a collection
var ErrConflict = errors.New("docstore: collection update conflict")

// UpdateFunc receives the current records of a collection and returns the records to persist.
// Returning an error aborts the update without writing. Optimistic backends may invoke fn more
// than once, so it must not have side effects beyond its return value and captured results.
type UpdateFunc func(records []json.RawMessage) ([]json.RawMessage, error)

// Store is a collection-oriented JSON document store
type Store interface {
	// Read returns every record of the collection; a missing collection reads as empty
	Read(ctx context.Context, collection string) ([]json.RawMessage, error)

	// Update atomically replaces the collection with the result of fn
	Update(ctx context.Context, collection string, fn UpdateFunc) error

	// Replace unconditionally overwrites the collection
	Replace(ctx context.Context, collection string, records []json.RawMessage) error

	Ping(ctx context.Context) error
	Close() error
}

func cloneRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}

func decodeArray(data []byte) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func encodeArray(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	return json.Marshal(records)
}
