package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

// Collection names, shared with every document store backend
const (
	CollectionUsers      = "users"
	CollectionTokens     = "tokens"
	CollectionPatients   = "patients"
	CollectionProviders  = "providers"
	CollectionGoals      = "goals"
	CollectionReminders  = "reminders"
	CollectionCompliance = "complianceRecords"
	CollectionHealthTips = "healthTips"
	CollectionAuditLogs  = "auditLogs"
)

// collection is a typed view over one document store collection
type collection[T any] struct {
	store docstore.Store
	name  string
}

func newCollection[T any](store docstore.Store, name string) collection[T] {
	return collection[T]{store: store, name: name}
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	raw, err := c.store.Read(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.name, err)
	}
	return c.decode(raw)
}

// update runs fn against the decoded collection under the store's per-collection serialization.
// Records fn leaves unchanged are written back byte for byte. Changed records are patched
// field by field onto the stored document, so members T does not model are kept.
func (c collection[T]) update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.store.Update(ctx, c.name, func(raw []json.RawMessage) ([]json.RawMessage, error) {
		items, err := c.decode(raw)
		if err != nil {
			return nil, err
		}

		stored, err := c.index(raw, items)
		if err != nil {
			return nil, err
		}

		next, err := fn(items)
		if err != nil {
			return nil, err
		}

		return c.encode(next, stored)
	})
}

// storedRecord is a record as persisted next to its encoding before the mutation ran
type storedRecord struct {
	raw      json.RawMessage
	baseline []byte
}

func (c collection[T]) index(raw []json.RawMessage, items []T) (map[string][]storedRecord, error) {
	stored := make(map[string][]storedRecord, len(raw))
	for i := range items {
		baseline, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s[%d]: %w", c.name, i, err)
		}
		id := recordID(baseline)
		stored[id] = append(stored[id], storedRecord{raw: raw[i], baseline: baseline})
	}
	return stored, nil
}

func (c collection[T]) decode(raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s[%d]: %w", c.name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c collection[T]) encode(items []T, stored map[string][]storedRecord) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(items))
	for i := range items {
		data, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s[%d]: %w", c.name, i, err)
		}

		id := recordID(data)
		prev, ok := stored[id]
		if !ok || len(prev) == 0 {
			raw = append(raw, data)
			continue
		}
		stored[id] = prev[1:]

		if bytes.Equal(data, prev[0].baseline) {
			raw = append(raw, prev[0].raw)
			continue
		}

		patched, err := patchRecord(prev[0], data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s[%d]: %w", c.name, i, err)
		}
		raw = append(raw, patched)
	}
	return raw, nil
}

// patchRecord applies the difference between the baseline and the new encoding to the stored document
func patchRecord(prev storedRecord, data []byte) (json.RawMessage, error) {
	var doc, before, after map[string]json.RawMessage
	if err := json.Unmarshal(prev.raw, &doc); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prev.baseline, &before); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &after); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage, len(after))
	}

	for k := range before {
		if _, ok := after[k]; !ok {
			delete(doc, k)
		}
	}
	for k, v := range after {
		if old, ok := before[k]; ok && bytes.Equal(old, v) {
			continue
		}
		doc[k] = v
	}

	return json.Marshal(doc)
}

// recordID extracts the "id" member of an encoded record, empty when absent
func recordID(data []byte) string {
	var keyed struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &keyed)
	return keyed.ID
}
