package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists every collection into a single JSON object file
// ({"users": [...], "tokens": [...]}), rewritten atomically on each write.
type FileStore struct {
	*MemoryStore
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or creates on first write) the JSON file at path
func NewFileStore(path string) (*FileStore, error) {
	mem := NewMemoryStore()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	case len(data) > 0:
		var doc map[string][]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
		}
		for name, records := range doc {
			if records == nil {
				records = []json.RawMessage{}
			}
			mem.data[name] = records
		}
	}

	fs := &FileStore{MemoryStore: mem, path: path}
	mem.persist = fs.flush
	return fs, nil
}

// Path returns the backing file location
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) flush(snapshot map[string][]json.RawMessage) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close store file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
