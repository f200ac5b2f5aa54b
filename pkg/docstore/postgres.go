package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore keeps one row per collection in the documents table (see migrations/).
// Updates run inside a transaction holding a row lock on the collection.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	query := `SELECT records FROM documents WHERE collection = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	records, err := decodeArray(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return records, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ensure := `
		INSERT INTO documents (collection, records)
		VALUES ($1, '[]'::jsonb)
		ON CONFLICT (collection) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, ensure, collection); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", collection, err)
	}

	var raw []byte
	lock := `SELECT records FROM documents WHERE collection = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lock, collection).Scan(&raw); err != nil {
		return fmt.Errorf("failed to lock collection %s: %w", collection, err)
	}

	current, err := decodeArray(raw)
	if err != nil {
		return fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	data, err := encodeArray(next)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	update := `UPDATE documents SET records = $2::jsonb, updated_at = NOW() WHERE collection = $1`
	if _, err := tx.ExecContext(ctx, update, collection, string(data)); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, collection string, records []json.RawMessage) error {
	data, err := encodeArray(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	query := `
		INSERT INTO documents (collection, records, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (collection) DO UPDATE SET records = EXCLUDED.records, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, collection, string(data)); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the database handle is owned by the caller
func (s *PostgresStore) Close() error {
	return nil
}
