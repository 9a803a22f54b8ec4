package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/daybrief/internal/errors"
)

// Entry is one row of the key/value table.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt int64
}

// GetEntry retrieves the entry stored under key.
// Returns (nil, nil) when no entry exists.
func GetEntry(ctx context.Context, db *sql.DB, key string) (*Entry, error) {
	row := db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM kv WHERE key = ?`, key)

	var e Entry
	err := row.Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &e, nil
}

// PutEntry inserts or replaces the entry stored under key. A nil or empty
// value is stored as an empty blob.
func PutEntry(ctx context.Context, db *sql.DB, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, COALESCE(?, X''), ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteEntry removes the entry stored under key. Deleting a missing key is not an error.
func DeleteEntry(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
