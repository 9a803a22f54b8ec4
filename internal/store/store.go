// Package store persists the single most recent daily summary document.
package store

import (
	"context"
	"database/sql"
	"log"
	"sync"

	"github.com/hpungsan/daybrief/internal/db"
	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/summary"
)

// Key is the fixed slot the daily summary is stored under.
const Key = "daily_summary"

// Store holds at most one summary document. Writes replace it wholesale.
type Store interface {
	// Get returns the stored document, or (nil, nil) when nothing usable is
	// stored. An undecodable value counts as absent.
	Get(ctx context.Context) (*summary.Document, error)

	// Put replaces the stored document.
	Put(ctx context.Context, doc *summary.Document) error
}

// SQLite stores the document in the kv table of the daybrief database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a Store backed by database.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

func (s *SQLite) Get(ctx context.Context) (*summary.Document, error) {
	e, err := db.GetEntry(ctx, s.db, Key)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	return decodeOrDrop(e.Value), nil
}

func (s *SQLite) Put(ctx context.Context, doc *summary.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	return db.PutEntry(ctx, s.db, Key, data)
}

// PutRaw stores bytes verbatim, bypassing encoding. nil is stored as an
// empty value, which Get treats as absent like any other undecodable bytes.
func (s *SQLite) PutRaw(ctx context.Context, data []byte) error {
	return db.PutEntry(ctx, s.db, Key, data)
}

// Clear removes the stored document.
func (s *SQLite) Clear(ctx context.Context) error {
	return db.DeleteEntry(ctx, s.db, Key)
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (*summary.Document, error) {
	m.mu.RLock()
	data := m.data
	m.mu.RUnlock()
	if data == nil {
		return nil, nil
	}
	return decodeOrDrop(data), nil
}

func (m *Memory) Put(_ context.Context, doc *summary.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// PutRaw stores bytes verbatim.
func (m *Memory) PutRaw(_ context.Context, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.data = cp
	m.mu.Unlock()
	return nil
}

// Clear removes the stored document.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

func encode(doc *summary.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.NewInvalidRequest("summary document is required")
	}
	data, err := summary.Encode(doc)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

func decodeOrDrop(data []byte) *summary.Document {
	doc, err := summary.Decode(data)
	if err != nil {
		log.Printf("store: stored summary is unreadable, treating as absent: %v", err)
		return nil
	}
	return doc
}
