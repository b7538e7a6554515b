// Package store persists zone exchange documents in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/zoner/pkg/zone"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no zone has the requested id.
var ErrNotFound = errors.New("store: zone not found")

const schema = `
CREATE TABLE IF NOT EXISTS zones (
    id         TEXT PRIMARY KEY,
    doc        TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store is a table of zone documents keyed by zone id.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens (creating if needed) the database at path and applies the
// schema. A nil logger uses the logrus standard logger.
func Open(ctx context.Context, path string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	log.WithField("path", path).Debug("zone store opened")
	return &Store{db: db, log: log}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts doc or replaces the document stored under its id.
func (s *Store) Save(ctx context.Context, doc zone.JSON) error {
	if doc.ID == "" {
		return errors.New("store: zone id is empty")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", doc.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO zones (id, doc) VALUES (?, ?)
        ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP
    `, doc.ID, string(data))
	if err != nil {
		return fmt.Errorf("store: save %s: %w", doc.ID, err)
	}
	s.log.WithField("id", doc.ID).Debug("zone saved")
	return nil
}

// Get returns the document stored under id.
func (s *Store) Get(ctx context.Context, id string) (zone.JSON, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM zones WHERE id = ?`, id)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zone.JSON{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return zone.JSON{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	return decode(id, data)
}

// List returns every stored document ordered by id.
func (s *Store) List(ctx context.Context) ([]zone.JSON, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, doc FROM zones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	docs := []zone.JSON{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		doc, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return docs, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.log.WithField("id", id).Debug("zone deleted")
	return nil
}

func decode(id, data string) (zone.JSON, error) {
	var doc zone.JSON
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return zone.JSON{}, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return doc, nil
}
