// Package store is the SQLite-backed catalog the browser talks to over HTTP.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rescp17/stageCatalog/pkg/catalog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists catalog events.
type Store struct {
	db    *sql.DB
	newID func() string
}

// Open opens (creating if necessary) the database at path and brings its
// schema up to date. Use ":memory:" for a throwaway catalog.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, newID: uuid.NewString}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every embedded up migration. The migrate instance is not
// closed because that would close the shared *sql.DB as well.
func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer src.Close()

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	version, _, _ := m.Version()
	slog.Info("Catalog schema migrated", "version", version)
	return nil
}

const selectEvents = `SELECT id, title, date, time, cover, composer, type FROM events`

// List returns the events visible under filter in creation order.
func (s *Store) List(ctx context.Context, filter catalog.Filter) ([]catalog.Event, error) {
	query, args := selectEvents+` ORDER BY seq`, []any{}
	if kind, scoped := filter.Kind(); scoped {
		query, args = selectEvents+` WHERE type = ? ORDER BY seq`, []any{string(kind)}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []catalog.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// Get returns the event with the given id or catalog.ErrNotFound.
func (s *Store) Get(ctx context.Context, id catalog.ID) (catalog.Event, error) {
	row := s.db.QueryRowContext(ctx, selectEvents+` WHERE id = ?`, string(id))
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Event{}, fmt.Errorf("event %s: %w", id, catalog.ErrNotFound)
	}
	return e, err
}

// Create validates c, stores it under a fresh id and returns the stored event.
func (s *Store) Create(ctx context.Context, c catalog.Candidate) (catalog.Event, error) {
	if err := c.Validate(); err != nil {
		return catalog.Event{}, err
	}
	e := c.Event(catalog.ID(s.newID()))
	if err := s.insert(ctx, s.db, e); err != nil {
		return catalog.Event{}, err
	}
	slog.Info("Event created", "id", e.ID, "title", e.Title, "type", e.Type)
	return e, nil
}

// Delete removes the event with the given id.
func (s *Store) Delete(ctx context.Context, id catalog.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("event %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// seedFile is the json-server db.json layout.
type seedFile struct {
	Events []catalog.Event `json:"events"`
}

// Seed loads events from a db.json style document. Events keep their ids;
// ids already present are skipped. It returns how many events were added.
func (s *Store) Seed(ctx context.Context, r io.Reader) (int, error) {
	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return 0, fmt.Errorf("failed to decode seed data: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for i, e := range seed.Events {
		if e.ID == "" {
			e.ID = catalog.ID(s.newID())
		}
		if !e.Type.Valid() {
			return 0, fmt.Errorf("seed event %d (%q): unknown type %q", i, e.Title, e.Type)
		}
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`, string(e.ID)).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check seed event %s: %w", e.ID, err)
		}
		if exists {
			continue
		}
		if err := s.insert(ctx, tx, e); err != nil {
			return 0, err
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return added, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insert(ctx context.Context, db execer, e catalog.Event) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO events (id, title, date, time, cover, composer, type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), e.Title, e.Date, e.Time, e.Cover, e.Composer, string(e.Type))
	if err != nil {
		return fmt.Errorf("failed to insert event %q: %w", e.Title, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (catalog.Event, error) {
	var e catalog.Event
	var id, kind string
	if err := row.Scan(&id, &e.Title, &e.Date, &e.Time, &e.Cover, &e.Composer, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan event: %w", err)
	}
	e.ID = catalog.ID(id)
	e.Type = catalog.Kind(kind)
	return e, nil
}
