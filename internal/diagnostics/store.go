package diagnostics

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zjrosen/twinview/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Kind classifies a stored entry.
type Kind string

const (
	KindCritical Kind = "critical"
	KindBrowser  Kind = "browser"
)

// Entry is one persisted diagnostic message.
type Entry struct {
	ID        string
	SessionID string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	SessionID string
	Kind      Kind
	Limit     int
}

// Store persists diagnostics in a sqlite database.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if needed) the database at path and applies
// pending migrations.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating diagnostics directory: %w", err)
	}
	if err := migrateUp(path); err != nil {
		return nil, fmt.Errorf("migrating diagnostics store: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening diagnostics store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	log.Debug(log.CatDiag, "diagnostics store opened", "path", path)
	return &Store{db: db, path: path}, nil
}

func migrateUp(path string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Record stores one entry. Missing ID and CreatedAt are filled in.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.Kind != KindCritical && e.Kind != KindBrowser {
		return Entry{}, fmt.Errorf("unknown diagnostics kind %q", e.Kind)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, session_id, kind, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, string(e.Kind), e.Message, e.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording diagnostics entry: %w", err)
	}
	return e, nil
}

// List returns entries matching f, oldest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, session_id, kind, message, created_at FROM entries WHERE 1=1`
	var args []any
	if f.SessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, f.SessionID)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	query += ` ORDER BY created_at, rowid`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing diagnostics entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning diagnostics entry: %w", err)
		}
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning diagnostics entries: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Watcher returns a Watcher that records every message under sessionID.
// Write failures are logged, never surfaced.
func (s *Store) Watcher(sessionID string) Watcher {
	return &storeWatcher{store: s, sessionID: sessionID, timeout: 2 * time.Second}
}

type storeWatcher struct {
	store     *Store
	sessionID string
	timeout   time.Duration
}

func (w *storeWatcher) LogCritical(msg string) { w.record(KindCritical, msg) }
func (w *storeWatcher) LogBrowser(msg string)  { w.record(KindBrowser, msg) }

func (w *storeWatcher) record(kind Kind, msg string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.store.Record(ctx, Entry{SessionID: w.sessionID, Kind: kind, Message: msg}); err != nil {
		log.ErrorErr(log.CatDiag, "failed to persist diagnostics entry", err, "kind", string(kind))
	}
}
