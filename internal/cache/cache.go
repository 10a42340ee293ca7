// Package cache keeps the last successful refresh in a local SQLite file so
// the task list can be shown without a network round trip.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskdeck/internal/service"
)

// ErrEmpty is returned by Load when no snapshot has been saved yet.
var ErrEmpty = errors.New("no cached snapshot")

// Snapshot is a saved refresh.
type Snapshot struct {
	Tasks     []service.Task
	Stats     service.Stats
	FetchedAt time.Time
}

// Store is the snapshot cache.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const tasksDDL = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TEXT DEFAULT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	category TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	const snapshotDDL = `
CREATE TABLE IF NOT EXISTS snapshot (
	singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
	total INTEGER NOT NULL,
	completed INTEGER NOT NULL,
	pending INTEGER NOT NULL,
	in_progress INTEGER NOT NULL,
	overdue INTEGER NOT NULL,
	completion_rate REAL NOT NULL,
	fetched_at TEXT NOT NULL
);`
	for _, ddl := range []string{tasksDDL, snapshotDDL} {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces the cached tasks and stats in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, all []service.Task, stats service.Stats, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks;`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks
		(position, id, title, description, due_date, priority, status, category, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range all {
		due := sql.NullString{}
		if t.DueDate != nil {
			due = sql.NullString{String: t.DueDate.UTC().Format(time.RFC3339), Valid: true}
		}
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, t.ID, t.Title, t.Description, due,
			string(t.Priority), string(t.Status), string(t.Category), string(tagsJSON),
			t.CreatedAt.UTC().Format(time.RFC3339Nano), t.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("cache task %s: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO snapshot
		(singleton, total, completed, pending, in_progress, overdue, completion_rate, fetched_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?);`,
		stats.Total, stats.Completed, stats.Pending, stats.InProgress, stats.Overdue, stats.CompletionRate,
		fetchedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the saved snapshot, or ErrEmpty.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var fetched string
	err := s.db.QueryRowContext(ctx, `SELECT total, completed, pending, in_progress, overdue, completion_rate, fetched_at
		FROM snapshot WHERE singleton = 1;`).Scan(
		&snap.Stats.Total, &snap.Stats.Completed, &snap.Stats.Pending, &snap.Stats.InProgress,
		&snap.Stats.Overdue, &snap.Stats.CompletionRate, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrEmpty
	}
	if err != nil {
		return Snapshot{}, err
	}
	if snap.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched); err != nil {
		return Snapshot{}, fmt.Errorf("cache fetched_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, due_date, priority, status, category, tags, created_at, updated_at
		FROM tasks ORDER BY position;`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	snap.Tasks = []service.Task{}
	for rows.Next() {
		var t service.Task
		var due sql.NullString
		var prio, status, cat, tags, created, updated string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &due, &prio, &status, &cat, &tags, &created, &updated); err != nil {
			return Snapshot{}, err
		}
		t.Priority = service.Priority(prio)
		t.Status = service.Status(status)
		t.Category = service.Category(cat)
		if due.Valid {
			if d, err := time.Parse(time.RFC3339, due.String); err == nil {
				t.DueDate = &d
			}
		}
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return Snapshot{}, fmt.Errorf("cache tags of task %s: %w", t.ID, err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		snap.Tasks = append(snap.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
