package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the archive file name inside the database directory.
const FileName = "hncrawl.db"

// ErrNotFound is returned when a read-only open finds no archive.
var ErrNotFound = errors.New("archive database not found")

// ArchiveDB stores crawl history in a single SQLite file.
type ArchiveDB struct {
	// db is the underlying connection pool, limited to one connection.
	db *sql.DB

	// dbPath is the path to the SQLite file.
	dbPath string
}

// Options configures how the archive is opened.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	// The history command opens with false so it never creates an empty
	// archive as a side effect.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the crawl command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		mode = "rw"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes the concurrent writers of a cycle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &ArchiveDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return a, nil
}

// Path returns the database file path.
func (a *ArchiveDB) Path() string {
	return a.dbPath
}

// Close closes the database.
func (a *ArchiveDB) Close() error {
	return a.db.Close()
}

func (a *ArchiveDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		iterations INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		iteration INTEGER NOT NULL,
		index_ok INTEGER NOT NULL,
		found INTEGER NOT NULL,
		new_count INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		UNIQUE(run_id, iteration)
	);

	CREATE TABLE IF NOT EXISTS submissions (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		href TEXT NOT NULL,
		dir TEXT NOT NULL,
		seen_at TEXT NOT NULL,
		PRIMARY KEY(run_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_id ON submissions(id);

	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		submission_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		path TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resources_run ON resources(run_id);
	CREATE INDEX IF NOT EXISTS idx_resources_submission ON resources(submission_id);
	`

	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// timestampFormats lists formats accepted when reading timestamps back.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp returns the zero time when s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
