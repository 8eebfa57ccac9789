// Package store persists selector search results in SQLite so runs over
// large archives can be compared later.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound indicates the requested run doesn't exist
var ErrRunNotFound = errors.New("run not found")

// Memory opens a private in-memory database.
const Memory = ":memory:"

// Run is one recorded search.
type Run struct {
	ID      string
	Query   string
	Started time.Time
}

// Finding is one match recorded for a run.
type Finding struct {
	Class  string
	Method string // name+desc
	Index  int    // chain start position in the method body
	Text   string // disassembly of the matched chain
}

// Store handles SQLite storage for runs and findings
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		started TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS findings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		class TEXT NOT NULL,
		method TEXT NOT NULL,
		idx INTEGER NOT NULL,
		text TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS findings_run ON findings(run_id)`,
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records a new run for query and returns its id.
func (s *Store) BeginRun(query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.Exec("INSERT INTO runs (id, query, started) VALUES (?, ?, ?)",
		id, query, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// Record appends findings to a run.
func (s *Store) Record(runID string, fs ...Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("looking up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	for _, f := range fs {
		_, err := tx.Exec("INSERT INTO findings (run_id, class, method, idx, text) VALUES (?, ?, ?, ?, ?)",
			runID, f.Class, f.Method, f.Index, f.Text)
		if err != nil {
			return fmt.Errorf("inserting finding: %w", err)
		}
	}
	return tx.Commit()
}

// Findings returns a run's findings in recording order.
func (s *Store) Findings(runID string) ([]Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.run(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT class, method, idx, text FROM findings WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Class, &f.Method, &f.Index, &f.Text); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Run returns the run with the given id.
func (s *Store) Run(runID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(runID)
}

func (s *Store) run(runID string) (Run, error) {
	var r Run
	var started string
	err := s.db.QueryRow("SELECT id, query, started FROM runs WHERE id = ?", runID).Scan(&r.ID, &r.Query, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return r, fmt.Errorf("querying run: %w", err)
	}
	r.Started, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return r, fmt.Errorf("parsing run start: %w", err)
	}
	return r, nil
}

// Runs lists every run, oldest first.
func (s *Store) Runs() ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, query, started FROM runs ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Query, &started); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing run start: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
