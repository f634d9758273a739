// Package history records interpreter runs in a local SQLite database.
package history

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

// ErrRunNotFound indicates the requested run doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusOK          = "ok"           // normal completion
	StatusSyntaxError = "syntax-error" // parse failure, nothing executed
	StatusCycleLimit  = "cycle-limit"  // budget exhausted mid-run
	StatusError       = "error"        // other failure, e.g. the output sink broke
)

// Run is one recorded interpreter run.
type Run struct {
	ID          string
	Program     string // the program source, verbatim
	Status      string
	Error       string // error text for failed runs, "" otherwise
	CyclesUsed  uint64
	OutputBytes int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Store handles SQLite storage for run history.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		program TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		cycles_used INTEGER NOT NULL,
		output_bytes INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts a run. An empty ID is filled in with a fresh UUID; the
// (possibly generated) ID is returned.
func (s *Store) Record(run *Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, program, status, error, cycles_used, output_bytes, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Program, run.Status, run.Error,
		int64(run.CyclesUsed), run.OutputBytes,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}

	return run.ID, nil
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, program, status, error, cycles_used, output_bytes, started_at, finished_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first, at most limit of them.
func (s *Store) List(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, program, status, error, cycles_used, output_bytes, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var cycles, started, finished int64

	err := row.Scan(&run.ID, &run.Program, &run.Status, &run.Error,
		&cycles, &run.OutputBytes, &started, &finished)
	if err != nil {
		return nil, err
	}

	run.CyclesUsed = uint64(cycles)
	run.StartedAt = time.UnixMilli(started)
	run.FinishedAt = time.UnixMilli(finished)
	return &run, nil
}
