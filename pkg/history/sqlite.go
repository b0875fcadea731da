package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long SQLite waits on a locked database
// before returning SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// DefaultRecentLimit is applied when Recent is called with a
// non-positive limit.
const DefaultRecentLimit = 100

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	spec_name     TEXT NOT NULL,
	spec_kind     TEXT NOT NULL,
	valid         INTEGER NOT NULL,
	error_count   INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	info_count    INTEGER NOT NULL,
	summary       TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// SQLiteStore persists run records in a SQLite database file.
// Timestamps are stored as Unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex

	saveStmt   *sql.Stmt
	recentStmt *sql.Stmt
	pruneStmt  *sql.Stmt

	closeOnce sync.Once
	closeErr  error
}

// NewSQLiteStore opens the database at path, creating the file and its
// parent directory if needed, and prepares the store's statements.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes anyway. A second connection only buys
	// SQLITE_BUSY errors, so cap the pool at one.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}

	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", DefaultBusyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to configure database: %w", err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	var prepErr error
	prepare := func(query string) *sql.Stmt {
		if prepErr != nil {
			return nil
		}
		stmt, err := s.db.Prepare(query)
		if err != nil {
			prepErr = fmt.Errorf("failed to prepare statement: %w", err)
		}
		return stmt
	}

	s.saveStmt = prepare(`
		INSERT INTO runs (id, kind, spec_name, spec_kind, valid,
			error_count, warning_count, info_count, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	s.recentStmt = prepare(`
		SELECT id, kind, spec_name, spec_kind, valid,
			error_count, warning_count, info_count, summary, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`)
	s.pruneStmt = prepare(`DELETE FROM runs WHERE created_at < ?`)

	return prepErr
}

// Save persists a single run record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveStmt.ExecContext(ctx,
		record.ID,
		string(record.Kind),
		record.SpecName,
		record.SpecKind,
		record.Valid,
		record.ErrorCount,
		record.WarningCount,
		record.InfoCount,
		record.Summary,
		record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec       Record
			kind      string
			createdAt int64
		)
		err := rows.Scan(&rec.ID, &kind, &rec.SpecName, &rec.SpecKind,
			&rec.Valid, &rec.ErrorCount, &rec.WarningCount, &rec.InfoCount,
			&rec.Summary, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.Kind = Kind(kind)
		rec.CreatedAt = time.Unix(0, createdAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run records: %w", err)
	}

	return records, nil
}

// Prune deletes records created before olderThan and returns the number
// of records removed.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune run records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned records: %w", err)
	}
	return deleted, nil
}

// Close checkpoints the WAL and closes the database. It is safe to call
// more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for _, stmt := range []*sql.Stmt{s.saveStmt, s.recentStmt, s.pruneStmt} {
			if stmt != nil {
				_ = stmt.Close()
			}
		}

		// Final checkpoint folds the WAL into the database file.
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")

		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
