package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite journal store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(10 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		operation TEXT NOT NULL,
		status TEXT NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// Append inserts a transfer record
func (s *SQLiteStore) Append(record *Record) error {
	record.CreatedAt = time.Now()

	// Serialize writes to avoid SQLITE_BUSY from multiple concurrent workers
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.retryOnBusy(func() error {
		_, err := s.db.Exec(`
		INSERT INTO transfers (bucket, key, operation, status, bytes, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.Bucket,
			record.Key,
			record.Operation,
			record.Status,
			record.Bytes,
			record.LastError,
			record.CreatedAt,
		)
		return err
	})
}

// Recent returns the most recent records, newest first
func (s *SQLiteStore) Recent(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
	SELECT id, bucket, key, operation, status, bytes, last_error, created_at
	FROM transfers ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		var record Record
		var lastError sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.Bucket,
			&record.Key,
			&record.Operation,
			&record.Status,
			&record.Bytes,
			&lastError,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastError.Valid {
			record.LastError = lastError.String
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// retryOnBusy retries the operation if SQLite is busy
func (s *SQLiteStore) retryOnBusy(operation func() error) error {
	maxRetries := 10
	baseDelay := 50 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !isSQLiteBusyError(err) {
			return err
		}

		delay := baseDelay * time.Duration(1<<uint(attempt))
		time.Sleep(delay)
	}

	return err
}

// isSQLiteBusyError checks if the error is a SQLite busy error
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "database is locked") ||
		strings.Contains(errorStr, "SQLITE_BUSY")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
