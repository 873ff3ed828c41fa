// Package store keeps one metadata row per processed policy file in a
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/avast/retry-go/v4"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("file not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	id           TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	status       TEXT NOT NULL,
	errors       INTEGER NOT NULL DEFAULT 0,
	empty        INTEGER NOT NULL DEFAULT 0,
	tables_found INTEGER NOT NULL DEFAULT 0,
	records      INTEGER NOT NULL DEFAULT 0,
	skipped_rows INTEGER NOT NULL DEFAULT 0,
	cert_id      TEXT NOT NULL DEFAULT '',
	processed_at TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS files_status ON files(status);
`

// FileRecord is the stored outcome for one input file.
type FileRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Status      string    `json:"status"`
	Errors      int       `json:"errors"`
	Empty       int       `json:"empty"`
	TablesFound int       `json:"tables_found"`
	Records     int       `json:"records"`
	SkippedRows int       `json:"skipped_rows"`
	CertID      string    `json:"cert_id,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	Message     string    `json:"message,omitempty"`
}

// ListOptions filters ListFiles. Zero values mean no filter.
type ListOptions struct {
	Status string
	Limit  int
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB

	attempts uint
	delay    time.Duration
}

// Open creates the database file and its parent directory if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir store: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, attempts: 3, delay: 100 * time.Millisecond}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutFile inserts rec or replaces the row with the same id. Busy errors
// are retried a few times before giving up.
func (s *Store) PutFile(ctx context.Context, rec FileRecord) error {
	if rec.ID == "" {
		return errors.New("put file: empty id")
	}
	if rec.CertID == "" {
		rec.CertID = CertID(rec.Filename)
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	err := retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx, `
				INSERT INTO files (id, filename, status, errors, empty, tables_found,
					records, skipped_rows, cert_id, processed_at, message)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					filename = excluded.filename,
					status = excluded.status,
					errors = excluded.errors,
					empty = excluded.empty,
					tables_found = excluded.tables_found,
					records = excluded.records,
					skipped_rows = excluded.skipped_rows,
					cert_id = excluded.cert_id,
					processed_at = excluded.processed_at,
					message = excluded.message`,
				rec.ID, rec.Filename, rec.Status, rec.Errors, rec.Empty, rec.TablesFound,
				rec.Records, rec.SkippedRows, rec.CertID,
				rec.ProcessedAt.UTC().Format(time.RFC3339Nano), rec.Message,
			)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("put file %s: %w", rec.ID, err)
	}
	return nil
}

// GetFile returns the row for id.
func (s *Store) GetFile(ctx context.Context, id string) (FileRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM files WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FileRecord{}, ErrNotFound
	}
	if err != nil {
		return FileRecord{}, fmt.Errorf("get file %s: %w", id, err)
	}
	return rec, nil
}

// ListFiles returns rows newest first.
func (s *Store) ListFiles(ctx context.Context, opts ListOptions) ([]FileRecord, error) {
	query := `SELECT ` + columns + ` FROM files`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, opts.Status)
	}
	query += ` ORDER BY processed_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of rows per status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM files GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count files: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

const columns = `id, filename, status, errors, empty, tables_found, records, skipped_rows, cert_id, processed_at, message`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (FileRecord, error) {
	var rec FileRecord
	var processed string
	err := sc.Scan(&rec.ID, &rec.Filename, &rec.Status, &rec.Errors, &rec.Empty,
		&rec.TablesFound, &rec.Records, &rec.SkippedRows, &rec.CertID, &processed, &rec.Message)
	if err != nil {
		return FileRecord{}, err
	}
	if rec.ProcessedAt, err = time.Parse(time.RFC3339Nano, processed); err != nil {
		return FileRecord{}, fmt.Errorf("parse processed_at %q: %w", processed, err)
	}
	return rec, nil
}

func isBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

// CertID returns the leading digits of the file's base name, the
// certificate number policy files are conventionally named after.
func CertID(filename string) string {
	base := filepath.Base(filename)
	end := strings.IndexFunc(base, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(base)
	}
	return base[:end]
}
