package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status values stored for each run.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Record is the persisted summary of one run.
type Record struct {
	ID             int64
	RunID          string
	Device         string
	Media          string
	Status         string
	FailedStage    string
	Kind           string
	ExitCode       int
	Message        string
	Files          int
	Mismatches     int
	RemountOutcome string
	RemountWaited  time.Duration
	MountCreated   bool
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration is the wall time of the run.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stats aggregates pass/fail counts.
type Stats struct {
	Total  int
	Passed int
	Failed int
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy reruns a database statement while SQLite reports the file
// locked by a concurrent soak run.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts rec and returns its row id.
func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	if strings.TrimSpace(rec.RunID) == "" {
		return 0, errors.New("run id is required")
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, `INSERT INTO runs (
			run_id, device, media, status, failed_stage, error_kind, exit_code, message,
			files, mismatches, remount_outcome, remount_waited_ms, mount_created,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Device, rec.Media, rec.Status,
			nullableString(rec.FailedStage), nullableString(rec.Kind), rec.ExitCode, nullableString(rec.Message),
			rec.Files, rec.Mismatches, nullableString(rec.RemountOutcome), rec.RemountWaited.Milliseconds(),
			boolToInt(rec.MountCreated),
			formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the newest runs first. A non-positive limit returns all rows.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, run_id, device, media, status, failed_stage, error_kind, exit_code,
		message, files, mismatches, remount_outcome, remount_waited_ms, mount_created,
		started_at, finished_at
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// Stats counts passed and failed runs, optionally for one device.
func (s *Store) Stats(ctx context.Context, device string) (Stats, error) {
	query := "SELECT status, COUNT(*) FROM runs"
	args := []any{}
	if device = strings.TrimSpace(device); device != "" {
		query += " WHERE device = ?"
		args = append(args, device)
	}
	query += " GROUP BY status"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch status {
		case StatusPassed:
			stats.Passed += count
		case StatusFailed:
			stats.Failed += count
		}
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec                                 Record
		failedStage, kind, message, remount sql.NullString
		waitedMS, mountCreated              int64
		startedAt, finishedAt               string
	)
	if err := row.Scan(
		&rec.ID, &rec.RunID, &rec.Device, &rec.Media, &rec.Status,
		&failedStage, &kind, &rec.ExitCode, &message,
		&rec.Files, &rec.Mismatches, &remount, &waitedMS, &mountCreated,
		&startedAt, &finishedAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan run: %w", err)
	}
	rec.FailedStage = failedStage.String
	rec.Kind = kind.String
	rec.Message = message.String
	rec.RemountOutcome = remount.String
	rec.RemountWaited = time.Duration(waitedMS) * time.Millisecond
	rec.MountCreated = mountCreated != 0
	rec.StartedAt = parseTime(startedAt)
	rec.FinishedAt = parseTime(finishedAt)
	return rec, nil
}

func nullableString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// timeLayout has fixed-width fractional seconds so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
