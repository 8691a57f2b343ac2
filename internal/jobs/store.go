package jobs

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"autosub/internal/config"
	"autosub/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases must be cleared after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database under the log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.LogDir, "jobs.db"))
}

// OpenPath opens a job database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

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

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Create inserts a new pending job and returns it with a fresh ID.
func (s *Store) Create(ctx context.Context, source, sourceLanguage string, targetLanguages []string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:              uuid.NewString(),
		Source:          source,
		SourceLanguage:  sourceLanguage,
		TargetLanguages: targetLanguages,
		Status:          StatusPending,
		Manifest:        map[string]string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	targets, err := json.Marshal(job.TargetLanguages)
	if err != nil {
		return nil, fmt.Errorf("encode target languages: %w", err)
	}
	err = s.execWithRetry(ctx,
		`INSERT INTO jobs (id, source, source_language, target_languages, status, stage, error_message, manifest, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', '', '{}', ?, ?)`,
		job.ID, job.Source, job.SourceLanguage, string(targets), string(job.Status),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Update persists the mutable fields of a job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	manifest, err := json.Marshal(job.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	job.UpdatedAt = time.Now().UTC()
	return s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, stage = ?, error_message = ?, manifest = ?, updated_at = ? WHERE id = ?`,
		string(job.Status), job.Stage, job.ErrorMessage, string(manifest),
		job.UpdatedAt.Format(time.RFC3339Nano), job.ID)
}

// Get returns a job by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, source_language, target_languages, status, stage, error_message, manifest, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "get", "no job with id "+id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

// List returns jobs ordered newest first.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, source_language, target_languages, status, stage, error_message, manifest, created_at, updated_at
		 FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job       Job
		targets   string
		manifest  string
		status    string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&job.ID, &job.Source, &job.SourceLanguage, &targets, &status,
		&job.Stage, &job.ErrorMessage, &manifest, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	if err := json.Unmarshal([]byte(targets), &job.TargetLanguages); err != nil {
		return nil, fmt.Errorf("decode target languages: %w", err)
	}
	if err := json.Unmarshal([]byte(manifest), &job.Manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		job.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		job.UpdatedAt = parsed
	}
	return &job, nil
}

// ArtifactsOnDisk filters a job's manifest to entries whose files still exist.
// Non-path entries such as the recorded duration pass through untouched. The
// check never blocks on the pipeline; it only stats the filesystem.
func ArtifactsOnDisk(job *Job) map[string]string {
	out := make(map[string]string, len(job.Manifest))
	for label, value := range job.Manifest {
		if label == DurationLabel {
			out[label] = value
			continue
		}
		if _, err := os.Stat(value); err == nil {
			out[label] = value
		}
	}
	return out
}
