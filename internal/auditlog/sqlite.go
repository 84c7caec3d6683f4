package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite. It is the audit
// backend in lite mode, where no Postgres is available.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite audit store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSQLiteSchema creates the audit table and indexes.
func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		correlation_id TEXT DEFAULT '',
		method TEXT NOT NULL,
		patient_age INTEGER NOT NULL,
		patient_sex TEXT NOT NULL,
		overall_percent REAL,
		overall_category TEXT DEFAULT '',
		methods_applied INTEGER NOT NULL DEFAULT 0,
		warning_count INTEGER NOT NULL DEFAULT 0,
		client_ip TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_session_id ON audit_entries(session_id);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_entries(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry scans a row into an Entry struct.
func scanEntry(s scanner) (*Entry, error) {
	e := &Entry{}
	var percent sql.NullFloat64

	err := s.Scan(
		&e.ID, &e.SessionID, &e.CorrelationID, &e.Method,
		&e.PatientAge, &e.PatientSex, &percent, &e.OverallCategory,
		&e.MethodsApplied, &e.WarningCount, &e.ClientIP, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if percent.Valid {
		e.OverallPercent = &percent.Float64
	}
	return e, nil
}

// Record appends an audit entry.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			session_id, correlation_id, method,
			patient_age, patient_sex, overall_percent, overall_category,
			methods_applied, warning_count, client_ip, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.SessionID,
		entry.CorrelationID,
		entry.Method,
		entry.PatientAge,
		entry.PatientSex,
		entry.OverallPercent,
		entry.OverallCategory,
		entry.MethodsApplied,
		entry.WarningCount,
		entry.ClientIP,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	entry.ID = id

	return nil
}

// GetBySession returns the entry for a session ID.
func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, correlation_id, method,
			patient_age, patient_sex, overall_percent, overall_category,
			methods_applied, warning_count, client_ip, created_at
		FROM audit_entries
		WHERE session_id = ?
		LIMIT 1
	`, sessionID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return entry, nil
}

// List returns audit entries newest first with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, correlation_id, method,
			patient_age, patient_sex, overall_percent, overall_category,
			methods_applied, warning_count, client_ip, created_at
		FROM audit_entries
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Count returns the total number of audit entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_entries").Scan(&count)
	return count, err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON writes all audit entries to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Entries:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
