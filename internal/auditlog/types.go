// Package auditlog provides persistent records of every risk assessment the
// server performs. Clinical deployments keep these for traceability; the
// store answers the audit listing endpoint.
package auditlog

import (
	"context"
	"io"
	"time"
)

// Entry is one recorded assessment.
type Entry struct {
	ID              int64     `json:"id,omitempty"`
	SessionID       string    `json:"session_id"`
	CorrelationID   string    `json:"correlation_id,omitempty"`
	Method          string    `json:"method"`
	PatientAge      int       `json:"patient_age"`
	PatientSex      string    `json:"patient_sex"`
	OverallPercent  *float64  `json:"overall_percent,omitempty"`
	OverallCategory string    `json:"overall_category,omitempty"`
	MethodsApplied  int       `json:"methods_applied"`
	WarningCount    int       `json:"warning_count"`
	ClientIP        string    `json:"client_ip,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store defines the interface for audit log persistence.
type Store interface {
	// Record appends an entry. Entries are immutable once written.
	Record(ctx context.Context, entry *Entry) error

	// GetBySession returns the entry for a session ID, or nil when none
	// exists.
	GetBySession(ctx context.Context, sessionID string) (*Entry, error)

	// List returns entries newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Entry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)

	// ExportJSON writes all entries to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Entries    []*Entry  `json:"entries"`
}
