// Package session stores completed risk assessments for later retrieval by
// the report endpoints. Two backends exist: an in-memory TTL store for lite
// deployments and a Redis store for multi-instance ones.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cvd-risk-server/internal/domain"
)

// Session is one completed assessment, addressable by ID until its TTL
// expires. Warnings travel inside Results alongside the scores they
// annotate.
type Session struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Method    domain.Method            `json:"method"`
	Record    *domain.PatientRecord    `json:"record"`
	Results   *domain.AggregatedResult `json:"results"`
}

// New creates a session for an assessment outcome with a fresh ID.
func New(method domain.Method, record *domain.PatientRecord, results *domain.AggregatedResult) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Method:    method,
		Record:    record,
		Results:   results,
	}
}

// Store persists sessions for the report endpoints. Implementations expire
// entries after the configured TTL; Get on an expired or unknown ID returns
// domain.ErrSessionExpired.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
