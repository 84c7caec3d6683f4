package session

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/domain"
)

// MemoryStore keeps sessions in an expirable LRU cache. It is the default
// backend in lite mode, where a single process owns all sessions.
type MemoryStore struct {
	cache  *expirable.LRU[string, *Session]
	logger *logrus.Logger
}

// NewMemoryStore creates an in-memory session store sized and expired per
// the session config.
func NewMemoryStore(config domain.SessionConfig, logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		cache:  expirable.NewLRU[string, *Session](config.MaxItems, nil, config.TTL),
		logger: logger,
	}
}

// Save stores the session. Capacity eviction may drop the oldest session.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session has no ID")
	}
	evicted := s.cache.Add(sess.ID, sess)
	if evicted {
		s.logger.WithField("session_id", sess.ID).Debug("Session store at capacity, evicted oldest entry")
	}
	return nil
}

// Get returns the session, or domain.ErrSessionExpired when the ID is
// unknown or past its TTL.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionExpired)
	}
	return sess, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
