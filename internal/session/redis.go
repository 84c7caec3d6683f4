package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cvd-risk-server/internal/domain"
)

const redisKeyPrefix = "cvd:session:"

// redisSuccessful reports whether a command outcome counts as healthy for
// the circuit breaker. A key miss (redis.Nil) is a normal lookup result for
// expired sessions, not a Redis fault; only real errors may trip the
// breaker.
func redisSuccessful(err error) bool {
	return err == nil || errors.Is(err, redis.Nil)
}

// newRedisBreaker builds the circuit breaker wrapping all Redis calls.
func newRedisBreaker(logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "session-redis",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: redisSuccessful,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Session store circuit breaker state changed")
		},
	})
}

// RedisStore persists sessions in Redis so multiple server instances can
// serve reports for each other's assessments. All Redis calls run through a
// circuit breaker to keep an unhealthy Redis from stalling the API.
type RedisStore struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewRedisStore connects to Redis using the configured URL and verifies the
// connection before returning.
func NewRedisStore(config domain.SessionConfig, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:  client,
		breaker: newRedisBreaker(logger),
		ttl:     config.TTL,
		logger:  logger,
	}, nil
}

// Save serializes the session and stores it under its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session has no ID")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, redisKeyPrefix+sess.ID, data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get fetches and deserializes the session. Redis expiry handles the TTL, so
// a missing key maps to domain.ErrSessionExpired.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(result.([]byte), &sess); err != nil {
		// Corrupted entry, drop it.
		s.client.Del(ctx, redisKeyPrefix+id)
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionExpired)
	}
	return &sess, nil
}

// Delete removes the session if present.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, redisKeyPrefix+id).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
