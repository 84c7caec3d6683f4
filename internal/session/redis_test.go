package session

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSuccessful(t *testing.T) {
	assert.True(t, redisSuccessful(nil))
	assert.True(t, redisSuccessful(redis.Nil))
	assert.True(t, redisSuccessful(fmt.Errorf("load session: %w", redis.Nil)))
	assert.False(t, redisSuccessful(errors.New("connection refused")))
}

func TestRedisBreaker_KeyMissesDoNotTrip(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	breaker := newRedisBreaker(logger)

	// Expired-session lookups are routine traffic. Any number of them must
	// leave the breaker closed so saves keep flowing.
	for i := 0; i < 10; i++ {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, redis.Nil
		})
		require.ErrorIs(t, err, redis.Nil)
	}
	assert.Equal(t, gobreaker.StateClosed, breaker.State())

	_, err := breaker.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
}

func TestRedisBreaker_RealFaultsTrip(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	breaker := newRedisBreaker(logger)

	down := errors.New("dial tcp: connection refused")
	for i := 0; i < 3; i++ {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, down
		})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())
}
