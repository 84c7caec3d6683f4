package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvd-risk-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSession() *Session {
	rec := &domain.PatientRecord{
		Age:              55,
		Sex:              domain.Male,
		TotalCholesterol: 220,
		HDL:              50,
		SystolicBP:       130,
	}
	results := &domain.AggregatedResult{
		Overall: &domain.OverallRisk{Percent: 7.5, Category: domain.RiskModerate},
	}
	return New(domain.MethodAll, rec, results)
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: time.Minute, MaxItems: 10}, testLogger())
	defer store.Close()

	sess := testSession()
	require.NotEmpty(t, sess.ID)
	require.NoError(t, store.Save(context.Background(), sess))

	got, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, domain.MethodAll, got.Method)
	assert.Equal(t, 7.5, got.Results.Overall.Percent)
}

func TestMemoryStore_UnknownID(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: time.Minute, MaxItems: 10}, testLogger())
	defer store.Close()

	_, err := store.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: 20 * time.Millisecond, MaxItems: 10}, testLogger())
	defer store.Close()

	sess := testSession()
	require.NoError(t, store.Save(context.Background(), sess))

	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: time.Minute, MaxItems: 10}, testLogger())
	defer store.Close()

	sess := testSession()
	require.NoError(t, store.Save(context.Background(), sess))
	require.NoError(t, store.Delete(context.Background(), sess.ID))

	_, err := store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: time.Minute, MaxItems: 2}, testLogger())
	defer store.Close()

	first := testSession()
	second := testSession()
	third := testSession()
	for _, s := range []*Session{first, second, third} {
		require.NoError(t, store.Save(context.Background(), s))
	}

	_, err := store.Get(context.Background(), first.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	_, err = store.Get(context.Background(), third.ID)
	assert.NoError(t, err)
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	store := NewMemoryStore(domain.SessionConfig{TTL: time.Minute, MaxItems: 10}, testLogger())
	defer store.Close()

	err := store.Save(context.Background(), &Session{})
	assert.Error(t, err)
}
