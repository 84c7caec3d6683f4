package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(sessionID string) *Entry {
	percent := 12.4
	return &Entry{
		SessionID:       sessionID,
		CorrelationID:   "corr-1",
		Method:          "all",
		PatientAge:      55,
		PatientSex:      "male",
		OverallPercent:  &percent,
		OverallCategory: "high",
		MethodsApplied:  3,
		WarningCount:    1,
		ClientIP:        "10.0.0.1",
	}
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := sampleEntry("sess-1")
	require.NoError(t, store.Record(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := store.GetBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "all", got.Method)
	require.NotNil(t, got.OverallPercent)
	assert.Equal(t, 12.4, *got.OverallPercent)
	assert.Equal(t, "high", got.OverallCategory)
}

func TestSQLiteStore_GetBySessionMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetBySession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_NullOverall(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Assessments where no method applied carry no overall score.
	entry := sampleEntry("sess-empty")
	entry.OverallPercent = nil
	entry.OverallCategory = ""
	entry.MethodsApplied = 0
	entry.WarningCount = 3
	require.NoError(t, store.Record(ctx, entry))

	got, err := store.GetBySession(ctx, "sess-empty")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.OverallPercent)
	assert.Equal(t, 0, got.MethodsApplied)
	assert.Equal(t, 3, got.WarningCount)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"sess-a", "sess-b", "sess-c"} {
		entry := sampleEntry(id)
		entry.CreatedAt = time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		require.NoError(t, store.Record(ctx, entry))
	}

	entries, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "sess-c", entries[0].SessionID)
	assert.Equal(t, "sess-a", entries[2].SessionID)

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "sess-b", page[0].SessionID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSQLiteStore_ExportJSON(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, sampleEntry("sess-1")))
	require.NoError(t, store.Record(ctx, sampleEntry("sess-2")))

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))

	var export Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))
	assert.Equal(t, "1.0", export.Version)
	assert.Equal(t, 2, export.Count)
	assert.Len(t, export.Entries, 2)
}
