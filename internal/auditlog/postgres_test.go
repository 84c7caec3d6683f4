package auditlog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_Record(t *testing.T) {
	store, mock := setupMockDB(t)

	percent := 22.7
	entry := &Entry{
		SessionID:       "sess-1",
		CorrelationID:   "corr-1",
		Method:          "all",
		PatientAge:      70,
		PatientSex:      "male",
		OverallPercent:  &percent,
		OverallCategory: "very_high",
		MethodsApplied:  2,
		WarningCount:    1,
		ClientIP:        "10.0.0.1",
	}

	mock.ExpectQuery("INSERT INTO audit_entries").
		WithArgs("sess-1", "corr-1", "all", 70, "male", &percent, "very_high", 2, 1, "10.0.0.1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	require.NoError(t, store.Record(context.Background(), entry))
	assert.Equal(t, int64(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBySession(t *testing.T) {
	store, mock := setupMockDB(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "correlation_id", "method",
		"patient_age", "patient_sex", "overall_percent", "overall_category",
		"methods_applied", "warning_count", "client_ip", "created_at",
	}).AddRow(int64(3), "sess-1", "corr-1", "framingham", 55, "female", 8.2, "moderate", 1, 0, "10.0.0.2", created)

	mock.ExpectQuery("SELECT (.+) FROM audit_entries").
		WithArgs("sess-1").
		WillReturnRows(rows)

	entry, err := store.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "framingham", entry.Method)
	require.NotNil(t, entry.OverallPercent)
	assert.Equal(t, 8.2, *entry.OverallPercent)
	assert.Equal(t, created, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBySessionMissing(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM audit_entries").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	entry, err := store.GetBySession(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "correlation_id", "method",
		"patient_age", "patient_sex", "overall_percent", "overall_category",
		"methods_applied", "warning_count", "client_ip", "created_at",
	}).
		AddRow(int64(2), "sess-b", "", "all", 60, "male", 15.0, "high", 3, 0, "", time.Now()).
		AddRow(int64(1), "sess-a", "", "all", 45, "female", nil, "", 0, 3, "", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM audit_entries").
		WithArgs(10, 0).
		WillReturnRows(rows)

	entries, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sess-b", entries[0].SessionID)
	assert.Nil(t, entries[1].OverallPercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
