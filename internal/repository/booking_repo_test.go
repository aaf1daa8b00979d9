package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citasdental/internal/scheduling"
)

func newMockRepo(t *testing.T) (*BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewBookingRepository(database), mock
}

func TestMarkReminderSentWinsOnce(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkReminderSent(42)
	require.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReminderSentLosesWhenAlreadySet(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Flag already set (or booking no longer approved): zero rows affected
	// means another worker won, without error.
	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.MarkReminderSent(42)
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveClaims(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, patient_id, COALESCE").
		WithArgs("2026-03-03").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "patient_id", "dentist_id", "start_min", "end_min", "status"}).
			AddRow(1, 10, 1, 540, 600, "approved").
			AddRow(2, 11, 0, 540, 570, "pending"))

	tx, err := repo.Begin()
	require.NoError(t, err)
	claims, err := repo.ActiveClaims(tx, date)
	require.NoError(t, err)

	require.Len(t, claims, 2)
	assert.Equal(t, scheduling.TimeOfDay(540), claims[0].Start)
	assert.Equal(t, scheduling.TimeOfDay(600), claims[0].End)
	assert.Equal(t, 1, claims[0].DentistID)
	assert.Equal(t, 0, claims[1].DentistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockDayUsesDateKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("2026-03-03").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.LockDay(tx, date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsCapacityConflict(t *testing.T) {
	assert.True(t, IsCapacityConflict(&pq.Error{Code: "23505"}))
	assert.True(t, IsCapacityConflict(&pq.Error{Code: "23P01"}))
	assert.True(t, IsCapacityConflict(fmt.Errorf("insert failed: %w", &pq.Error{Code: "23P01"})))

	assert.False(t, IsCapacityConflict(&pq.Error{Code: "23503"}))
	assert.False(t, IsCapacityConflict(errors.New("connection reset")))
	assert.False(t, IsCapacityConflict(nil))
}
