package service

import (
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citasdental/internal/entities"
	"citasdental/internal/repository"
	"citasdental/internal/scheduling"
)

type fakeDepositService struct {
	sessionID string
	created   int
	expired   []string
	refunded  []string
}

func (f *fakeDepositService) CreateDepositSession(bookingCode, customerEmail, language string) (string, string, error) {
	f.created++
	return "https://checkout.test/" + f.sessionID, f.sessionID, nil
}

func (f *fakeDepositService) ExpireSession(sessionID string) error {
	f.expired = append(f.expired, sessionID)
	return nil
}

func (f *fakeDepositService) RefundBySessionID(sessionID string) error {
	f.refunded = append(f.refunded, sessionID)
	return nil
}

func newMockBookingService(t *testing.T, deposit DepositService) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	repo := repository.NewBookingRepository(database)
	schedule := repository.NewScheduleRepository(database)
	return NewBookingService(repo, schedule, deposit, nil), mock
}

func bookingRow(id int, code string, day time.Time, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "patient_id", "service_id", "units", "day", "start_min", "end_min",
		"status", "dentist_id", "honor_preference", "payment_method", "payment_status",
		"stripe_session_id", "reminder_sent", "created_at", "updated_at",
	}).AddRow(id, code, 10, 1, nil, day, 540, 570, status, nil, false, "onsite", "pending",
		"", false, day, day)
}

func backstopConflict() error {
	return fmt.Errorf("insert failed: %w", &pq.Error{Code: "23P01"})
}

func TestRetryOnBackstopSecondCollisionIsSlotFull(t *testing.T) {
	svc := &BookingService{}
	calls := 0
	decide := func() error {
		calls++
		return backstopConflict()
	}

	err := svc.retryOnBackstop(decide, scheduling.TimeOfDay(8*60))
	var full *scheduling.SlotFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, "08:00", full.Block.String())
	assert.Equal(t, 2, calls)
}

func TestRetryOnBackstopRecomputesOnce(t *testing.T) {
	svc := &BookingService{}
	calls := 0
	decide := func() error {
		calls++
		if calls == 1 {
			return backstopConflict()
		}
		return nil
	}

	require.NoError(t, svc.retryOnBackstop(decide, scheduling.TimeOfDay(8*60)))
	assert.Equal(t, 2, calls)
}

func TestRetryOnBackstopDomainErrorNotRetried(t *testing.T) {
	svc := &BookingService{}
	calls := 0
	decide := func() error {
		calls++
		return scheduling.ErrClinicClosed
	}

	err := svc.retryOnBackstop(decide, scheduling.TimeOfDay(8*60))
	assert.ErrorIs(t, err, scheduling.ErrClinicClosed)
	assert.Equal(t, 1, calls)
}

func TestApproveBookingNotPending(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "approved"))
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("2026-03-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "approved"))
	mock.ExpectRollback()

	err := svc.ApproveBooking("abc")
	var processed *scheduling.AlreadyProcessedError
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, "approved", processed.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveBookingDateChangedUnderneath(t *testing.T) {
	// A reschedule committed between the pre-read and the row lock moved the
	// booking to another day; approving against the stale day must fail, not
	// bind capacity on the wrong date.
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	movedDay := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "pending"))
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("2026-03-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", movedDay, "pending"))
	mock.ExpectRollback()

	err := svc.ApproveBooking("abc")
	var processed *scheduling.AlreadyProcessedError
	require.ErrorAs(t, err, &processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectBookingAlreadyProcessed(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "cancelled"))
	mock.ExpectRollback()

	err := svc.RejectBooking("abc", "no show")
	var processed *scheduling.AlreadyProcessedError
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, "cancelled", processed.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleBookingFromCancelled(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("2026-03-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "cancelled"))
	mock.ExpectRollback()

	req := &entities.RescheduleRequest{Date: "2026-03-05", StartTime: "09:00"}
	err := svc.RescheduleBooking("abc", req, scheduling.StaffWindow, now)
	var processed *scheduling.AlreadyProcessedError
	require.ErrorAs(t, err, &processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingExpiresDepositOnRejectedAdmission(t *testing.T) {
	deposit := &fakeDepositService{sessionID: "cs_test_123"}
	svc, mock := newMockBookingService(t, deposit)
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM services WHERE id").WithArgs(1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "base_minutes", "per_unit_minutes", "unit_cap"}).
			AddRow(1, "Cleaning", 30, nil, nil))
	mock.ExpectQuery("FROM patients WHERE id").WithArgs(10).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "full_name", "email", "phone", "language", "preferred_dentist_id"}).
			AddRow(10, "Ana Bruno", "ana@example.com", "+390612345678", "it", nil))
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("2026-03-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// No weekly template and no override: the day resolves closed and the
	// admission fails before any insert.
	mock.ExpectQuery("FROM clinic_hours WHERE weekday").
		WillReturnRows(sqlmock.NewRows([]string{"is_open", "open_min", "close_min", "capacity"}))
	mock.ExpectQuery("FROM clinic_overrides WHERE day").WithArgs("2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"closed", "open_min", "close_min", "capacity"}))
	mock.ExpectQuery("SELECT id, patient_id, COALESCE").WithArgs("2026-03-05").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "patient_id", "dentist_id", "start_min", "end_min", "status"}))
	mock.ExpectRollback()

	req := &entities.CreateBookingRequest{
		PatientID:     10,
		ServiceID:     1,
		Date:          "2026-03-05",
		StartTime:     "09:00",
		PaymentMethod: "online",
		Language:      "it",
	}
	_, err := svc.CreateBooking(req, scheduling.StaffWindow, now)
	assert.ErrorIs(t, err, scheduling.ErrClinicClosed)
	assert.Equal(t, 1, deposit.created)
	assert.Equal(t, []string{"cs_test_123"}, deposit.expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendReminderLoserGetsAlreadySent(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "approved"))
	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.SendReminder("abc")
	assert.ErrorIs(t, err, scheduling.ErrReminderAlreadySent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendReminderWinner(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "approved"))
	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, svc.SendReminder("abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendReminderNotApproved(t *testing.T) {
	svc, mock := newMockBookingService(t, nil)
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE code").WithArgs("abc").
		WillReturnRows(bookingRow(1, "abc", day, "pending"))

	err := svc.SendReminder("abc")
	var processed *scheduling.AlreadyProcessedError
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, "pending", processed.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
