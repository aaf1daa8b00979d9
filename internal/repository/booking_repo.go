package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"citasdental/internal/db"
	"citasdental/internal/entities"
	"citasdental/internal/scheduling"
)

const dateLayout = "2006-01-02"

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

func (r *BookingRepository) Begin() (*sql.Tx, error) {
	return r.DB.Begin()
}

// LockDay serializes concurrent writers for one clinic day. The advisory
// lock is transaction-scoped: it is released automatically at commit or
// rollback, and different days never contend.
func (r *BookingRepository) LockDay(tx *sql.Tx, date time.Time) error {
	_, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("error taking day lock for %s: %w", date.Format(dateLayout), err)
	}
	return nil
}

// ActiveClaims reads the pending/approved bookings of a date inside the
// caller's transaction. It is the fresh read every capacity decision is
// derived from; callers must not cache the result across a write.
func (r *BookingRepository) ActiveClaims(tx *sql.Tx, date time.Time) ([]scheduling.BookingClaim, error) {
	rows, err := tx.Query(`
		SELECT id, patient_id, COALESCE(dentist_id, 0), start_min, end_min, status
		FROM bookings
		WHERE day = $1 AND status IN ('pending', 'approved')`,
		date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error querying active bookings: %w", err)
	}
	defer rows.Close()

	var claims []scheduling.BookingClaim
	for rows.Next() {
		var c scheduling.BookingClaim
		var start, end int
		if err := rows.Scan(&c.ID, &c.PatientID, &c.DentistID, &start, &end, &c.Status); err != nil {
			return nil, fmt.Errorf("error scanning booking claim: %w", err)
		}
		c.Start = scheduling.TimeOfDay(start)
		c.End = scheduling.TimeOfDay(end)
		claims = append(claims, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking claims: %w", err)
	}
	return claims, nil
}

func (r *BookingRepository) InsertBooking(tx *sql.Tx, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(code, patient_id, service_id, units, day, start_min, end_min, status, dentist_id,
		 honor_preference, payment_method, payment_status, stripe_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`
	return tx.QueryRow(query,
		b.Code,
		b.PatientID,
		b.ServiceID,
		b.Units,
		b.Date.Format(dateLayout),
		b.StartMin,
		b.EndMin,
		b.Status,
		b.DentistID,
		b.HonorPreference,
		b.PaymentMethod,
		b.PaymentStatus,
		b.StripeSessionID,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

const bookingColumns = `
	id, code, patient_id, service_id, units, day, start_min, end_min, status,
	dentist_id, honor_preference, payment_method, payment_status,
	COALESCE(stripe_session_id, ''), reminder_sent, created_at, updated_at`

func scanBooking(row *sql.Row) (*db.Booking, error) {
	var b db.Booking
	var sessionID string
	err := row.Scan(
		&b.ID, &b.Code, &b.PatientID, &b.ServiceID, &b.Units, &b.Date,
		&b.StartMin, &b.EndMin, &b.Status, &b.DentistID, &b.HonorPreference,
		&b.PaymentMethod, &b.PaymentStatus, &sessionID, &b.ReminderSent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		b.StripeSessionID = sql.NullString{String: sessionID, Valid: true}
	}
	return &b, nil
}

func (r *BookingRepository) GetByCode(code string) (*db.Booking, error) {
	row := r.DB.QueryRow(`SELECT`+bookingColumns+` FROM bookings WHERE code = $1`, code)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return b, nil
}

// GetByCodeForUpdate row-locks the booking inside the caller's transaction
// so a lifecycle transition reads and writes the same version.
func (r *BookingRepository) GetByCodeForUpdate(tx *sql.Tx, code string) (*db.Booking, error) {
	row := tx.QueryRow(`SELECT`+bookingColumns+` FROM bookings WHERE code = $1 FOR UPDATE`, code)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying booking for update: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) GetByStripeSessionID(sessionID string) (*db.Booking, error) {
	row := r.DB.QueryRow(`SELECT`+bookingColumns+` FROM bookings WHERE stripe_session_id = $1`, sessionID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking for session '%s' not found: %w", sessionID, err)
		}
		return nil, fmt.Errorf("error querying booking by session: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateStatus(tx *sql.Tx, id int, status string) error {
	_, err := tx.Exec(`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating booking %d status: %w", id, err)
	}
	return nil
}

// ApproveWithDentist flips a pending booking to approved, binding the
// dentist the re-validation resolved.
func (r *BookingRepository) ApproveWithDentist(tx *sql.Tx, id, dentistID int) error {
	_, err := tx.Exec(`
		UPDATE bookings SET status = 'approved', dentist_id = $1, updated_at = NOW()
		WHERE id = $2`, dentistID, id)
	if err != nil {
		return fmt.Errorf("error approving booking %d: %w", id, err)
	}
	return nil
}

// Reschedule replaces the block-range claim atomically: new date, new run,
// new dentist binding, status reset to pending for fresh approval.
func (r *BookingRepository) Reschedule(tx *sql.Tx, id int, date time.Time, startMin, endMin, dentistID int, honorPreference bool) error {
	_, err := tx.Exec(`
		UPDATE bookings
		SET day = $1, start_min = $2, end_min = $3, dentist_id = $4,
		    honor_preference = $5, status = 'pending', updated_at = NOW()
		WHERE id = $6`,
		date.Format(dateLayout), startMin, endMin, dentistID, honorPreference, id)
	if err != nil {
		return fmt.Errorf("error rescheduling booking %d: %w", id, err)
	}
	return nil
}

// MarkReminderSent sets the reminder flag if and only if it is still unset.
// The conditional update is the compare-and-set that keeps concurrent
// reminder workers from both sending: the loser sees zero rows affected.
func (r *BookingRepository) MarkReminderSent(id int) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings SET reminder_sent = TRUE, updated_at = NOW()
		WHERE id = $1 AND reminder_sent = FALSE AND status = 'approved'`, id)
	if err != nil {
		return false, fmt.Errorf("error marking reminder sent for booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected == 1, nil
}

const bookingResponseQuery = `
	SELECT
		b.code, b.patient_id, p.full_name, p.email, p.phone, p.language,
		b.service_id, s.name, b.units,
		to_char(b.day, 'YYYY-MM-DD'), b.start_min, b.end_min, b.status,
		COALESCE(b.dentist_id, 0), COALESCE(d.full_name, ''),
		b.honor_preference, b.payment_method, b.payment_status,
		b.created_at, b.updated_at
	FROM bookings b
	JOIN patients p ON p.id = b.patient_id
	JOIN services s ON s.id = b.service_id
	LEFT JOIN dentists d ON d.id = b.dentist_id`

func scanBookingResponse(scan func(dest ...any) error) (*entities.BookingResponse, error) {
	var res entities.BookingResponse
	var units sql.NullInt64
	var startMin, endMin int
	err := scan(
		&res.Code, &res.PatientID, &res.PatientName, &res.PatientEmail, &res.PatientPhone, &res.Language,
		&res.ServiceID, &res.ServiceName, &units,
		&res.Date, &startMin, &endMin, &res.Status,
		&res.DentistID, &res.DentistName,
		&res.HonorPreference, &res.PaymentMethod, &res.PaymentStatus,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if units.Valid {
		u := int(units.Int64)
		res.Units = &u
	}
	res.StartTime = scheduling.TimeOfDay(startMin).String()
	res.EndTime = scheduling.TimeOfDay(endMin).String()
	return &res, nil
}

func (r *BookingRepository) GetResponseByCode(code string) (*entities.BookingResponse, error) {
	row := r.DB.QueryRow(bookingResponseQuery+` WHERE b.code = $1`, code)
	res, err := scanBookingResponse(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying booking response: %w", err)
	}
	return res, nil
}

// ListBookings filters by date, status and dentist for the staff dashboard.
func (r *BookingRepository) ListBookings(date, status string, dentistID int) ([]entities.BookingResponse, error) {
	query := bookingResponseQuery + ` WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += fmt.Sprintf(" AND b.day = $%d", idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND b.status = $%d", idx)
		args = append(args, status)
		idx++
	}
	if dentistID != 0 {
		query += fmt.Sprintf(" AND b.dentist_id = $%d", idx)
		args = append(args, dentistID)
		idx++
	}
	query += " ORDER BY b.day, b.start_min"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var list []entities.BookingResponse
	for rows.Next() {
		res, err := scanBookingResponse(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func (r *BookingRepository) UpdatePaymentBySessionID(sessionID, paymentStatus string) error {
	_, err := r.DB.Exec(`
		UPDATE bookings SET payment_status = $1, updated_at = NOW()
		WHERE stripe_session_id = $2`, paymentStatus, sessionID)
	if err != nil {
		return fmt.Errorf("error updating payment for session %s: %w", sessionID, err)
	}
	return nil
}

// IsCapacityConflict recognizes the storage backstop firing under races the
// advisory lock did not cover: unique or exclusion constraint violations on
// the bookings table. The caller treats it as a concurrency collision, not a
// domain error, and retries the decision once.
func IsCapacityConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "23P01"
	}
	return false
}
