package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"citasdental/internal/entities"
	"citasdental/internal/scheduling"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// ReminderCandidate is one approved booking eligible for a reminder, with
// the contact detail the sender needs.
type ReminderCandidate struct {
	BookingID int
	Booking   entities.BookingResponse
}

// ReminderCandidates returns approved bookings for tomorrow or the day
// after whose reminder has not been sent yet, relative to the supplied now.
// Eligibility is only a pre-filter: the compare-and-set on the reminder flag
// decides which worker actually sends.
func (r *JobRepository) ReminderCandidates(now time.Time) ([]ReminderCandidate, error) {
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)
	dayAfter := now.AddDate(0, 0, 2).Format(dateLayout)

	rows, err := r.DB.Query(`
		SELECT
			b.id, b.code, b.patient_id, p.full_name, p.email, p.phone, p.language,
			b.service_id, s.name,
			to_char(b.day, 'YYYY-MM-DD'), b.start_min, b.end_min, b.status,
			COALESCE(d.full_name, '')
		FROM bookings b
		JOIN patients p ON p.id = b.patient_id
		JOIN services s ON s.id = b.service_id
		LEFT JOIN dentists d ON d.id = b.dentist_id
		WHERE b.status = 'approved' AND b.reminder_sent = FALSE AND b.day IN ($1, $2)
		ORDER BY b.day, b.start_min`, tomorrow, dayAfter)
	if err != nil {
		return nil, fmt.Errorf("error querying reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		var startMin, endMin int
		if err := rows.Scan(
			&c.BookingID, &c.Booking.Code, &c.Booking.PatientID, &c.Booking.PatientName,
			&c.Booking.PatientEmail, &c.Booking.PatientPhone, &c.Booking.Language,
			&c.Booking.ServiceID, &c.Booking.ServiceName,
			&c.Booking.Date, &startMin, &endMin, &c.Booking.Status,
			&c.Booking.DentistName,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder candidate: %w", err)
		}
		c.Booking.StartTime = scheduling.TimeOfDay(startMin).String()
		c.Booking.EndTime = scheduling.TimeOfDay(endMin).String()
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ApprovedBookingIDsPastDate returns approved bookings whose day has
// already passed. Their completion runs as a batch status update.
func (r *JobRepository) ApprovedBookingIDsPastDate(now time.Time) ([]int, error) {
	rows, err := r.DB.Query(`SELECT id FROM bookings WHERE status = 'approved' AND day < $1`,
		now.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error querying finished bookings: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// CancelStalePending cancels unpaid pending bookings created before the
// cutoff, releasing their block claims for the next capacity rebuild.
func (r *JobRepository) CancelStalePending(before time.Time) (int64, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND payment_status = 'pending' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error cancelling stale pending bookings: %w", err)
	}
	return result.RowsAffected()
}

// UpdateBookingStatuses updates a batch of bookings to the given status.
func (r *JobRepository) UpdateBookingStatuses(ids []int, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.Exec(`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2)`,
		newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}
