package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"citasdental/internal/db"
	"citasdental/internal/scheduling"
)

// ScheduleRepository resolves the operating facts of the clinic: weekly
// hours, per-date overrides, the active dentist roster, per-dentist custom
// hours and patient dentist preferences.
type ScheduleRepository struct {
	DB *sql.DB
}

func NewScheduleRepository(database *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: database}
}

// DaySnapshot resolves one calendar date: the weekday row overlaid by any
// per-date override, plus the active dentists. It is cheap and re-queried on
// every admission check so same-day overrides apply immediately.
func (r *ScheduleRepository) DaySnapshot(date time.Time) (scheduling.DaySnapshot, error) {
	var snap scheduling.DaySnapshot

	var isOpen bool
	var openMin, closeMin, capacity int
	err := r.DB.QueryRow(`
		SELECT is_open, open_min, close_min, capacity
		FROM clinic_hours WHERE weekday = $1`,
		int(date.Weekday())).Scan(&isOpen, &openMin, &closeMin, &capacity)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("error querying clinic hours: %w", err)
	}
	// A missing weekly row leaves the day closed unless an open override
	// supplies hours for the date.

	var closed bool
	var ovOpen, ovClose, ovCapacity sql.NullInt64
	err = r.DB.QueryRow(`
		SELECT closed, open_min, close_min, capacity
		FROM clinic_overrides WHERE day = $1`,
		date.Format(dateLayout)).Scan(&closed, &ovOpen, &ovClose, &ovCapacity)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("error querying clinic override: %w", err)
	}
	if err == nil {
		if closed {
			return snap, nil
		}
		if ovOpen.Valid {
			openMin = int(ovOpen.Int64)
		}
		if ovClose.Valid {
			closeMin = int(ovClose.Int64)
		}
		if ovCapacity.Valid {
			capacity = int(ovCapacity.Int64)
		}
		// An open override re-opens the date even when the weekday template
		// says closed; fields it leaves unset keep the template values.
		isOpen = true
	}
	if !isOpen {
		return snap, nil
	}

	dentistIDs, err := r.activeDentistIDs()
	if err != nil {
		return snap, err
	}

	snap.IsOpen = true
	snap.Open = scheduling.TimeOfDay(openMin)
	snap.Close = scheduling.TimeOfDay(closeMin)
	snap.Capacity = capacity
	snap.ActiveDentistIDs = dentistIDs
	return snap, nil
}

func (r *ScheduleRepository) activeDentistIDs() ([]int, error) {
	rows, err := r.DB.Query(`SELECT id FROM dentists WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying active dentists: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning dentist id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DentistHoursFor returns the dentist's custom window for a weekday, or nil
// when the dentist follows clinic hours.
func (r *ScheduleRepository) DentistHoursFor(dentistID int, weekday time.Weekday) (*scheduling.DentistHours, error) {
	var openMin, closeMin int
	err := r.DB.QueryRow(`
		SELECT open_min, close_min FROM dentist_hours
		WHERE dentist_id = $1 AND weekday = $2`,
		dentistID, int(weekday)).Scan(&openMin, &closeMin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying dentist hours: %w", err)
	}
	return &scheduling.DentistHours{
		Open:  scheduling.TimeOfDay(openMin),
		Close: scheduling.TimeOfDay(closeMin),
	}, nil
}

// PreferredDentist resolves the patient's preferred dentist, 0 when none.
// Absence of a preference is not an error.
func (r *ScheduleRepository) PreferredDentist(patientID int) (int, error) {
	var preferred sql.NullInt64
	err := r.DB.QueryRow(`SELECT preferred_dentist_id FROM patients WHERE id = $1`, patientID).
		Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("error querying patient preference: %w", err)
	}
	if !preferred.Valid {
		return 0, nil
	}
	return int(preferred.Int64), nil
}

func (r *ScheduleRepository) PatientByID(id int) (*db.Patient, error) {
	var p db.Patient
	err := r.DB.QueryRow(`
		SELECT id, full_name, email, phone, language, preferred_dentist_id
		FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Language, &p.PreferredDentistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying patient: %w", err)
	}
	return &p, nil
}

func (r *ScheduleRepository) ServiceByID(id int) (scheduling.Service, error) {
	var svc scheduling.Service
	var perUnit, unitCap sql.NullInt64
	err := r.DB.QueryRow(`
		SELECT id, name, base_minutes, per_unit_minutes, unit_cap
		FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.Name, &svc.BaseMinutes, &perUnit, &unitCap)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svc, fmt.Errorf("service %d not found: %w", id, err)
		}
		return svc, fmt.Errorf("error querying service: %w", err)
	}
	if perUnit.Valid {
		svc.PerUnitMinutes = int(perUnit.Int64)
	}
	if unitCap.Valid {
		svc.UnitCap = int(unitCap.Int64)
	}
	return svc, nil
}

func (r *ScheduleRepository) ListServices() ([]db.ServiceDef, error) {
	rows, err := r.DB.Query(`
		SELECT id, name, base_minutes, per_unit_minutes, unit_cap
		FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing services: %w", err)
	}
	defer rows.Close()

	var services []db.ServiceDef
	for rows.Next() {
		var s db.ServiceDef
		if err := rows.Scan(&s.ID, &s.Name, &s.BaseMinutes, &s.PerUnitMinutes, &s.UnitCap); err != nil {
			return nil, fmt.Errorf("error scanning service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *ScheduleRepository) ListDentists() ([]db.Dentist, error) {
	rows, err := r.DB.Query(`SELECT id, full_name, active FROM dentists ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("error listing dentists: %w", err)
	}
	defer rows.Close()

	var dentists []db.Dentist
	for rows.Next() {
		var d db.Dentist
		if err := rows.Scan(&d.ID, &d.FullName, &d.Active); err != nil {
			return nil, fmt.Errorf("error scanning dentist: %w", err)
		}
		dentists = append(dentists, d)
	}
	return dentists, rows.Err()
}

// UpsertClinicHours lets staff adjust the weekly template.
func (r *ScheduleRepository) UpsertClinicHours(h db.ClinicHours) error {
	_, err := r.DB.Exec(`
		INSERT INTO clinic_hours (weekday, is_open, open_min, close_min, capacity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (weekday) DO UPDATE
		SET is_open = $2, open_min = $3, close_min = $4, capacity = $5`,
		h.Weekday, h.IsOpen, h.OpenMin, h.CloseMin, h.Capacity)
	if err != nil {
		return fmt.Errorf("error upserting clinic hours: %w", err)
	}
	return nil
}

// UpsertOverride records a same-day or future administrative override. A
// closed override shuts the date; an open one replaces the weekday hours and
// capacity and re-opens the date even when the weekday template is closed.
func (r *ScheduleRepository) UpsertOverride(o db.ClinicOverride) error {
	_, err := r.DB.Exec(`
		INSERT INTO clinic_overrides (day, closed, open_min, close_min, capacity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (day) DO UPDATE
		SET closed = $2, open_min = $3, close_min = $4, capacity = $5`,
		o.Date.Format(dateLayout), o.Closed, o.OpenMin, o.CloseMin, o.Capacity)
	if err != nil {
		return fmt.Errorf("error upserting clinic override: %w", err)
	}
	return nil
}
