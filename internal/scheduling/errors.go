package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// All rejection values below are expected, user-facing outcomes. They carry
// the structured detail handlers need to render an actionable message and
// never indicate corrupted state.

var (
	// ErrClinicClosed rejects any admission attempt on a closed day.
	ErrClinicClosed = errors.New("clinic is closed on the requested date")

	// ErrNoDentistAvailable means no candidate dentist is free for the whole run.
	ErrNoDentistAvailable = errors.New("no dentist is available for the requested time")

	// ErrReminderAlreadySent is returned when the reminder flag was already set.
	ErrReminderAlreadySent = errors.New("reminder already sent for this booking")
)

// InvalidStartTimeError rejects a start label that is not on the day's grid.
type InvalidStartTimeError struct {
	Start TimeOfDay
}

func (e *InvalidStartTimeError) Error() string {
	return fmt.Sprintf("start time %s is not a bookable slot", e.Start)
}

// SlotFullError rejects a run whose first offending block is either past
// closing or already at the clinic's capacity.
type SlotFullError struct {
	Block TimeOfDay
}

func (e *SlotFullError) Error() string {
	return fmt.Sprintf("slot %s is fully booked", e.Block)
}

// PreferredDentistConflictError is a strict failure: the patient asked for a
// specific dentist who is active that day but cannot take the run. Callers
// must surface it, never silently fall back to another dentist.
type PreferredDentistConflictError struct {
	DentistID int
}

func (e *PreferredDentistConflictError) Error() string {
	return fmt.Sprintf("preferred dentist %d is not available for the requested time", e.DentistID)
}

// UnitsRequiredError rejects a final decision on a per-unit service that was
// queried without its unit count.
type UnitsRequiredError struct {
	ServiceID   int
	ServiceName string
}

func (e *UnitsRequiredError) Error() string {
	return fmt.Sprintf("service %q requires a unit count", e.ServiceName)
}

// OutsideBookingWindowError rejects a date outside the caller's window.
type OutsideBookingWindowError struct {
	Date time.Time
	Min  time.Time
	Max  time.Time
}

func (e *OutsideBookingWindowError) Error() string {
	return fmt.Sprintf("date %s is outside the booking window %s..%s",
		e.Date.Format("2006-01-02"), e.Min.Format("2006-01-02"), e.Max.Format("2006-01-02"))
}

// PatientOverlapError rejects a booking that would overlap another active
// booking of the same patient on the same date.
type PatientOverlapError struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (e *PatientOverlapError) Error() string {
	return fmt.Sprintf("patient already has a booking overlapping %s-%s", e.Start, e.End)
}

// AlreadyProcessedError rejects a lifecycle transition from the wrong state,
// e.g. approving a booking that is no longer pending.
type AlreadyProcessedError struct {
	Code   string
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("booking %s was already processed (status %q)", e.Code, e.Status)
}
