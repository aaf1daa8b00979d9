package scheduling

import "time"

// BookingWindow bounds how far ahead a booking date may lie, in whole days
// relative to an explicit "now". Patient self-service and staff walk-in
// conversion use different windows, so the bound is a parameter rather than
// a constant.
type BookingWindow struct {
	MinDaysAhead int
	MaxDaysAhead int
}

var (
	// PatientWindow: tomorrow through one week out.
	PatientWindow = BookingWindow{MinDaysAhead: 1, MaxDaysAhead: 7}
	// StaffWindow additionally allows same-day walk-in conversions.
	StaffWindow = BookingWindow{MinDaysAhead: 0, MaxDaysAhead: 7}
)

// Validate checks that date falls inside the window relative to now. Both
// are compared as civil dates in now's location; now is always threaded in
// explicitly so callers and tests control it.
func (w BookingWindow) Validate(now, date time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	min := today.AddDate(0, 0, w.MinDaysAhead)
	max := today.AddDate(0, 0, w.MaxDaysAhead)
	if day.Before(min) || day.After(max) {
		return &OutsideBookingWindowError{Date: day, Min: min, Max: max}
	}
	return nil
}
