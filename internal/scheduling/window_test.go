package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPatientWindow(t *testing.T) {
	now := time.Date(2026, time.March, 2, 15, 45, 0, 0, time.UTC)

	// Same day is too soon for patients.
	err := PatientWindow.Validate(now, day(2026, time.March, 2))
	var window *OutsideBookingWindowError
	require.ErrorAs(t, err, &window)

	assert.NoError(t, PatientWindow.Validate(now, day(2026, time.March, 3)))
	assert.NoError(t, PatientWindow.Validate(now, day(2026, time.March, 9)))
	assert.Error(t, PatientWindow.Validate(now, day(2026, time.March, 10)))
	assert.Error(t, PatientWindow.Validate(now, day(2026, time.March, 1)))
}

func TestStaffWindowAllowsSameDay(t *testing.T) {
	now := time.Date(2026, time.March, 2, 15, 45, 0, 0, time.UTC)

	assert.NoError(t, StaffWindow.Validate(now, day(2026, time.March, 2)))
	assert.NoError(t, StaffWindow.Validate(now, day(2026, time.March, 9)))
	assert.Error(t, StaffWindow.Validate(now, day(2026, time.March, 1)))
}

func TestWindowComparesCivilDates(t *testing.T) {
	// 23:59 today: tomorrow is still valid no matter the clock time.
	now := time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC)
	assert.NoError(t, PatientWindow.Validate(now, day(2026, time.March, 3)))
}
