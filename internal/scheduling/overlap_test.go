package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPatientOverlap(t *testing.T) {
	claims := []BookingClaim{
		claim(1, 10, 1, at(9, 0), at(9, 30), StatusApproved),
	}

	// Partial intersection counts: 09:15 is not a grid label but the range
	// math is half-open regardless.
	assert.True(t, HasPatientOverlap(claims, 10, at(9, 15), at(9, 45), 0))
	assert.True(t, HasPatientOverlap(claims, 10, at(9, 0), at(10, 0), 0))

	// Touching ranges do not overlap.
	assert.False(t, HasPatientOverlap(claims, 10, at(9, 30), at(10, 0), 0))
	assert.False(t, HasPatientOverlap(claims, 10, at(8, 30), at(9, 0), 0))

	// Another patient is unaffected.
	assert.False(t, HasPatientOverlap(claims, 11, at(9, 0), at(9, 30), 0))
}

func TestHasPatientOverlapIgnoresInactiveAndSelf(t *testing.T) {
	claims := []BookingClaim{
		claim(1, 10, 1, at(9, 0), at(9, 30), StatusCompleted),
		claim(2, 10, 1, at(10, 0), at(10, 30), StatusCancelled),
		claim(3, 10, 1, at(11, 0), at(11, 30), StatusApproved),
	}

	// Completed and cancelled bookings never block a new one.
	assert.False(t, HasPatientOverlap(claims, 10, at(9, 0), at(9, 30), 0))
	assert.False(t, HasPatientOverlap(claims, 10, at(10, 0), at(10, 30), 0))

	// Rescheduling booking 3 onto its own range is allowed.
	assert.False(t, HasPatientOverlap(claims, 10, at(11, 0), at(11, 30), 3))
	assert.True(t, HasPatientOverlap(claims, 10, at(11, 0), at(11, 30), 0))
}
