package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func claim(id, patientID, dentistID int, start, end TimeOfDay, status string) BookingClaim {
	return BookingClaim{ID: id, PatientID: patientID, DentistID: dentistID, Start: start, End: end, Status: status}
}

func TestBuildCapacityIndexCountsActiveOnly(t *testing.T) {
	claims := []BookingClaim{
		claim(1, 10, 1, at(9, 0), at(10, 0), StatusApproved),
		claim(2, 11, 2, at(9, 0), at(9, 30), StatusPending),
		claim(3, 12, 1, at(9, 0), at(9, 30), StatusCancelled),
		claim(4, 13, 0, at(9, 30), at(10, 0), StatusRejected),
		claim(5, 14, 0, at(9, 0), at(9, 30), StatusCompleted),
	}
	idx := BuildCapacityIndex(claims, 0)

	assert.Equal(t, 2, idx.Global[at(9, 0)])
	assert.Equal(t, 1, idx.Global[at(9, 30)])
	assert.Equal(t, 0, idx.Global[at(10, 0)])
}

func TestBuildCapacityIndexExcludesOwnClaim(t *testing.T) {
	claims := []BookingClaim{
		claim(1, 10, 1, at(9, 0), at(10, 0), StatusApproved),
		claim(2, 11, 2, at(9, 0), at(9, 30), StatusApproved),
	}
	idx := BuildCapacityIndex(claims, 1)

	assert.Equal(t, 1, idx.Global[at(9, 0)])
	assert.Equal(t, 0, idx.Global[at(9, 30)])
	assert.True(t, idx.DentistFree(1, at(9, 0), 2))
}

func TestBuildCapacityIndexUnboundDentist(t *testing.T) {
	// A pending booking with no dentist bound still counts globally but
	// holds no dentist blocks.
	claims := []BookingClaim{
		claim(1, 10, 0, at(9, 0), at(9, 30), StatusPending),
	}
	idx := BuildCapacityIndex(claims, 0)

	assert.Equal(t, 1, idx.Global[at(9, 0)])
	assert.Empty(t, idx.Dentist)
}

func TestDentistFree(t *testing.T) {
	claims := []BookingClaim{
		claim(1, 10, 1, at(9, 0), at(10, 0), StatusApproved),
	}
	idx := BuildCapacityIndex(claims, 0)

	assert.False(t, idx.DentistFree(1, at(9, 0), 1))
	assert.False(t, idx.DentistFree(1, at(9, 30), 1))
	// A longer run is blocked if any block is held.
	assert.False(t, idx.DentistFree(1, at(8, 30), 2))
	assert.True(t, idx.DentistFree(1, at(10, 0), 2))
	assert.True(t, idx.DentistFree(2, at(9, 0), 4))
}
