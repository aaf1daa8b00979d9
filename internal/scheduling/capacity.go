package scheduling

// Booking statuses. Only pending and approved bookings claim capacity.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ActiveStatus reports whether a status counts toward capacity and dentist
// exclusivity.
func ActiveStatus(status string) bool {
	return status == StatusPending || status == StatusApproved
}

// BookingClaim is the slice of a persisted booking the capacity engine needs:
// who holds which half-open block range [Start, End) on the date under check.
// DentistID is zero while a pending booking has no dentist bound yet.
type BookingClaim struct {
	ID        int
	PatientID int
	DentistID int
	Start     TimeOfDay
	End       TimeOfDay
	Status    string
}

// CapacityIndex holds the usage tables derived from one date's active
// bookings. It must be rebuilt from a fresh read inside the transaction that
// writes, never cached across the check-then-write boundary.
type CapacityIndex struct {
	// Global counts active bookings covering each block.
	Global map[TimeOfDay]int
	// Dentist marks the blocks each dentist already holds.
	Dentist map[int]map[TimeOfDay]bool
}

// BuildCapacityIndex derives the usage tables from the given claims,
// skipping excludeID so a booking being re-validated does not count against
// itself. Claims in non-active statuses are ignored.
func BuildCapacityIndex(claims []BookingClaim, excludeID int) *CapacityIndex {
	idx := &CapacityIndex{
		Global:  make(map[TimeOfDay]int),
		Dentist: make(map[int]map[TimeOfDay]bool),
	}
	for _, c := range claims {
		if c.ID == excludeID || !ActiveStatus(c.Status) {
			continue
		}
		for t := c.Start; t < c.End; t += BlockMinutes {
			idx.Global[t]++
			if c.DentistID != 0 {
				blocks := idx.Dentist[c.DentistID]
				if blocks == nil {
					blocks = make(map[TimeOfDay]bool)
					idx.Dentist[c.DentistID] = blocks
				}
				blocks[t] = true
			}
		}
	}
	return idx
}

// DentistFree reports whether the dentist has no claim on any block of
// [start, start+blocks*30).
func (idx *CapacityIndex) DentistFree(dentistID int, start TimeOfDay, blocks int) bool {
	held := idx.Dentist[dentistID]
	if held == nil {
		return true
	}
	for i := 0; i < blocks; i++ {
		if held[start.AddBlocks(i)] {
			return false
		}
	}
	return true
}
