package scheduling

// DaySnapshot is the resolved operating facts for one calendar date: clinic
// hours after any per-date override, the global per-block capacity and the
// dentists working that day. It is recomputed on every admission check so
// same-day administrative overrides take effect immediately.
type DaySnapshot struct {
	IsOpen           bool
	Open             TimeOfDay
	Close            TimeOfDay
	Capacity         int
	ActiveDentistIDs []int
}

// DentistHours is an optional custom working window for one dentist on the
// weekday of the date under check. It replaces the clinic hours for grid
// construction only when the admission honors that dentist as preference.
type DentistHours struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// CheckOptions tunes one admission check.
type CheckOptions struct {
	// Units is the unit count for per-unit services.
	Units *int
	// ExcludeBookingID removes a booking's own claim when re-validating it.
	ExcludeBookingID int
	// ForceDentistID pins the assignment during staff approval.
	ForceDentistID int
	// HonorPreference restricts candidates to PreferredDentistID when set.
	HonorPreference    bool
	PreferredDentistID int
	// PreferredHours carries the preferred dentist's custom hours for the
	// weekday, when any exist.
	PreferredHours *DentistHours
}

// Admission is a successful capacity check: the run is admissible and, when
// a dentist could be resolved, bound to them.
type Admission struct {
	DentistID       int
	HonorPreference bool
	Start           TimeOfDay
	End             TimeOfDay
	Blocks          int
}

// Check is the single admission pipeline shared by creation, staff approval
// and reschedule. Given a fresh snapshot and the date's current active
// claims it decides whether a run starting at start can be admitted, and for
// whom. Steps short-circuit on the first failure:
//
//	closed day -> ErrClinicClosed
//	start not on the grid -> InvalidStartTimeError
//	per-unit service without units -> UnitsRequiredError
//	run past closing or block at capacity -> SlotFullError (first offender)
//	no feasible dentist -> PreferredDentistConflictError / ErrNoDentistAvailable
func Check(snap DaySnapshot, svc Service, start TimeOfDay, claims []BookingClaim, opts CheckOptions) (*Admission, error) {
	if !snap.IsOpen {
		return nil, ErrClinicClosed
	}

	open, close := effectiveHours(snap, opts)
	grid := BuildGrid(open, close)
	pos := GridIndex(grid, start)
	if pos < 0 {
		return nil, &InvalidStartTimeError{Start: start}
	}

	blocks, err := BlocksNeeded(svc, opts.Units)
	if err != nil {
		return nil, err
	}

	idx := BuildCapacityIndex(claims, opts.ExcludeBookingID)
	for i := 0; i < blocks; i++ {
		label := start.AddBlocks(i)
		if pos+i >= len(grid) {
			// Run extends past closing: the first label beyond the grid is
			// the offending block.
			return nil, &SlotFullError{Block: label}
		}
		if idx.Global[label] >= snap.Capacity {
			return nil, &SlotFullError{Block: label}
		}
	}

	assignment, err := ResolveDentist(AssignmentRequest{
		ActiveDentistIDs:   snap.ActiveDentistIDs,
		Start:              start,
		Blocks:             blocks,
		PreferredDentistID: opts.PreferredDentistID,
		HonorPreference:    opts.HonorPreference,
		ForceDentistID:     opts.ForceDentistID,
	}, idx)
	if err != nil {
		return nil, err
	}

	return &Admission{
		DentistID:       assignment.DentistID,
		HonorPreference: assignment.HonorPreference,
		Start:           start,
		End:             start.AddBlocks(blocks),
		Blocks:          blocks,
	}, nil
}

// ValidStartTimes runs Check over every grid label and keeps the admissible
// starts, in grid order. Runs whose tail would extend past closing are
// excluded rather than reported as errors, so the list is directly usable by
// slot pickers.
func ValidStartTimes(snap DaySnapshot, svc Service, claims []BookingClaim, opts CheckOptions) ([]TimeOfDay, error) {
	if !snap.IsOpen {
		return nil, nil
	}
	if svc.PerUnit() && opts.Units == nil {
		// Listing may not defer the unit count either: without it the run
		// length, and therefore the feasible starts, are unknown.
		return nil, &UnitsRequiredError{ServiceID: svc.ID, ServiceName: svc.Name}
	}
	open, close := effectiveHours(snap, opts)
	var starts []TimeOfDay
	for _, label := range BuildGrid(open, close) {
		if _, err := Check(snap, svc, label, claims, opts); err == nil {
			starts = append(starts, label)
		}
	}
	return starts, nil
}

// effectiveHours picks the window the grid is built from: the preferred
// dentist's custom hours when the admission honors that preference, the
// clinic hours otherwise.
func effectiveHours(snap DaySnapshot, opts CheckOptions) (TimeOfDay, TimeOfDay) {
	honoring := opts.ForceDentistID == 0 &&
		opts.HonorPreference &&
		opts.PreferredDentistID != 0 &&
		containsID(snap.ActiveDentistIDs, opts.PreferredDentistID)
	if honoring && opts.PreferredHours != nil {
		return opts.PreferredHours.Open, opts.PreferredHours.Close
	}
	return snap.Open, snap.Close
}
