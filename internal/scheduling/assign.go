package scheduling

// AssignmentRequest describes one dentist-assignment attempt.
//
// ForceDentistID pins the candidate set to an already-bound dentist so that
// staff approval can never silently move a patient to somebody else.
// PreferredDentistID is only honored when HonorPreference is set and the
// dentist is active on the requested day.
type AssignmentRequest struct {
	ActiveDentistIDs   []int
	Start              TimeOfDay
	Blocks             int
	PreferredDentistID int
	HonorPreference    bool
	ForceDentistID     int
}

// Assignment is a successful dentist resolution. HonorPreference reports
// whether the preference actually constrained the choice: it is false when
// no preference was requested, when the preferred dentist was inactive that
// day, or on the forced approval path - even if the same dentist ends up
// assigned.
type Assignment struct {
	DentistID       int
	HonorPreference bool
}

// candidateSet is one step of the forced -> preferred -> any-active cascade.
type candidateSet struct {
	ids      []int
	honoring bool
}

func candidateSets(req AssignmentRequest) candidateSet {
	if req.ForceDentistID != 0 {
		return candidateSet{ids: []int{req.ForceDentistID}}
	}
	if req.HonorPreference && req.PreferredDentistID != 0 && containsID(req.ActiveDentistIDs, req.PreferredDentistID) {
		return candidateSet{ids: []int{req.PreferredDentistID}, honoring: true}
	}
	return candidateSet{ids: req.ActiveDentistIDs}
}

// ResolveDentist picks the first candidate free across the whole run. When
// an honored preference cannot be satisfied it fails strictly with
// PreferredDentistConflictError; any other infeasibility is
// ErrNoDentistAvailable.
func ResolveDentist(req AssignmentRequest, idx *CapacityIndex) (Assignment, error) {
	set := candidateSets(req)
	for _, id := range set.ids {
		if idx.DentistFree(id, req.Start, req.Blocks) {
			return Assignment{DentistID: id, HonorPreference: set.honoring}, nil
		}
	}
	if set.honoring {
		return Assignment{}, &PreferredDentistConflictError{DentistID: req.PreferredDentistID}
	}
	return Assignment{}, ErrNoDentistAvailable
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
