package scheduling

// HasPatientOverlap reports whether the patient already holds an active
// booking on the date whose block range intersects [start, end). Two
// half-open ranges [s1,e1) and [s2,e2) intersect iff s1 < e2 && s2 < e1.
// Completed bookings never block new admissions.
func HasPatientOverlap(claims []BookingClaim, patientID int, start, end TimeOfDay, excludeID int) bool {
	for _, c := range claims {
		if c.ID == excludeID || c.PatientID != patientID || !ActiveStatus(c.Status) {
			continue
		}
		if c.Start < end && start < c.End {
			return true
		}
	}
	return false
}
