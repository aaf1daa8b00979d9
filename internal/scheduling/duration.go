package scheduling

// Service is the scheduling view of a treatment definition. PerUnitMinutes
// is zero for flat services; for per-unit services (e.g. extractions billed
// per tooth) the unit count is supplied with the booking request.
type Service struct {
	ID             int
	Name           string
	BaseMinutes    int
	PerUnitMinutes int
	UnitCap        int
}

// PerUnit reports whether the service duration depends on a unit count.
func (s Service) PerUnit() bool { return s.PerUnitMinutes > 0 }

// BlocksNeeded converts a service duration into the number of contiguous
// blocks it occupies, rounding up. The result is always >= 1.
//
// A per-unit service queried without its unit count fails with
// UnitsRequiredError: slot listing may pass a provisional count, but a final
// booking decision never may omit it.
func BlocksNeeded(svc Service, units *int) (int, error) {
	minutes := svc.BaseMinutes
	if svc.PerUnit() {
		if units == nil {
			return 0, &UnitsRequiredError{ServiceID: svc.ID, ServiceName: svc.Name}
		}
		n := *units
		if n < 1 {
			n = 1
		}
		if svc.UnitCap > 0 && n > svc.UnitCap {
			n = svc.UnitCap
		}
		minutes += n * svc.PerUnitMinutes
	}
	blocks := (minutes + BlockMinutes - 1) / BlockMinutes
	if blocks < 1 {
		blocks = 1
	}
	return blocks, nil
}
