package scheduling

import "fmt"

// BlockMinutes is the scheduling quantum. Every appointment occupies one or
// more contiguous 30-minute blocks.
const BlockMinutes = 30

// TimeOfDay is a clock time expressed as minutes since midnight, clinic-local.
// Block labels like "08:30" are the string form of a TimeOfDay.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" (seconds ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddBlocks returns the label blocks*30 minutes after t.
func (t TimeOfDay) AddBlocks(blocks int) TimeOfDay {
	return t + TimeOfDay(blocks*BlockMinutes)
}

// Minutes returns the raw minutes-since-midnight value, as persisted.
func (t TimeOfDay) Minutes() int { return int(t) }
