package scheduling

// BuildGrid returns the ordered block-start times between open (inclusive)
// and close (exclusive), stepping by BlockMinutes. A start is only part of
// the grid when its whole block fits before close, so a booking admitted at
// any grid label always ends within clinic hours.
//
// Degenerate inputs (close <= open, or either zero on a closed day) yield an
// empty grid and the day is unbookable.
func BuildGrid(open, close TimeOfDay) []TimeOfDay {
	if close <= open {
		return nil
	}
	var grid []TimeOfDay
	for t := open; t+BlockMinutes <= close; t += BlockMinutes {
		grid = append(grid, t)
	}
	return grid
}

// GridIndex reports the position of start in the grid, or -1 when start is
// not a grid member.
func GridIndex(grid []TimeOfDay, start TimeOfDay) int {
	for i, t := range grid {
		if t == start {
			return i
		}
	}
	return -1
}
