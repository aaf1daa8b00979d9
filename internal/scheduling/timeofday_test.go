package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) TimeOfDay { return TimeOfDay(h*60 + m) }

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"08:00", at(8, 0), true},
		{"08:30", at(8, 30), true},
		{"17:00:00", at(17, 0), true},
		{"00:00", at(0, 0), true},
		{"23:59", at(23, 59), true},
		{"24:00", 0, false},
		{"08:60", 0, false},
		{"", 0, false},
		{"morning", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "08:00", at(8, 0).String())
	assert.Equal(t, "09:30", at(9, 30).String())
	assert.Equal(t, "00:00", at(0, 0).String())
}

func TestAddBlocks(t *testing.T) {
	assert.Equal(t, at(9, 0), at(8, 0).AddBlocks(2))
	assert.Equal(t, at(8, 30), at(8, 0).AddBlocks(1))
	assert.Equal(t, at(8, 0), at(8, 0).AddBlocks(0))
}
