package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGrid(t *testing.T) {
	grid := BuildGrid(at(9, 0), at(12, 0))
	assert.Equal(t, []TimeOfDay{
		at(9, 0), at(9, 30), at(10, 0), at(10, 30), at(11, 0), at(11, 30),
	}, grid)
}

func TestBuildGridLastBlockMustFit(t *testing.T) {
	// 09:00-11:45: 11:30 would end at 12:00, past close, so the grid stops
	// at 11:00.
	grid := BuildGrid(at(9, 0), at(11, 45))
	assert.Equal(t, at(11, 0), grid[len(grid)-1])
}

func TestBuildGridDegenerate(t *testing.T) {
	assert.Nil(t, BuildGrid(at(12, 0), at(9, 0)))
	assert.Nil(t, BuildGrid(at(9, 0), at(9, 0)))
	assert.Nil(t, BuildGrid(0, 0))
	// A window shorter than one block has no bookable starts.
	assert.Nil(t, BuildGrid(at(9, 0), at(9, 15)))
}

func TestGridIndex(t *testing.T) {
	grid := BuildGrid(at(8, 0), at(17, 0))
	assert.Equal(t, 0, GridIndex(grid, at(8, 0)))
	assert.Equal(t, 3, GridIndex(grid, at(9, 30)))
	assert.Equal(t, -1, GridIndex(grid, at(8, 15)))
	assert.Equal(t, -1, GridIndex(grid, at(17, 0)))
	assert.Equal(t, -1, GridIndex(grid, at(7, 30)))
}
