package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBlocksNeededFlatService(t *testing.T) {
	cleaning := Service{ID: 1, Name: "Cleaning", BaseMinutes: 30}
	rootCanal := Service{ID: 2, Name: "Root canal", BaseMinutes: 90}

	blocks, err := BlocksNeeded(cleaning, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, blocks)

	blocks, err = BlocksNeeded(rootCanal, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, blocks)
}

func TestBlocksNeededRoundsUp(t *testing.T) {
	checkup := Service{ID: 3, Name: "Checkup", BaseMinutes: 45}
	blocks, err := BlocksNeeded(checkup, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, blocks)
}

func TestBlocksNeededPerUnit(t *testing.T) {
	extraction := Service{ID: 4, Name: "Extraction", BaseMinutes: 15, PerUnitMinutes: 15, UnitCap: 4}

	// 15 + 2*15 = 45 -> 2 blocks
	blocks, err := BlocksNeeded(extraction, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 2, blocks)

	// Unit count clamps to the cap: 15 + 4*15 = 75 -> 3 blocks
	blocks, err = BlocksNeeded(extraction, intPtr(10))
	require.NoError(t, err)
	assert.Equal(t, 3, blocks)

	// Below one clamps to one.
	blocks, err = BlocksNeeded(extraction, intPtr(0))
	require.NoError(t, err)
	assert.Equal(t, 1, blocks)
}

func TestBlocksNeededPerUnitRequiresUnits(t *testing.T) {
	extraction := Service{ID: 4, Name: "Extraction", BaseMinutes: 15, PerUnitMinutes: 15, UnitCap: 4}
	_, err := BlocksNeeded(extraction, nil)
	var unitsErr *UnitsRequiredError
	require.ErrorAs(t, err, &unitsErr)
	assert.Equal(t, "Extraction", unitsErr.ServiceName)
}

func TestBlocksNeededMinimumOneBlock(t *testing.T) {
	quick := Service{ID: 5, Name: "X-ray", BaseMinutes: 10}
	blocks, err := BlocksNeeded(quick, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, blocks)
}
