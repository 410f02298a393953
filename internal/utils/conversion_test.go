package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
)

func TestUSDToBaseUnits(t *testing.T) {
	assert.Equal(t, int64(400_000_000), USDToBaseUnits(400).Int64())
	assert.Equal(t, int64(1_500_000), USDToBaseUnits(1.5).Int64())

	// Sub-micro dust truncates down.
	assert.Equal(t, int64(1), USDToBaseUnits(0.0000019).Int64())
}

func TestUSDToBaseUnits_InvalidInputsAreZero(t *testing.T) {
	assert.True(t, USDToBaseUnits(0).IsZero())
	assert.True(t, USDToBaseUnits(-5).IsZero())
	assert.True(t, USDToBaseUnits(math.NaN()).IsZero())
	assert.True(t, USDToBaseUnits(math.Inf(1)).IsZero())
}

func TestBaseUnitsToUSD_RoundTrip(t *testing.T) {
	amount := USDToBaseUnits(1234.56)
	assert.InDelta(t, 1234.56, BaseUnitsToUSD(amount), 0.000001)

	assert.InDelta(t, 0.000001, BaseUnitsToUSD(sdkmath.NewInt(1)), 1e-9)
}
