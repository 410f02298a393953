package utils

import (
	"math"

	sdkmath "cosmossdk.io/math"
)

// USDC carries 6 decimal places on every chain the engine routes across.
const usdcDecimals = 6

// USDToBaseUnits converts a USD amount into USDC base units (micro-USDC),
// truncating sub-unit dust.
func USDToBaseUnits(amountUSD float64) sdkmath.Int {
	if math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) || amountUSD <= 0 {
		return sdkmath.ZeroInt()
	}
	base := math.Floor(amountUSD * math.Pow10(usdcDecimals))
	return sdkmath.NewInt(int64(base))
}

// BaseUnitsToUSD converts USDC base units back into a float USD amount.
func BaseUnitsToUSD(amount sdkmath.Int) float64 {
	dec := sdkmath.LegacyNewDecFromInt(amount).
		Quo(sdkmath.LegacyNewDec(10).Power(usdcDecimals))
	return dec.MustFloat64()
}
