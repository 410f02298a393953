package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

func testParams() types.EngineParameters {
	return types.EngineParameters{
		MaxAllocationPerProtocol: 0.40,
		MinProtocolsForDiversity: 3,
		MinRiskScore:             40,

		MinAPYDifferenceToRebalance: 0.005,
		MinTimeBetweenRebalances:    6 * 60 * 60,
		MaxGasCostForRebalance:      50,
		GasCostPerTransferUSD:       5,
		RebalanceNoiseThreshold:     0.01,

		TvlScoreCap:       30,
		TvlScaleFactorUSD: 1_000_000,
		TvlLogWeight:      10,

		ReputationScoreCap:    30,
		AgeScoreConstant:      20,
		ExploitScoreCap:       20,
		ExploitPenalty:        15,
		CleanHistoryThreshold: 60,

		HoldingHorizonDays:       30,
		CostReferenceNotionalUSD: 1000,
		TvlBonusThresholdUSD:     100_000_000,
		TvlBonus:                 5,
		TierPenaltyMedium:        3,
		TierPenaltyHigh:          8,
		CategoryBonusLending:     3,
		CategoryPenaltyPerp:      5,
	}
}

func makeRecord(protocol string, apy, tvl float64) types.YieldRecord {
	return types.YieldRecord{
		Protocol:   protocol,
		Chain:      "arbitrum",
		Asset:      "USDC",
		APY:        apy,
		TvlUSD:     tvl,
		PoolID:     protocol + "-usdc",
		ObservedAt: time.Now(),
	}
}

func TestCalculateTvlScore_LogScaling(t *testing.T) {
	params := testParams()

	// $10M = one order of magnitude above the $1M scale factor.
	score, err := CalculateTvlScore(10_000_000, params)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, score, 0.001)

	// $1B = three orders of magnitude, exactly at the cap.
	score, err = CalculateTvlScore(1_000_000_000, params)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, score, 0.001)

	// $100B would score 50 uncapped; the cap holds.
	score, err = CalculateTvlScore(100_000_000_000, params)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, score, 0.001)

	// Below the scale factor the log floor kicks in.
	score, err = CalculateTvlScore(500_000, params)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 0.001)
}

func TestCalculateTvlScore_RejectsInvalid(t *testing.T) {
	params := testParams()

	_, err := CalculateTvlScore(-1, params)
	assert.Error(t, err)

	_, err = CalculateTvlScore(math.NaN(), params)
	assert.Error(t, err)

	_, err = CalculateTvlScore(math.Inf(1), params)
	assert.Error(t, err)
}

func TestCalculateReputationScore_Linear(t *testing.T) {
	params := testParams()

	score, err := CalculateReputationScore(95, params)
	require.NoError(t, err)
	assert.InDelta(t, 28.5, score, 0.001)

	score, err = CalculateReputationScore(0, params)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 0.001)

	_, err = CalculateReputationScore(101, params)
	assert.Error(t, err)
}

func TestCalculateExploitScore_Threshold(t *testing.T) {
	params := testParams()

	// Clean history: full cap.
	score, err := CalculateExploitScore(95, params)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, score, 0.001)

	// Below the clean-history threshold: penalty applies.
	score, err = CalculateExploitScore(50, params)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, score, 0.001)

	// Exactly at the threshold counts as clean.
	score, err = CalculateExploitScore(60, params)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, score, 0.001)
}

func TestCalculateRiskScore_ComponentSum(t *testing.T) {
	params := testParams()
	meta := types.ProtocolMeta{
		Name:           "aave-v3",
		BaseReputation: 95,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierLow,
	}

	score, err := CalculateRiskScore(makeRecord("aave-v3", 0.05, 1_000_000_000), meta, params)
	require.NoError(t, err)

	// 30 (TVL) + 28.5 (reputation) + 20 (age) + 20 (exploit)
	assert.InDelta(t, 30.0, score.TvlScore, 0.001)
	assert.InDelta(t, 28.5, score.RepScore, 0.001)
	assert.InDelta(t, 20.0, score.AgeScore, 0.001)
	assert.InDelta(t, 20.0, score.ExploitScore, 0.001)
	assert.InDelta(t, 98.5, score.Total, 0.001)
	assert.False(t, score.Neutral)
}

func TestCalculateRiskScore_ClampsToHundred(t *testing.T) {
	params := testParams()
	// Inflate the caps so the raw sum exceeds 100.
	params.TvlScoreCap = 60
	params.ReputationScoreCap = 60

	meta := types.ProtocolMeta{Name: "aave-v3", BaseReputation: 100}
	score, err := CalculateRiskScore(makeRecord("aave-v3", 0.05, 1_000_000_000_000), meta, params)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score.Total, 0.001)
}

func TestCalculateRiskScores_UnknownProtocolGetsNeutral(t *testing.T) {
	params := testParams()
	registry := map[string]types.ProtocolMeta{
		"aave-v3": {Name: "aave-v3", BaseReputation: 95, Category: types.CategoryLending},
	}
	records := []types.YieldRecord{
		makeRecord("aave-v3", 0.05, 1_000_000_000),
		makeRecord("mystery-farm", 0.40, 2_000_000),
	}

	scores, err := CalculateRiskScores(records, registry, params, false)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.InDelta(t, 50.0, scores["mystery-farm"].Total, 0.001)
	assert.True(t, scores["mystery-farm"].Neutral)
	assert.False(t, scores["aave-v3"].Neutral)
}

func TestCalculateCrossChainRiskScore_Adjustments(t *testing.T) {
	params := testParams()

	// Lending protocol with deep TVL and low tier: +5 bonus, +3 lending, no
	// tier penalty, on top of the 98.5 base, clamped to 100.
	lending := types.ProtocolMeta{
		Name:           "aave-v3",
		BaseReputation: 95,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierLow,
	}
	score, err := CalculateCrossChainRiskScore(makeRecord("aave-v3", 0.05, 1_000_000_000), lending, params)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score.Total, 0.001)

	// Perp liquidity with high exit tier and thin TVL: both penalties apply,
	// no bonus. Base = 10 + 16.5 + 20 + 5 = 51.5; minus 8 and 5 = 38.5.
	perp := types.ProtocolMeta{
		Name:           "gmx-v2-perps",
		BaseReputation: 55,
		Category:       types.CategoryPerpLiquidity,
		LiquidityTier:  types.TierHigh,
	}
	score, err = CalculateCrossChainRiskScore(makeRecord("gmx-v2-perps", 0.15, 10_000_000), perp, params)
	require.NoError(t, err)
	assert.InDelta(t, 38.5, score.Total, 0.001)
}

func TestValidateYieldRecord(t *testing.T) {
	good := makeRecord("aave-v3", 0.05, 1_000_000)
	assert.NoError(t, ValidateYieldRecord(good))

	bad := good
	bad.Protocol = ""
	assert.Error(t, ValidateYieldRecord(bad))

	bad = good
	bad.APY = math.NaN()
	assert.Error(t, ValidateYieldRecord(bad))

	bad = good
	bad.TvlUSD = -5
	assert.Error(t, ValidateYieldRecord(bad))
}
