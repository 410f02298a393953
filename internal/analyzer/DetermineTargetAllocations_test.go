package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

func sumWeights(plan types.AllocationPlan) float64 {
	var sum float64
	for _, w := range plan {
		sum += w
	}
	return sum
}

func TestDetermineTargetAllocations_ProportionalToAdjustedAPY(t *testing.T) {
	params := testParams()
	params.MaxAllocationPerProtocol = 1.0 // cap off, pure proportionality
	opps := []types.Opportunity{
		{Protocol: "a", RiskAdjustedAPY: 0.06},
		{Protocol: "b", RiskAdjustedAPY: 0.03},
		{Protocol: "c", RiskAdjustedAPY: 0.01},
	}

	plan, err := DetermineTargetAllocations(opps, params)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.InDelta(t, 0.6, plan["a"], 0.001)
	assert.InDelta(t, 0.3, plan["b"], 0.001)
	assert.InDelta(t, 0.1, plan["c"], 0.001)
	assert.InDelta(t, 1.0, sumWeights(plan), 1e-9)
}

func TestDetermineTargetAllocations_CapThenRenormalize(t *testing.T) {
	params := testParams()
	params.MinProtocolsForDiversity = 1
	params.MaxAllocationPerProtocol = 0.6
	opps := []types.Opportunity{
		{Protocol: "dominant", RiskAdjustedAPY: 0.09},
		{Protocol: "minor", RiskAdjustedAPY: 0.01},
	}

	plan, err := DetermineTargetAllocations(opps, params)
	require.NoError(t, err)

	// Raw weights 0.9 / 0.1; the cap trims the first to 0.6, then
	// renormalizing over 0.7 lifts both. The cap is a pre-normalization
	// ceiling, so the dominant weight ends above 0.6.
	assert.InDelta(t, 0.6/0.7, plan["dominant"], 0.001)
	assert.InDelta(t, 0.1/0.7, plan["minor"], 0.001)
	assert.InDelta(t, 1.0, sumWeights(plan), 1e-9)
}

func TestDetermineTargetAllocations_EqualWeightFallback(t *testing.T) {
	params := testParams()
	opps := []types.Opportunity{
		{Protocol: "a", RiskAdjustedAPY: 0},
		{Protocol: "b", RiskAdjustedAPY: 0},
		{Protocol: "c", RiskAdjustedAPY: 0},
		{Protocol: "d", RiskAdjustedAPY: 0},
	}

	plan, err := DetermineTargetAllocations(opps, params)
	require.NoError(t, err)
	require.Len(t, plan, 4)

	for _, protocol := range []string{"a", "b", "c", "d"} {
		assert.InDelta(t, 0.25, plan[protocol], 0.001)
	}
	assert.InDelta(t, 1.0, sumWeights(plan), 1e-9)
}

func TestDetermineTargetAllocations_FewerThanDiversityFloor(t *testing.T) {
	params := testParams() // floor of 3
	opps := []types.Opportunity{
		{Protocol: "a", RiskAdjustedAPY: 0.05},
		{Protocol: "b", RiskAdjustedAPY: 0.05},
	}

	plan, err := DetermineTargetAllocations(opps, params)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.InDelta(t, 1.0, sumWeights(plan), 1e-9)
}

func TestDetermineTargetAllocations_EmptyInputEmptyPlan(t *testing.T) {
	plan, err := DetermineTargetAllocations(nil, testParams())
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestDetermineTargetAllocations_RejectsBadParameters(t *testing.T) {
	params := testParams()
	params.MinProtocolsForDiversity = 0
	_, err := DetermineTargetAllocations(nil, params)
	assert.ErrorIs(t, err, ErrInvalidAllocationParameters)

	params = testParams()
	params.MaxAllocationPerProtocol = 1.5
	_, err = DetermineTargetAllocations(nil, params)
	assert.ErrorIs(t, err, ErrInvalidAllocationParameters)
}
