package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

func TestPlanTransfers_SingleSourceSingleDestination(t *testing.T) {
	current := map[string]float64{"protocol-x": 1.0}
	target := types.AllocationPlan{"protocol-x": 0.6, "protocol-y": 0.4}

	transfers, err := PlanTransfers(current, target, 1000, 0.01)
	require.NoError(t, err)
	require.Len(t, transfers, 1)

	assert.Equal(t, "protocol-x", transfers[0].FromProtocol)
	assert.Equal(t, "protocol-y", transfers[0].ToProtocol)
	assert.InDelta(t, 400.0, transfers[0].AmountUSD, 0.001)
	assert.Equal(t, int64(400_000_000), transfers[0].AmountBase.Int64())
}

func TestPlanTransfers_IdenticalWeightsProduceNoPlan(t *testing.T) {
	current := map[string]float64{"a": 0.5, "b": 0.5}
	target := types.AllocationPlan{"a": 0.5, "b": 0.5}

	transfers, err := PlanTransfers(current, target, 1000, 0.01)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestPlanTransfers_NoiseThresholdSuppressesSmallDeltas(t *testing.T) {
	current := map[string]float64{"a": 0.505, "b": 0.495}
	target := types.AllocationPlan{"a": 0.5, "b": 0.5}

	transfers, err := PlanTransfers(current, target, 1000, 0.01)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestPlanTransfers_GreedyMatchingConservesCapital(t *testing.T) {
	current := map[string]float64{"a": 0.7, "b": 0.3}
	target := types.AllocationPlan{"c": 0.5, "d": 0.5}

	transfers, err := PlanTransfers(current, target, 10_000, 0.01)
	require.NoError(t, err)
	require.NotEmpty(t, transfers)

	// Total moved equals the full vault since everything changes hands.
	assert.InDelta(t, 10_000, TotalTransferAmount(transfers), 0.01)

	// Every instruction drains a current holder into a target protocol.
	for _, tr := range transfers {
		assert.Contains(t, []string{"a", "b"}, tr.FromProtocol)
		assert.Contains(t, []string{"c", "d"}, tr.ToProtocol)
		assert.Greater(t, tr.AmountUSD, 0.0)
	}
}

func TestPlanTransfers_DeterministicOrdering(t *testing.T) {
	current := map[string]float64{"zeta": 0.5, "alpha": 0.5}
	target := types.AllocationPlan{"mid": 1.0}

	first, err := PlanTransfers(current, target, 1000, 0.01)
	require.NoError(t, err)
	second, err := PlanTransfers(current, target, 1000, 0.01)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].FromProtocol, second[i].FromProtocol)
		assert.Equal(t, first[i].ToProtocol, second[i].ToProtocol)
	}
	// Lexicographic visiting order: alpha drains before zeta.
	assert.Equal(t, "alpha", first[0].FromProtocol)
}

func TestPlanTransfers_RejectsInvalidInput(t *testing.T) {
	_, err := PlanTransfers(nil, nil, -1, 0.01)
	assert.ErrorIs(t, err, ErrInvalidPlannerInput)

	_, err = PlanTransfers(nil, nil, 1000, -0.5)
	assert.ErrorIs(t, err, ErrInvalidPlannerInput)
}
