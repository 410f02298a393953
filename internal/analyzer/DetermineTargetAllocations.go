/*

This file contains the allocation optimizer: it spreads the vault's principal
over the top-ranked opportunities proportionally to their risk-adjusted APY,
with a per-protocol concentration cap and a diversity floor.

*/

package analyzer

import (
	"errors"
	"math"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var allocLogger = logger.GetForComponent("allocator")

var ErrInvalidAllocationParameters = errors.New("invalid allocation parameters")

// DetermineTargetAllocations produces the target weight per protocol.
// Inputs:
//   - opportunities: the ranked list, highest risk-adjusted APY first.
//   - params: supplies the diversity floor and the per-protocol cap.
//
// Output:
//   - An AllocationPlan whose weights sum to 1.0 whenever at least one
//     opportunity was supplied. An empty input yields an empty plan and no
//     error; having nowhere to allocate is a normal market condition.
//
// The cap is applied before normalization. Renormalizing can push a weight
// back above the cap; the cap bounds raw concentration, it is not a hard
// post-normalization guarantee.
func DetermineTargetAllocations(opportunities []types.Opportunity, params types.EngineParameters) (types.AllocationPlan, error) {
	if params.MinProtocolsForDiversity < 1 {
		return nil, errors.Join(ErrInvalidAllocationParameters, errors.New("MinProtocolsForDiversity must be at least 1"))
	}
	if params.MaxAllocationPerProtocol <= 0 || params.MaxAllocationPerProtocol > 1 {
		return nil, errors.Join(ErrInvalidAllocationParameters, errors.New("MaxAllocationPerProtocol must be in (0, 1]"))
	}

	plan := make(types.AllocationPlan)
	if len(opportunities) == 0 {
		allocLogger.Warn().Msg("No opportunities to allocate across, returning empty plan")
		return plan, nil
	}

	n := params.MinProtocolsForDiversity
	if len(opportunities) > n {
		n = len(opportunities)
	}
	if n > len(opportunities) {
		n = len(opportunities)
	}
	selected := opportunities[:n]

	var sumAdjusted float64
	for _, opp := range selected {
		sumAdjusted += opp.RiskAdjustedAPY
	}

	if sumAdjusted <= 0 || math.IsNaN(sumAdjusted) || math.IsInf(sumAdjusted, 0) {
		// Degenerate case: nothing selected carries positive adjusted yield.
		// Fall back to equal weights rather than failing the cycle.
		allocLogger.Warn().
			Int("selected", n).
			Float64("sumAdjusted", sumAdjusted).
			Msg("Degenerate allocation inputs, falling back to equal weights")
		equal := 1.0 / float64(n)
		for _, opp := range selected {
			plan[opp.Protocol] = equal
		}
		return plan, nil
	}

	// Pass 1: proportional weights, capped.
	var sumCapped float64
	for _, opp := range selected {
		weight := opp.RiskAdjustedAPY / sumAdjusted
		if weight > params.MaxAllocationPerProtocol {
			weight = params.MaxAllocationPerProtocol
		}
		plan[opp.Protocol] = weight
		sumCapped += weight
	}

	if sumCapped <= 0 || math.IsNaN(sumCapped) || math.IsInf(sumCapped, 0) {
		return nil, errors.New("capped weight sum is not positive and finite")
	}

	// Pass 2: renormalize so the weights sum to exactly 1.0.
	for protocol, weight := range plan {
		plan[protocol] = weight / sumCapped
	}

	allocLogger.Info().
		Int("opportunities", len(opportunities)).
		Int("allocated", len(plan)).
		Float64("cap", params.MaxAllocationPerProtocol).
		Msg("Target allocations determined")

	return plan, nil
}
