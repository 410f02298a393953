/*

This file contains the cross-chain cost model: it charges each opportunity the
one-time cost of reaching its chain from the home chain, annualizes that cost
against a fixed reference notional, and derives the break-even holding period.

*/

package analyzer

import (
	"errors"
	"math"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var costLogger = logger.GetForComponent("cost_model")

var ErrInvalidCostTable = errors.New("invalid chain cost table")

// ApplyCrossChainCosts annotates each opportunity with its entry cost and
// cost-adjusted yield figures, relative to the engine's home chain.
// Inputs:
//   - opportunities: the ranked list; entries are modified in place.
//   - costs: per-chain cost assumptions. A chain missing from the table is
//     treated as unreachable and its opportunities are dropped.
//   - homeChain: the chain the principal currently sits on. Opportunities on
//     the home chain pay gas but no bridge toll.
//   - params: supplies the holding horizon and the reference notional.
//
// Output:
//   - The surviving opportunities, still in ranked order, with BridgeCostUSD,
//     GasCostUSD, TotalCostUSD, NetAPY, and MinHoldDays populated.
func ApplyCrossChainCosts(
	opportunities []types.Opportunity,
	costs types.ChainCostTable,
	homeChain string,
	params types.EngineParameters,
) ([]types.Opportunity, error) {
	if params.CostReferenceNotionalUSD <= 0 {
		return nil, errors.Join(ErrInvalidCostTable, errors.New("CostReferenceNotionalUSD must be positive"))
	}
	if params.HoldingHorizonDays <= 0 {
		return nil, errors.Join(ErrInvalidCostTable, errors.New("HoldingHorizonDays must be positive"))
	}

	result := make([]types.Opportunity, 0, len(opportunities))

	for _, opp := range opportunities {
		chainCost, ok := costs[opp.Chain]
		if !ok {
			costLogger.Warn().
				Str("protocol", opp.Protocol).
				Str("chain", opp.Chain).
				Msg("Chain missing from cost table, dropping opportunity")
			continue
		}

		bridgeCost := chainCost.BridgeCostUSD
		if opp.Chain == homeChain {
			bridgeCost = 0
		}
		gasCost := chainCost.AvgGasCostUSD
		totalCost := bridgeCost + gasCost

		if math.IsNaN(totalCost) || math.IsInf(totalCost, 0) || totalCost < 0 {
			costLogger.Error().
				Str("protocol", opp.Protocol).
				Str("chain", opp.Chain).
				Float64("totalCost", totalCost).
				Msg("Invalid chain cost, dropping opportunity")
			continue
		}

		// Annualize the one-time entry cost over the assumed holding horizon,
		// against a fixed reference notional so rankings stay comparable
		// regardless of actual vault size.
		annualizedCost := (totalCost / params.CostReferenceNotionalUSD) * (365.0 / params.HoldingHorizonDays)

		opp.BridgeCostUSD = bridgeCost
		opp.GasCostUSD = gasCost
		opp.TotalCostUSD = totalCost
		opp.NetAPY = opp.APY - annualizedCost
		opp.MinHoldDays = MinHoldDays(totalCost, opp.APY, params.CostReferenceNotionalUSD)

		result = append(result, opp)
	}

	costLogger.Info().
		Int("in", len(opportunities)).
		Int("out", len(result)).
		Str("homeChain", homeChain).
		Msg("Cross-chain costs applied")

	return result, nil
}

// MinHoldDays is the break-even holding period: the number of whole days the
// position must be held before its yield has paid back the entry cost. Zero
// when the position yields nothing, since no holding period can ever recover
// the cost.
func MinHoldDays(totalCostUSD, apy, notionalUSD float64) int {
	if apy <= 0 || totalCostUSD <= 0 || notionalUSD <= 0 {
		return 0
	}
	dailyYield := apy / 365.0 * notionalUSD
	days := math.Ceil(totalCostUSD / dailyYield)
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return 0
	}
	return int(days)
}

// DailyNetYield is the dollar yield per day a position earns on the given
// notional, net of nothing; callers compare it against amortized entry cost
// to judge whether a move is sustainable over a short horizon.
func DailyNetYield(apy, notionalUSD float64) float64 {
	if apy <= 0 || notionalUSD <= 0 {
		return 0
	}
	return apy / 365.0 * notionalUSD
}
