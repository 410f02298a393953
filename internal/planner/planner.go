/*

This file contains the rebalance planner: it compares current against target
weights and turns meaningful deltas into a minimal set of pairwise transfer
instructions via greedy source-to-destination matching.

*/

package planner

import (
	"errors"
	"math"
	"sort"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
	"github.com/openvault-labs/yieldrouter/internal/utils"
)

var plannerLogger = logger.GetForComponent("planner")

var ErrInvalidPlannerInput = errors.New("invalid planner input")

type flow struct {
	protocol  string
	amountUSD float64
}

// PlanTransfers computes the transfer list that moves the vault from its
// current weights to the target plan.
// Inputs:
//   - current: current weights per protocol (from live positions).
//   - target: the allocation plan to reach.
//   - totalValueUSD: the vault's total value, used to convert weight deltas
//     into dollar amounts.
//   - noiseThreshold: weight deltas with absolute value at or below this are
//     treated as rounding noise and ignored.
//
// Output:
//   - Transfer instructions whose total equals min(total outflow, total
//     inflow). Identical current and target weights produce an empty list.
//
// Protocols are visited in lexicographic order so the same inputs always
// yield the same plan.
func PlanTransfers(
	current map[string]float64,
	target types.AllocationPlan,
	totalValueUSD float64,
	noiseThreshold float64,
) ([]types.TransferInstruction, error) {
	if math.IsNaN(totalValueUSD) || math.IsInf(totalValueUSD, 0) || totalValueUSD < 0 {
		return nil, errors.Join(ErrInvalidPlannerInput, errors.New("total value must be finite and non-negative"))
	}
	if noiseThreshold < 0 {
		return nil, errors.Join(ErrInvalidPlannerInput, errors.New("noise threshold cannot be negative"))
	}

	union := make(map[string]struct{}, len(current)+len(target))
	for protocol := range current {
		union[protocol] = struct{}{}
	}
	for protocol := range target {
		union[protocol] = struct{}{}
	}
	protocols := make([]string, 0, len(union))
	for protocol := range union {
		protocols = append(protocols, protocol)
	}
	sort.Strings(protocols)

	var sources []flow
	var destinations []flow
	for _, protocol := range protocols {
		delta := target[protocol] - current[protocol]
		if math.Abs(delta) <= noiseThreshold {
			continue
		}
		amount := math.Abs(delta) * totalValueUSD
		if delta < 0 {
			sources = append(sources, flow{protocol: protocol, amountUSD: amount})
		} else {
			destinations = append(destinations, flow{protocol: protocol, amountUSD: amount})
		}
	}

	if len(sources) == 0 || len(destinations) == 0 {
		plannerLogger.Debug().
			Int("sources", len(sources)).
			Int("destinations", len(destinations)).
			Msg("No meaningful deltas on both sides, empty plan")
		return nil, nil
	}

	// Residuals smaller than this are artifacts of float subtraction, not
	// capital worth moving.
	epsilon := noiseThreshold * totalValueUSD

	var transfers []types.TransferInstruction
	i, j := 0, 0
	for i < len(sources) && j < len(destinations) {
		amount := math.Min(sources[i].amountUSD, destinations[j].amountUSD)
		if amount > epsilon {
			transfers = append(transfers, types.TransferInstruction{
				FromProtocol: sources[i].protocol,
				ToProtocol:   destinations[j].protocol,
				AmountUSD:    amount,
				AmountBase:   utils.USDToBaseUnits(amount),
			})
		}
		sources[i].amountUSD -= amount
		destinations[j].amountUSD -= amount
		if sources[i].amountUSD <= epsilon {
			i++
		}
		if destinations[j].amountUSD <= epsilon {
			j++
		}
	}

	plannerLogger.Info().
		Int("transfers", len(transfers)).
		Float64("totalValueUSD", totalValueUSD).
		Msg("Transfer plan computed")

	return transfers, nil
}

// TotalTransferAmount sums the dollar amount moved by a plan.
func TotalTransferAmount(transfers []types.TransferInstruction) float64 {
	var total float64
	for _, t := range transfers {
		total += t.AmountUSD
	}
	return total
}
