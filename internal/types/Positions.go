/*

This file contains the position and planning types that flow between the
allocation optimizer, the rebalance planner and the decision gate.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Position is the vault's current holding in one protocol. Supplied by the
// position source each cycle; read-only to the engine.
type Position struct {
	Protocol string  `json:"protocol"`
	ValueUSD float64 `json:"value_usd"`
	Weight   float64 `json:"weight"` // ValueUSD / total vault value
	APY      float64 `json:"apy"`    // the position's current yield, as a fraction
}

// AllocationPlan maps protocol identifiers to target weights. Whenever at
// least one opportunity passes filtering, the weights are non-negative and
// sum to exactly 1.0 after normalization.
type AllocationPlan map[string]float64

// TransferInstruction is one pairwise capital move produced by the planner.
// AmountBase carries the same amount in USDC base units (6 decimals) for the
// execution collaborator.
type TransferInstruction struct {
	FromProtocol string      `json:"from_protocol"`
	ToProtocol   string      `json:"to_protocol"`
	AmountUSD    float64     `json:"amount_usd"`
	AmountBase   sdkmath.Int `json:"amount_base"`
}

// RebalanceDecision is the gate's packaged verdict for one cycle. Constructed
// fresh each cycle, never mutated afterwards, consumed once by the executor.
type RebalanceDecision struct {
	ShouldRebalance     bool                  `json:"should_rebalance"`
	Reason              string                `json:"reason"`
	Transfers           []TransferInstruction `json:"transfers"`
	ExpectedImprovement float64               `json:"expected_improvement"` // APY fraction
	EstimatedCostUSD    float64               `json:"estimated_cost_usd"`
	DecidedAt           time.Time             `json:"decided_at"`
}
