/*

This file contains the rebalance decision gate: the stateful checkpoint every
proposed rebalance passes through. It enforces the cooldown, the minimum APY
improvement, and the execution cost ceiling, in that order.

*/

package decision

import (
	"fmt"
	"sync"
	"time"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/planner"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var gateLogger = logger.GetForComponent("decision_gate")

// GateState describes where the gate sits in its cooldown.
type GateState string

const (
	// StateIdle means no accepted rebalance is within the cooldown window.
	StateIdle GateState = "idle"
	// StateCooling means an accepted rebalance is still inside the window.
	StateCooling GateState = "cooling"
)

// Gate is the decision checkpoint. Its only state is the timestamp of the
// last accepted rebalance; everything else is derived per call.
type Gate struct {
	mu            sync.Mutex
	lastRebalance time.Time
	now           func() time.Time
}

// NewGate returns a gate with no rebalance on record, so the first proposal
// is never blocked by cooldown.
func NewGate() *Gate {
	return &Gate{now: time.Now}
}

// NewGateWithClock returns a gate with an injectable clock. Used by tests and
// by replay tooling.
func NewGateWithClock(now func() time.Time) *Gate {
	return &Gate{now: now}
}

// Decide evaluates whether a rebalance should execute now.
// Inputs:
//   - opportunities: the cycle's ranked (and cost-annotated) opportunities.
//   - positions: current holdings with their weights and APYs.
//   - target: the allocation plan proposed for this cycle.
//   - totalValueUSD: total vault value.
//   - params: gate thresholds and the planner noise threshold.
//
// Output: a RebalanceDecision. When the cost ceiling rejects, the transfer
// plan is still attached so operators can inspect what would have run.
//
// Checks run cheapest first. Passing every check does NOT start the cooldown;
// the caller confirms execution with RecordAcceptance.
func (g *Gate) Decide(
	opportunities []types.Opportunity,
	positions []types.Position,
	target types.AllocationPlan,
	totalValueUSD float64,
	params types.EngineParameters,
) (types.RebalanceDecision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	decision := types.RebalanceDecision{DecidedAt: now}

	if len(opportunities) == 0 {
		decision.Reason = "no opportunities passed filtering"
		gateLogger.Warn().Msg("Decision: reject, empty opportunity set")
		return decision, nil
	}

	if remaining := g.cooldownRemainingLocked(now, params); remaining > 0 {
		decision.Reason = fmt.Sprintf("cooldown active, %s remaining", remaining.Round(time.Second))
		gateLogger.Info().
			Dur("remaining", remaining).
			Msg("Decision: reject, cooldown active")
		return decision, nil
	}

	improvement := expectedImprovement(opportunities, positions, target)
	decision.ExpectedImprovement = improvement
	if improvement < params.MinAPYDifferenceToRebalance {
		decision.Reason = fmt.Sprintf(
			"expected improvement %.4f below minimum %.4f",
			improvement, params.MinAPYDifferenceToRebalance,
		)
		gateLogger.Info().
			Float64("improvement", improvement).
			Float64("minimum", params.MinAPYDifferenceToRebalance).
			Msg("Decision: reject, insufficient APY improvement")
		return decision, nil
	}

	current := make(map[string]float64, len(positions))
	for _, pos := range positions {
		current[pos.Protocol] = pos.Weight
	}
	transfers, err := planner.PlanTransfers(current, target, totalValueUSD, params.RebalanceNoiseThreshold)
	if err != nil {
		return types.RebalanceDecision{}, fmt.Errorf("transfer planning failed: %w", err)
	}
	decision.Transfers = transfers

	if len(transfers) == 0 {
		decision.Reason = "target matches current allocation within noise threshold"
		gateLogger.Info().Msg("Decision: reject, nothing to move")
		return decision, nil
	}

	cost := float64(len(transfers)) * params.GasCostPerTransferUSD
	decision.EstimatedCostUSD = cost
	if cost > params.MaxGasCostForRebalance {
		decision.Reason = fmt.Sprintf(
			"estimated cost $%.2f exceeds ceiling $%.2f",
			cost, params.MaxGasCostForRebalance,
		)
		gateLogger.Warn().
			Float64("cost", cost).
			Float64("ceiling", params.MaxGasCostForRebalance).
			Int("transfers", len(transfers)).
			Msg("Decision: reject, cost ceiling exceeded")
		return decision, nil
	}

	decision.ShouldRebalance = true
	decision.Reason = fmt.Sprintf(
		"improvement %.4f over threshold, %d transfers at $%.2f",
		improvement, len(transfers), cost,
	)
	gateLogger.Info().
		Float64("improvement", improvement).
		Int("transfers", len(transfers)).
		Float64("cost", cost).
		Msg("Decision: accept")

	return decision, nil
}

// RecordAcceptance marks the moment a proposed rebalance was actually handed
// to execution, starting the cooldown. The gate never starts its own
// cooldown inside Decide; a proposal that passes the gate but fails
// downstream must not consume the window.
func (g *Gate) RecordAcceptance(at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastRebalance = at
	gateLogger.Info().Time("at", at).Msg("Rebalance acceptance recorded, cooldown started")
}

// State reports whether the gate is idle or cooling.
func (g *Gate) State(params types.EngineParameters) GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cooldownRemainingLocked(g.now(), params) > 0 {
		return StateCooling
	}
	return StateIdle
}

// CooldownRemaining reports how long until the next rebalance is permitted.
func (g *Gate) CooldownRemaining(params types.EngineParameters) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cooldownRemainingLocked(g.now(), params)
}

func (g *Gate) cooldownRemainingLocked(now time.Time, params types.EngineParameters) time.Duration {
	if g.lastRebalance.IsZero() {
		return 0
	}
	window := time.Duration(params.MinTimeBetweenRebalances) * time.Second
	elapsed := now.Sub(g.lastRebalance)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}

// expectedImprovement is the weighted-APY delta between the proposed plan and
// the current book. Target weights are priced with the cycle's opportunity
// APYs; current weights with the APYs the positions already earn.
func expectedImprovement(
	opportunities []types.Opportunity,
	positions []types.Position,
	target types.AllocationPlan,
) float64 {
	oppAPY := make(map[string]float64, len(opportunities))
	for _, opp := range opportunities {
		oppAPY[opp.Protocol] = opp.APY
	}

	var targetAPY float64
	for protocol, weight := range target {
		targetAPY += weight * oppAPY[protocol]
	}

	var currentAPY float64
	for _, pos := range positions {
		currentAPY += pos.Weight * pos.APY
	}

	return targetAPY - currentAPY
}
