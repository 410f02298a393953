/*

This file contains the default parameters for the yield router.

These parameters are calibrated for stablecoin principal spread across
established lending and vault protocols. Each value balances capital
preservation against yield capture.

*/

package config

import (
	"github.com/openvault-labs/yieldrouter/internal/types"
)

// DefaultEngineParameters provides the baseline parameter set for the
// engine's scoring, allocation, and decision logic. These values are used if
// no active parameters are found in the database during initialization.
var DefaultEngineParameters = types.EngineParameters{
	// --- Allocation ---
	MaxAllocationPerProtocol: 0.40, // Allocate at most 40% of principal to one protocol.
	// Rationale: A single exploit or depeg on one venue is then contained to
	// under half the principal, while positions stay large enough to matter.

	MinProtocolsForDiversity: 3, // Spread across at least 3 protocols when available.
	// Rationale: Two venues is a coin flip on correlated failure; three keeps
	// the blast radius of any single venue below the concentration cap.

	MinRiskScore: 40.0, // Discard opportunities scoring below 40 of 100.
	// Rationale: The neutral fallback is 50, so 40 admits unknown protocols
	// while still cutting off venues with a known bad profile.

	// --- Decision gate ---
	MinAPYDifferenceToRebalance: 0.005, // Require 50 bps of expected improvement.
	// Rationale: Below 50 bps the improvement is routinely eaten by execution
	// cost and feed noise; churning for less destroys value.

	MinTimeBetweenRebalances: 6 * 60 * 60, // 6 hour cooldown, in seconds.
	// Rationale: Yields on stablecoin venues move on hour timescales, not
	// minutes. A 6 hour floor prevents oscillating between two close venues.

	MaxGasCostForRebalance: 50.0, // Abort plans estimated above $50 of execution cost.
	GasCostPerTransferUSD:  5.0,  // Flat per-transfer execution cost estimate.

	// --- Rebalance planner ---
	RebalanceNoiseThreshold: 0.01, // Ignore weight deltas of 1% or less.
	// Rationale: Deltas this small are float drift and feed jitter, and the
	// transfers they would generate cost more than they move.

	// --- Risk scorer: TVL component ---
	TvlScoreCap:       30.0,
	TvlScaleFactorUSD: 1_000_000, // Divisor before the log10; $1M is the floor of relevance.
	TvlLogWeight:      10.0,      // Each order of magnitude of TVL above $1M earns 10 points, up to the cap.

	// --- Risk scorer: reputation / age / exploit components ---
	ReputationScoreCap:    30.0,
	AgeScoreConstant:      20.0, // Flat score for any protocol the registry tracks.
	ExploitScoreCap:       20.0,
	ExploitPenalty:        15.0,
	CleanHistoryThreshold: 60.0, // Base reputation below 60 takes the exploit penalty.

	// --- Cross-chain cost model ---
	HoldingHorizonDays:       30.0, // Annualize entry costs over an assumed 30 day hold.
	CostReferenceNotionalUSD: 1000.0,
	// Rationale: Costs are amortized against a fixed $1000 reference rather
	// than the live vault size, so rankings are stable across deposits and
	// withdrawals and comparable between cycles.

	TvlBonusThresholdUSD: 100_000_000, // Deep-liquidity bonus kicks in at $100M TVL.
	TvlBonus:             5.0,
	TierPenaltyMedium:    3.0,
	TierPenaltyHigh:      8.0,
	CategoryBonusLending: 3.0,
	CategoryPenaltyPerp:  5.0,
}
