/*

This file contains the derived scoring types and the tunable parameter set
for the yield-router engine.

*/

package types

// RiskScore is a protocol's 0-100 safety score with its component breakdown.
// Recomputed every cycle from fresh inputs; never persisted.
type RiskScore struct {
	Protocol     string  `json:"protocol"`
	TvlScore     float64 `json:"tvl_score"`
	RepScore     float64 `json:"reputation_score"`
	AgeScore     float64 `json:"age_score"`
	ExploitScore float64 `json:"exploit_score"`
	Total        float64 `json:"total"`             // clamped to [0, 100]
	Neutral      bool    `json:"neutral,omitempty"` // set when the protocol was unknown and defaulted
}

// Opportunity is a scored, rankable yield candidate derived each cycle from a
// YieldRecord and its RiskScore. The cost fields are only populated when the
// engine runs with a chain cost table (cross-chain mode).
type Opportunity struct {
	Protocol        string           `json:"protocol"`
	Chain           string           `json:"chain"`
	APY             float64          `json:"apy"`
	RiskScore       float64          `json:"risk_score"`
	RiskAdjustedAPY float64          `json:"risk_adjusted_apy"` // APY * riskScore/100
	TvlUSD          float64          `json:"tvl_usd"`
	Category        StrategyCategory `json:"category"`
	LiquidityTier   LiquidityTier    `json:"liquidity_tier"`

	// Cross-chain cost fields, relative to the engine's home chain.
	BridgeCostUSD float64 `json:"bridge_cost_usd,omitempty"`
	GasCostUSD    float64 `json:"gas_cost_usd,omitempty"`
	TotalCostUSD  float64 `json:"total_cost_usd,omitempty"`
	MinHoldDays   int     `json:"min_hold_days,omitempty"` // break-even holding period; 0 when APY <= 0
	NetAPY        float64 `json:"net_apy,omitempty"`       // APY minus annualized entry cost
}

// EngineParameters holds all tunable weights, caps, and thresholds used by
// the engine for scoring, allocation, and the rebalance decision gate.
// Different sets of these parameters can be versioned in the parameter store.
type EngineParameters struct {
	// --- Allocation ---
	MaxAllocationPerProtocol float64 `json:"max_allocation_per_protocol"` // per-protocol weight cap (pre-normalization soft ceiling)
	MinProtocolsForDiversity int     `json:"min_protocols_for_diversity"` // floor on distinct protocols to spread across
	MinRiskScore             float64 `json:"min_risk_score"`              // opportunities scoring below this are discarded

	// --- Decision gate ---
	MinAPYDifferenceToRebalance float64 `json:"min_apy_difference_to_rebalance"` // fraction (0.005 = 50 bps)
	MinTimeBetweenRebalances    int     `json:"min_time_between_rebalances"`     // cooldown, seconds
	MaxGasCostForRebalance      float64 `json:"max_gas_cost_for_rebalance"`      // USD ceiling on estimated execution cost
	GasCostPerTransferUSD       float64 `json:"gas_cost_per_transfer_usd"`       // flat estimate per planned transfer

	// --- Rebalance planner ---
	RebalanceNoiseThreshold float64 `json:"rebalance_noise_threshold"` // weight delta below this is rounding noise

	// --- Risk scorer: TVL component ---
	TvlScoreCap       float64 `json:"tvl_score_cap"`
	TvlScaleFactorUSD float64 `json:"tvl_scale_factor_usd"` // divisor before the log10, dampens whale TVL
	TvlLogWeight      float64 `json:"tvl_log_weight"`

	// --- Risk scorer: reputation / age / exploit components ---
	ReputationScoreCap    float64 `json:"reputation_score_cap"`
	AgeScoreConstant      float64 `json:"age_score_constant"` // flat score for any tracked protocol
	ExploitScoreCap       float64 `json:"exploit_score_cap"`
	ExploitPenalty        float64 `json:"exploit_penalty"`
	CleanHistoryThreshold float64 `json:"clean_history_threshold"` // base reputation below this takes the penalty

	// --- Cross-chain cost model ---
	HoldingHorizonDays       float64 `json:"holding_horizon_days"`        // assumed holding period for cost annualization
	CostReferenceNotionalUSD float64 `json:"cost_reference_notional_usd"` // fixed notional the cost model amortizes against
	TvlBonusThresholdUSD     float64 `json:"tvl_bonus_threshold_usd"`
	TvlBonus                 float64 `json:"tvl_bonus"`
	TierPenaltyMedium        float64 `json:"tier_penalty_medium"`
	TierPenaltyHigh          float64 `json:"tier_penalty_high"`
	CategoryBonusLending     float64 `json:"category_bonus_lending"`
	CategoryPenaltyPerp      float64 `json:"category_penalty_perp"`
}
