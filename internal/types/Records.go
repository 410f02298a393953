/*

This file contains the market-data value objects: the raw yield snapshot the
aggregator feed produces and the static per-protocol metadata used to score it.

*/

package types

import "time"

// StrategyCategory classifies how a protocol generates yield.
type StrategyCategory string

const (
	CategoryLending       StrategyCategory = "lending"
	CategoryVault         StrategyCategory = "vault"
	CategoryLiquidStaking StrategyCategory = "liquid_staking"
	CategoryPerpLiquidity StrategyCategory = "perp_liquidity"
	CategoryOther         StrategyCategory = "other"
)

// LiquidityTier is a coarse exit-liquidity classification.
type LiquidityTier string

const (
	TierLow    LiquidityTier = "low"
	TierMedium LiquidityTier = "medium"
	TierHigh   LiquidityTier = "high"
)

// YieldRecord is one immutable observation of a pool from the yield
// aggregator. Records are replaced wholesale on every refresh; nothing
// mutates them after the fetch.
type YieldRecord struct {
	Protocol   string    `json:"protocol"`    // e.g., "aave-v3"
	Chain      string    `json:"chain"`       // e.g., "arbitrum"
	Asset      string    `json:"asset"`       // e.g., "USDC"
	APY        float64   `json:"apy"`         // total APY as a fraction (0.07 = 7%)
	BaseAPY    float64   `json:"base_apy"`    // organic component
	RewardAPY  float64   `json:"reward_apy"`  // incentive component
	TvlUSD     float64   `json:"tvl_usd"`     // total value locked in USD
	PoolID     string    `json:"pool_id"`     // aggregator pool identifier
	ObservedAt time.Time `json:"observed_at"` // when the aggregator produced this snapshot
}

// ProtocolMeta holds the static, configuration-time attributes of a protocol.
// The registry is initialized once at startup and is read-only afterwards.
type ProtocolMeta struct {
	Name           string           `json:"name" yaml:"name"`
	BaseReputation float64          `json:"base_reputation" yaml:"base_reputation"` // 0-100
	Category       StrategyCategory `json:"category" yaml:"category"`
	LiquidityTier  LiquidityTier    `json:"liquidity_tier" yaml:"liquidity_tier"`
	MinDepositUSD  float64          `json:"min_deposit_usd" yaml:"min_deposit_usd"` // smallest economical deposit
}

// ChainCost holds the one-time cost assumptions for reaching a chain from the
// home chain: bridge toll, average transaction gas, and expected bridge time.
type ChainCost struct {
	BridgeCostUSD     float64 `json:"bridge_cost_usd" yaml:"bridge_cost_usd"`
	AvgGasCostUSD     float64 `json:"avg_gas_cost_usd" yaml:"avg_gas_cost_usd"`
	BridgeTimeMinutes int     `json:"bridge_time_minutes" yaml:"bridge_time_minutes"`
}

// ChainCostTable maps chain identifiers to their cost assumptions.
type ChainCostTable map[string]ChainCost
