package config

import (
	"github.com/openvault-labs/yieldrouter/internal/types"
)

// DefaultChainCostTable holds the static cost assumptions for reaching each
// supported chain from the home chain. Bridge costs reflect typical canonical
// or fast-bridge tolls for a mid-size USDC transfer; gas costs are averages
// for a deposit transaction on each chain.
var DefaultChainCostTable = types.ChainCostTable{
	"ethereum": {
		BridgeCostUSD:     15.0,
		AvgGasCostUSD:     12.0,
		BridgeTimeMinutes: 20,
	},
	"arbitrum": {
		BridgeCostUSD:     2.0,
		AvgGasCostUSD:     0.30,
		BridgeTimeMinutes: 15,
	},
	"base": {
		BridgeCostUSD:     2.0,
		AvgGasCostUSD:     0.25,
		BridgeTimeMinutes: 15,
	},
	"optimism": {
		BridgeCostUSD:     2.0,
		AvgGasCostUSD:     0.30,
		BridgeTimeMinutes: 15,
	},
	"polygon": {
		BridgeCostUSD:     1.5,
		AvgGasCostUSD:     0.10,
		BridgeTimeMinutes: 25,
	},
}
