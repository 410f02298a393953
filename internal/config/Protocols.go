package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// DefaultProtocolRegistry is the built-in metadata for the protocols the
// router is willing to consider. Reputation figures are static judgments on
// track record, audits, and exploit history; they change with a release, not
// with market data.
var DefaultProtocolRegistry = map[string]types.ProtocolMeta{
	"aave-v3": {
		Name:           "aave-v3",
		BaseReputation: 95,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierLow,
		MinDepositUSD:  1,
	},
	"compound-v3": {
		Name:           "compound-v3",
		BaseReputation: 90,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierLow,
		MinDepositUSD:  1,
	},
	"morpho-blue": {
		Name:           "morpho-blue",
		BaseReputation: 80,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierMedium,
		MinDepositUSD:  1,
	},
	"spark": {
		Name:           "spark",
		BaseReputation: 78,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierMedium,
		MinDepositUSD:  1,
	},
	"yearn-finance": {
		Name:           "yearn-finance",
		BaseReputation: 75,
		Category:       types.CategoryVault,
		LiquidityTier:  types.TierMedium,
		MinDepositUSD:  10,
	},
	"fluid-lending": {
		Name:           "fluid-lending",
		BaseReputation: 65,
		Category:       types.CategoryLending,
		LiquidityTier:  types.TierMedium,
		MinDepositUSD:  1,
	},
	"gmx-v2-perps": {
		Name:           "gmx-v2-perps",
		BaseReputation: 55,
		Category:       types.CategoryPerpLiquidity,
		LiquidityTier:  types.TierHigh,
		MinDepositUSD:  10,
	},
}

// LoadProtocolRegistry returns the registry, applying YAML overrides from the
// given path when it is non-empty. The file maps protocol identifiers to
// ProtocolMeta entries; entries replace the built-in defaults wholesale.
func LoadProtocolRegistry(path string) (map[string]types.ProtocolMeta, error) {
	registry := make(map[string]types.ProtocolMeta, len(DefaultProtocolRegistry))
	for name, meta := range DefaultProtocolRegistry {
		registry[name] = meta
	}

	if path == "" {
		return registry, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading protocol registry file %s: %w", path, err)
	}

	var overrides map[string]types.ProtocolMeta
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parsing protocol registry file %s: %w", path, err)
	}

	for name, meta := range overrides {
		if meta.BaseReputation < 0 || meta.BaseReputation > 100 {
			return nil, fmt.Errorf("protocol %s: base_reputation out of range [0,100]", name)
		}
		if meta.Name == "" {
			meta.Name = name
		}
		registry[name] = meta
	}

	return registry, nil
}
