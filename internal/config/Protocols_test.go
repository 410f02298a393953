package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

func TestLoadProtocolRegistry_DefaultsWithoutOverrides(t *testing.T) {
	registry, err := LoadProtocolRegistry("")
	require.NoError(t, err)

	assert.Equal(t, len(DefaultProtocolRegistry), len(registry))
	assert.Equal(t, types.CategoryLending, registry["aave-v3"].Category)
	assert.InDelta(t, 95, registry["aave-v3"].BaseReputation, 0.001)
}

func TestLoadProtocolRegistry_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocols.yaml")
	override := `
aave-v3:
  name: aave-v3
  base_reputation: 88
  category: lending
  liquidity_tier: low
new-venue:
  base_reputation: 40
  category: vault
  liquidity_tier: medium
  min_deposit_usd: 25
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	registry, err := LoadProtocolRegistry(path)
	require.NoError(t, err)

	// Existing entry replaced wholesale.
	assert.InDelta(t, 88, registry["aave-v3"].BaseReputation, 0.001)

	// New entry added, name backfilled from the map key.
	venue, ok := registry["new-venue"]
	require.True(t, ok)
	assert.Equal(t, "new-venue", venue.Name)
	assert.Equal(t, types.CategoryVault, venue.Category)
	assert.InDelta(t, 25, venue.MinDepositUSD, 0.001)

	// Untouched defaults survive.
	assert.Contains(t, registry, "compound-v3")
}

func TestLoadProtocolRegistry_RejectsOutOfRangeReputation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocols.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bad:\n  base_reputation: 140\n"), 0o644))

	_, err := LoadProtocolRegistry(path)
	assert.Error(t, err)
}

func TestLoadProtocolRegistry_MissingFileErrors(t *testing.T) {
	_, err := LoadProtocolRegistry("/nonexistent/protocols.yaml")
	assert.Error(t, err)
}
