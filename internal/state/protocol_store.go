// ./internal/state/protocol_store.go
package state

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// UpsertProtocolMetadata writes one registry entry, replacing any existing
// row for the protocol.
func UpsertProtocolMetadata(protocol string, meta types.ProtocolMeta) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO protocol_metadata (protocol, base_reputation, category, liquidity_tier, min_deposit_usd, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (protocol) DO UPDATE SET
			base_reputation = EXCLUDED.base_reputation,
			category = EXCLUDED.category,
			liquidity_tier = EXCLUDED.liquidity_tier,
			min_deposit_usd = EXCLUDED.min_deposit_usd,
			updated_at = CURRENT_TIMESTAMP;`

	if _, err := DB.Exec(stmt, protocol, meta.BaseReputation, string(meta.Category), string(meta.LiquidityTier), meta.MinDepositUSD); err != nil {
		return fmt.Errorf("failed to upsert protocol metadata for %s: %w", protocol, err)
	}
	return nil
}

// LoadProtocolRegistry reads the full protocol registry from the database.
// An empty table returns an empty map, not an error; callers decide whether
// to fall back to the built-in defaults.
func LoadProtocolRegistry() (map[string]types.ProtocolMeta, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`SELECT protocol, base_reputation, category, liquidity_tier, min_deposit_usd FROM protocol_metadata;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query protocol metadata: %w", err)
	}
	defer rows.Close()

	registry := make(map[string]types.ProtocolMeta)
	for rows.Next() {
		var protocol, category, tier string
		var meta types.ProtocolMeta
		if err := rows.Scan(&protocol, &meta.BaseReputation, &category, &tier, &meta.MinDepositUSD); err != nil {
			return nil, fmt.Errorf("failed to scan protocol metadata row: %w", err)
		}
		meta.Name = protocol
		meta.Category = types.StrategyCategory(category)
		meta.LiquidityTier = types.LiquidityTier(tier)
		registry[protocol] = meta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("protocol metadata row iteration failed: %w", err)
	}

	log.Info().Int("protocols", len(registry)).Msg("Protocol registry loaded from database")
	return registry, nil
}

// SeedProtocolRegistry writes the given registry into the database, used on
// first boot when the table is empty.
func SeedProtocolRegistry(registry map[string]types.ProtocolMeta) error {
	for protocol, meta := range registry {
		if err := UpsertProtocolMetadata(protocol, meta); err != nil {
			return err
		}
	}
	log.Info().Int("protocols", len(registry)).Msg("Protocol registry seeded")
	return nil
}
