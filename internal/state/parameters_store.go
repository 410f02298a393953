// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// ErrNoActiveParameters is returned when the store has no active parameter
// set for the requested config name.
var ErrNoActiveParameters = errors.New("no active engine parameters found")

// SaveEngineParameters saves a new version of engine parameters. The full
// parameter set is stored as JSONB so adding a field never needs a migration.
func SaveEngineParameters(params types.EngineParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal engine parameters: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO engine_parameters (version, config_name, is_active, activated_at, created_at, params_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(stmt, version, configName, makeActive, currentTime, currentTime, payload).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit engine parameters: %w", err)
	}

	log.Info().
		Int64("paramsID", paramsID).
		Str("configName", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Engine parameters saved")

	return paramsID, nil
}

// LoadActiveEngineParameters loads the currently active parameter set for the
// given config name.
func LoadActiveEngineParameters(configName string) (types.EngineParameters, int, error) {
	var params types.EngineParameters
	if DB == nil {
		return params, 0, fmt.Errorf("database not initialized")
	}

	stmt := `
		SELECT version, params_json FROM engine_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC LIMIT 1;`

	var version int
	var payload []byte
	err := DB.QueryRow(stmt, configName).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return params, 0, ErrNoActiveParameters
	}
	if err != nil {
		return params, 0, fmt.Errorf("failed to query active engine parameters: %w", err)
	}

	if err := json.Unmarshal(payload, &params); err != nil {
		return params, 0, fmt.Errorf("failed to unmarshal engine parameters: %w", err)
	}

	log.Info().
		Str("configName", configName).
		Int("version", version).
		Msg("Active engine parameters loaded")

	return params, version, nil
}
