/*

This file contains the engine core: the orchestrator that runs the full
observe / score / rank / allocate / decide / execute cycle on a fixed
interval. It owns no strategy logic of its own; every step delegates to the
analyzer, planner, decision, and vault packages.

*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openvault-labs/yieldrouter/internal/analyzer"
	"github.com/openvault-labs/yieldrouter/internal/datafetcher"
	"github.com/openvault-labs/yieldrouter/internal/decision"
	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
	"github.com/openvault-labs/yieldrouter/internal/vault"
	"github.com/openvault-labs/yieldrouter/internal/web"
)

// Engine is the yield router core with all its dependencies.
type Engine struct {
	logger    zerolog.Logger
	feed      datafetcher.YieldFeed
	positions vault.PositionSource
	executor  vault.TransferExecutor
	gate      *decision.Gate
	status    *web.StatusStore

	registry  map[string]types.ProtocolMeta
	costs     types.ChainCostTable
	homeChain string
	params    types.EngineParameters

	cycleCount int
}

// Config holds the configuration for creating a new Engine instance.
type Config struct {
	Feed      datafetcher.YieldFeed
	Positions vault.PositionSource
	Executor  vault.TransferExecutor
	Gate      *decision.Gate
	Status    *web.StatusStore

	Registry   map[string]types.ProtocolMeta
	ChainCosts types.ChainCostTable // nil disables cross-chain mode
	HomeChain  string
	Params     types.EngineParameters
}

// NewEngine creates a new Engine instance with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	e := &Engine{
		logger:    logger.GetForComponent("engine_core"),
		feed:      cfg.Feed,
		positions: cfg.Positions,
		executor:  cfg.Executor,
		gate:      cfg.Gate,
		status:    cfg.Status,
		registry:  cfg.Registry,
		costs:     cfg.ChainCosts,
		homeChain: cfg.HomeChain,
		params:    cfg.Params,
	}

	e.logger.Info().
		Str("homeChain", e.homeChain).
		Bool("crossChain", e.costs != nil).
		Int("registrySize", len(e.registry)).
		Msg("Engine instance created")

	return e, nil
}

func validateEngineConfig(cfg Config) error {
	if cfg.Feed == nil {
		return fmt.Errorf("yield feed cannot be nil")
	}
	if cfg.Positions == nil {
		return fmt.Errorf("position source cannot be nil")
	}
	if cfg.Executor == nil {
		return fmt.Errorf("transfer executor cannot be nil")
	}
	if cfg.Gate == nil {
		return fmt.Errorf("decision gate cannot be nil")
	}
	if cfg.Status == nil {
		return fmt.Errorf("status store cannot be nil")
	}
	if len(cfg.Registry) == 0 {
		return fmt.Errorf("protocol registry cannot be empty")
	}
	if cfg.ChainCosts != nil && cfg.HomeChain == "" {
		return fmt.Errorf("home chain is required when a chain cost table is set")
	}
	if err := analyzer.ValidateScoringParameters(cfg.Params); err != nil {
		return err
	}
	return nil
}

// RunLoop starts the main engine loop with the specified interval. The first
// cycle runs immediately; the loop exits when the context is cancelled.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting engine main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.cycleCount++
	e.logger.Info().Int("cycle", e.cycleCount).Msg("Initiating engine cycle")
	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.cycleCount++
			e.logger.Info().Int("cycle", e.cycleCount).Msg("Initiating engine cycle")
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one complete decision cycle. A failed cycle leaves the
// decision gate untouched; in particular a feed outage never consumes the
// rebalance cooldown.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleStart := time.Now()
	cycleID := uuid.New().String()
	cycleLogger := e.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting engine cycle ---")

	// --- Step 1: Fetch yields ---
	records, err := e.feed.FetchYields(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: failed to fetch yields")
		cyclesTotal.WithLabelValues("feed_error").Inc()
		return
	}
	cycleLogger.Info().Int("records", len(records)).Msg("Step 1: yield data fetched")

	if ctx.Err() != nil {
		return
	}

	// --- Step 2: Read current positions ---
	totalValueUSD, positions, err := e.positions.GetPositions(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: failed to read positions")
		cyclesTotal.WithLabelValues("position_error").Inc()
		return
	}
	cycleLogger.Info().
		Int("positions", len(positions)).
		Float64("totalValueUSD", totalValueUSD).
		Msg("Step 2: vault state assessed")

	// --- Step 3: Score and rank ---
	crossChain := e.costs != nil
	scores, err := analyzer.CalculateRiskScores(records, e.registry, e.params, crossChain)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: risk scoring failed")
		cyclesTotal.WithLabelValues("scoring_error").Inc()
		return
	}

	opportunities := analyzer.RankOpportunities(records, scores, e.registry, e.params.MinRiskScore)

	if crossChain {
		opportunities, err = analyzer.ApplyCrossChainCosts(opportunities, e.costs, e.homeChain, e.params)
		if err != nil {
			cycleLogger.Error().Err(err).Msg("Cycle aborted: cost model failed")
			cyclesTotal.WithLabelValues("cost_error").Inc()
			return
		}
	}
	opportunitiesGauge.Set(float64(len(opportunities)))
	cycleLogger.Info().Int("opportunities", len(opportunities)).Msg("Step 3: scoring and ranking complete")

	if ctx.Err() != nil {
		return
	}

	// --- Step 4: Target allocation ---
	target, err := analyzer.DetermineTargetAllocations(opportunities, e.params)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: allocation failed")
		cyclesTotal.WithLabelValues("allocation_error").Inc()
		return
	}
	cycleLogger.Info().Int("targets", len(target)).Msg("Step 4: target allocations determined")

	// --- Step 5: Decision gate ---
	verdict, err := e.gate.Decide(opportunities, positions, target, totalValueUSD, e.params)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: decision gate failed")
		cyclesTotal.WithLabelValues("decision_error").Inc()
		return
	}
	expectedImprovementGauge.Set(verdict.ExpectedImprovement)
	e.status.PublishCycle(cycleID, opportunities, verdict)
	renderOpportunities(opportunities, target)

	if !verdict.ShouldRebalance {
		decisionsTotal.WithLabelValues("reject").Inc()
		cyclesTotal.WithLabelValues("hold").Inc()
		cycleLogger.Info().
			Str("reason", verdict.Reason).
			Msg("Step 5: gate rejected rebalance, holding")
		e.logEndOfCycle(cycleStart, cycleLogger)
		return
	}
	decisionsTotal.WithLabelValues("accept").Inc()

	// --- Step 6: Execute ---
	handles, err := e.executor.ExecuteTransfers(ctx, verdict.Transfers)
	if err != nil {
		// Nothing was durably submitted, so the cooldown must not start.
		cycleLogger.Error().Err(err).Msg("Execution failed, cooldown not started")
		cyclesTotal.WithLabelValues("execution_error").Inc()
		e.logEndOfCycle(cycleStart, cycleLogger)
		return
	}
	transfersExecutedTotal.Add(float64(len(verdict.Transfers)))
	e.gate.RecordAcceptance(time.Now())

	cycleLogger.Info().
		Int("transfers", len(verdict.Transfers)).
		Int("handles", len(handles)).
		Float64("expectedImprovement", verdict.ExpectedImprovement).
		Float64("estimatedCostUSD", verdict.EstimatedCostUSD).
		Msg("Step 6: rebalance executed")

	cyclesTotal.WithLabelValues("rebalanced").Inc()
	e.logEndOfCycle(cycleStart, cycleLogger)
}

// SetParameters swaps the active parameter set between cycles.
func (e *Engine) SetParameters(params types.EngineParameters) error {
	if err := analyzer.ValidateScoringParameters(params); err != nil {
		return errors.Join(errors.New("rejecting parameter update"), err)
	}
	e.params = params
	e.status.SetParameters(params)
	e.logger.Info().Msg("Engine parameters updated")
	return nil
}

func (e *Engine) logEndOfCycle(start time.Time, cycleLogger zerolog.Logger) {
	cycleLogger.Info().
		Dur("duration", time.Since(start)).
		Str("gateState", string(e.gate.State(e.params))).
		Msg("--- Engine cycle completed ---")
}
