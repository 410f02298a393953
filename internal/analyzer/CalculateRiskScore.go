/*

This file contains the risk scorer: it converts a raw yield record plus its
protocol metadata into a 0-100 safety score built from four capped,
additive components.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var ErrUnknownProtocol = errors.New("protocol not present in metadata registry")
var ErrInvalidYieldRecord = errors.New("invalid yield record")
var ErrInvalidEngineParameters = errors.New("invalid engine parameters")

var scoreLogger = logger.GetForComponent("risk_scorer")

// neutralScoreTotal is assigned when a protocol has no registry entry. An
// unrecognized protocol must never block scoring of the others.
const neutralScoreTotal = 50.0

// CalculateRiskScore computes the safety score for a single protocol from its
// latest yield record and static metadata.
// Inputs:
//   - record: the raw yield snapshot for the protocol.
//   - meta: the protocol's static registry entry.
//   - params: the engine parameters defining caps, weights, and thresholds.
//
// Output:
//   - A RiskScore with the component breakdown and the clamped total.
//   - An error if validation fails or a component computes to a non-finite value.
func CalculateRiskScore(record types.YieldRecord, meta types.ProtocolMeta, params types.EngineParameters) (types.RiskScore, error) {
	if err := ValidateYieldRecord(record); err != nil {
		scoreLogger.Error().
			Str("protocol", record.Protocol).
			Err(err).
			Msg("Yield record validation failed")
		return types.RiskScore{}, errors.Join(ErrInvalidYieldRecord, err)
	}
	if err := ValidateScoringParameters(params); err != nil {
		scoreLogger.Error().
			Str("protocol", record.Protocol).
			Err(err).
			Msg("Engine parameter validation failed")
		return types.RiskScore{}, errors.Join(ErrInvalidEngineParameters, err)
	}

	tvlScore, err := CalculateTvlScore(record.TvlUSD, params)
	if err != nil {
		return types.RiskScore{}, errors.Join(errors.New("TVL score calculation failed"), err)
	}

	repScore, err := CalculateReputationScore(meta.BaseReputation, params)
	if err != nil {
		return types.RiskScore{}, errors.Join(errors.New("reputation score calculation failed"), err)
	}

	// Every protocol the registry tracks is treated as established; unvetted
	// protocols are excluded upstream rather than scored low here.
	ageScore := params.AgeScoreConstant

	exploitScore, err := CalculateExploitScore(meta.BaseReputation, params)
	if err != nil {
		return types.RiskScore{}, errors.Join(errors.New("exploit score calculation failed"), err)
	}

	total := clampScore(tvlScore + repScore + ageScore + exploitScore)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		scoreLogger.Error().
			Str("protocol", record.Protocol).
			Float64("total", total).
			Msg("Total risk score calculation resulted in invalid value")
		return types.RiskScore{}, errors.New("total risk score is NaN or Inf")
	}

	result := types.RiskScore{
		Protocol:     record.Protocol,
		TvlScore:     tvlScore,
		RepScore:     repScore,
		AgeScore:     ageScore,
		ExploitScore: exploitScore,
		Total:        total,
	}

	scoreLogger.Debug().
		Str("protocol", record.Protocol).
		Float64("tvlScore", tvlScore).
		Float64("repScore", repScore).
		Float64("ageScore", ageScore).
		Float64("exploitScore", exploitScore).
		Float64("total", total).
		Msg("Risk score calculated")

	return result, nil
}

// CalculateTvlScore computes the TVL component: a log-scaled score so that
// extreme TVL differences are dampened and billions are not materially
// rewarded over hundreds of millions.
func CalculateTvlScore(tvlUSD float64, params types.EngineParameters) (float64, error) {
	if math.IsNaN(tvlUSD) || math.IsInf(tvlUSD, 0) {
		return 0, errors.New("TVL is not finite")
	}
	if tvlUSD < 0 {
		return 0, errors.New("TVL cannot be negative")
	}

	scaled := math.Max(1, tvlUSD/params.TvlScaleFactorUSD)
	logTvl := math.Log10(scaled)
	if math.IsNaN(logTvl) || math.IsInf(logTvl, 0) {
		return 0, errors.New("log TVL calculation resulted in non-finite value")
	}

	score := math.Min(params.TvlScoreCap, logTvl*params.TvlLogWeight)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, errors.New("TVL score calculation resulted in non-finite value")
	}
	return score, nil
}

// CalculateReputationScore is a linear pass-through of the static base
// reputation onto the reputation cap.
func CalculateReputationScore(baseReputation float64, params types.EngineParameters) (float64, error) {
	if math.IsNaN(baseReputation) || math.IsInf(baseReputation, 0) {
		return 0, errors.New("base reputation is not finite")
	}
	if baseReputation < 0 || baseReputation > 100 {
		return 0, fmt.Errorf("base reputation out of range [0,100]: %f", baseReputation)
	}

	score := (baseReputation / 100.0) * params.ReputationScoreCap
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, errors.New("reputation score calculation resulted in non-finite value")
	}
	return score, nil
}

// CalculateExploitScore grants the full exploit-history cap to protocols
// whose base reputation clears the clean-history threshold, and subtracts a
// fixed penalty below it. The same static reputation figure feeds the
// reputation component too; that weighting is intentional, not an accident.
func CalculateExploitScore(baseReputation float64, params types.EngineParameters) (float64, error) {
	if math.IsNaN(baseReputation) || math.IsInf(baseReputation, 0) {
		return 0, errors.New("base reputation is not finite")
	}

	score := params.ExploitScoreCap
	if baseReputation < params.CleanHistoryThreshold {
		score = params.ExploitScoreCap - params.ExploitPenalty
		scoreLogger.Debug().
			Float64("baseReputation", baseReputation).
			Float64("threshold", params.CleanHistoryThreshold).
			Float64("penalty", params.ExploitPenalty).
			Msg("Exploit-history penalty applied")
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, errors.New("exploit score calculation resulted in non-finite value")
	}
	return score, nil
}

// NeutralRiskScore returns the default score assigned to a protocol with no
// registry entry.
func NeutralRiskScore(protocol string) types.RiskScore {
	return types.RiskScore{
		Protocol: protocol,
		Total:    neutralScoreTotal,
		Neutral:  true,
	}
}

// CalculateRiskScores scores every record in a batch, falling back to the
// neutral default for protocols missing from the registry. A single
// unrecognized protocol never aborts the batch.
// When crossChain is true, the cross-chain variant adjustments (TVL bonus,
// liquidity-tier penalty, strategy-category adjustment) are composed onto the
// base score before clamping.
func CalculateRiskScores(
	records []types.YieldRecord,
	registry map[string]types.ProtocolMeta,
	params types.EngineParameters,
	crossChain bool,
) (map[string]types.RiskScore, error) {
	if err := ValidateScoringParameters(params); err != nil {
		scoreLogger.Error().Err(err).Msg("Engine parameter validation failed")
		return nil, errors.Join(ErrInvalidEngineParameters, err)
	}

	scores := make(map[string]types.RiskScore, len(records))
	for _, record := range records {
		meta, known := registry[record.Protocol]
		if !known {
			scoreLogger.Warn().
				Str("protocol", record.Protocol).
				Err(ErrUnknownProtocol).
				Msg("Protocol missing from registry, assigning neutral score")
			scores[record.Protocol] = NeutralRiskScore(record.Protocol)
			continue
		}

		var score types.RiskScore
		var err error
		if crossChain {
			score, err = CalculateCrossChainRiskScore(record, meta, params)
		} else {
			score, err = CalculateRiskScore(record, meta, params)
		}
		if err != nil {
			return nil, fmt.Errorf("scoring protocol %s failed: %w", record.Protocol, err)
		}
		scores[record.Protocol] = score
	}

	scoreLogger.Info().
		Int("records", len(records)).
		Int("scored", len(scores)).
		Bool("crossChain", crossChain).
		Msg("Batch risk scoring completed")

	return scores, nil
}

// CalculateCrossChainRiskScore composes the base score with the cross-chain
// adjustments: a bonus for deep TVL, a penalty for medium/high exit-liquidity
// tiers, and a small strategy-category adjustment (lending up, perp liquidity
// provision down). The result is clamped to [0, 100].
func CalculateCrossChainRiskScore(record types.YieldRecord, meta types.ProtocolMeta, params types.EngineParameters) (types.RiskScore, error) {
	base, err := CalculateRiskScore(record, meta, params)
	if err != nil {
		return types.RiskScore{}, err
	}

	adjusted := base.Total

	if record.TvlUSD >= params.TvlBonusThresholdUSD {
		adjusted += params.TvlBonus
	}

	switch meta.LiquidityTier {
	case types.TierHigh:
		adjusted -= params.TierPenaltyHigh
	case types.TierMedium:
		adjusted -= params.TierPenaltyMedium
	}

	switch meta.Category {
	case types.CategoryLending:
		adjusted += params.CategoryBonusLending
	case types.CategoryPerpLiquidity:
		adjusted -= params.CategoryPenaltyPerp
	}

	if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
		return types.RiskScore{}, errors.New("cross-chain adjustment resulted in non-finite value")
	}

	base.Total = clampScore(adjusted)

	scoreLogger.Debug().
		Str("protocol", record.Protocol).
		Str("tier", string(meta.LiquidityTier)).
		Str("category", string(meta.Category)).
		Float64("baseTotal", base.TvlScore+base.RepScore+base.AgeScore+base.ExploitScore).
		Float64("adjustedTotal", base.Total).
		Msg("Cross-chain risk score calculated")

	return base, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ValidateYieldRecord performs validation of a raw yield record before any
// financial arithmetic touches it.
func ValidateYieldRecord(record types.YieldRecord) error {
	if record.Protocol == "" {
		return errors.New("protocol identifier cannot be empty")
	}
	if record.Chain == "" {
		return errors.New("chain identifier cannot be empty")
	}
	if math.IsNaN(record.APY) || math.IsInf(record.APY, 0) {
		return errors.New("APY must be finite")
	}
	if math.IsNaN(record.TvlUSD) || math.IsInf(record.TvlUSD, 0) {
		return errors.New("TVL must be finite")
	}
	if record.TvlUSD < 0 {
		return errors.New("TVL cannot be negative")
	}
	return nil
}

// ValidateScoringParameters validates the scorer's slice of the engine
// parameters.
func ValidateScoringParameters(params types.EngineParameters) error {
	values := []struct {
		value float64
		name  string
	}{
		{params.TvlScoreCap, "TvlScoreCap"},
		{params.TvlScaleFactorUSD, "TvlScaleFactorUSD"},
		{params.TvlLogWeight, "TvlLogWeight"},
		{params.ReputationScoreCap, "ReputationScoreCap"},
		{params.AgeScoreConstant, "AgeScoreConstant"},
		{params.ExploitScoreCap, "ExploitScoreCap"},
		{params.ExploitPenalty, "ExploitPenalty"},
		{params.CleanHistoryThreshold, "CleanHistoryThreshold"},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.New(v.name + " must be finite")
		}
	}

	if params.TvlScoreCap < 0 {
		return errors.New("TvlScoreCap cannot be negative")
	}
	if params.TvlScaleFactorUSD <= 0 {
		return errors.New("TvlScaleFactorUSD must be positive")
	}
	if params.ReputationScoreCap < 0 {
		return errors.New("ReputationScoreCap cannot be negative")
	}
	if params.ExploitScoreCap < 0 {
		return errors.New("ExploitScoreCap cannot be negative")
	}
	if params.ExploitPenalty < 0 {
		return errors.New("ExploitPenalty cannot be negative")
	}
	return nil
}
