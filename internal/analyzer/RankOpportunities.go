/*

This file contains the opportunity ranker: it merges yield records with their
risk scores into opportunities, filters out candidates below the risk floor,
and orders the survivors by risk-adjusted APY.

*/

package analyzer

import (
	"math"
	"sort"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var rankLogger = logger.GetForComponent("ranker")

// RankOpportunities builds the cycle's ranked opportunity list.
// Inputs:
//   - records: the current batch of yield records.
//   - scores: risk scores keyed by protocol, as produced by CalculateRiskScores.
//   - registry: protocol metadata, used to annotate category and liquidity tier.
//   - minRiskScore: candidates scoring below this are discarded.
//
// Output:
//   - Opportunities sorted by risk-adjusted APY, highest first. Ties keep the
//     input order so repeated runs over the same records rank identically.
//
// A record with no entry in scores is skipped; the scorer is responsible for
// assigning neutral fallbacks before ranking.
func RankOpportunities(
	records []types.YieldRecord,
	scores map[string]types.RiskScore,
	registry map[string]types.ProtocolMeta,
	minRiskScore float64,
) []types.Opportunity {
	opportunities := make([]types.Opportunity, 0, len(records))

	for _, record := range records {
		score, ok := scores[record.Protocol]
		if !ok {
			rankLogger.Warn().
				Str("protocol", record.Protocol).
				Msg("Record has no risk score, skipping")
			continue
		}

		if score.Total < minRiskScore {
			rankLogger.Debug().
				Str("protocol", record.Protocol).
				Float64("riskScore", score.Total).
				Float64("minRiskScore", minRiskScore).
				Msg("Opportunity filtered out below risk floor")
			continue
		}

		adjusted := record.APY * score.Total / 100.0
		if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
			rankLogger.Error().
				Str("protocol", record.Protocol).
				Float64("apy", record.APY).
				Float64("riskScore", score.Total).
				Msg("Risk-adjusted APY is not finite, skipping")
			continue
		}

		opp := types.Opportunity{
			Protocol:        record.Protocol,
			Chain:           record.Chain,
			APY:             record.APY,
			RiskScore:       score.Total,
			RiskAdjustedAPY: adjusted,
			TvlUSD:          record.TvlUSD,
		}
		if meta, known := registry[record.Protocol]; known {
			opp.Category = meta.Category
			opp.LiquidityTier = meta.LiquidityTier
		} else {
			opp.Category = types.CategoryOther
		}

		opportunities = append(opportunities, opp)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].RiskAdjustedAPY > opportunities[j].RiskAdjustedAPY
	})

	rankLogger.Info().
		Int("records", len(records)).
		Int("ranked", len(opportunities)).
		Float64("minRiskScore", minRiskScore).
		Msg("Opportunity ranking completed")

	return opportunities
}
