/*

This file contains the yield feed client: it pulls USDC pool yields from the
aggregator's HTTP API with strict validation, a circuit breaker, and a rate
limiter. No partial results are returned for financial calculations.

*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var feedLogger = logger.GetForComponent("yield_feed")

var ErrFeedUnavailable = errors.New("yield feed unavailable")
var ErrInvalidFeedData = errors.New("invalid yield feed data")

// YieldFeed supplies the cycle's yield records. Implemented by the aggregator
// client and wrapped by the cache.
type YieldFeed interface {
	FetchYields(ctx context.Context) ([]types.YieldRecord, error)
}

// aggregatorPool mirrors one pool entry in the aggregator's response. APYs
// arrive as percentages and are converted to fractions on ingestion.
type aggregatorPool struct {
	Project    string  `json:"project"`
	Chain      string  `json:"chain"`
	Symbol     string  `json:"symbol"`
	APY        float64 `json:"apy"`
	APYBase    float64 `json:"apyBase"`
	APYReward  float64 `json:"apyReward"`
	TvlUSD     float64 `json:"tvlUsd"`
	Pool       string  `json:"pool"`
	Stablecoin bool    `json:"stablecoin"`
}

type aggregatorResponse struct {
	Status string           `json:"status"`
	Data   []aggregatorPool `json:"data"`
}

// AggregatorFeed fetches yields from a DefiLlama-style pools endpoint.
type AggregatorFeed struct {
	baseURL string
	asset   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewAggregatorFeed builds a feed client for the given endpoint, filtered to
// pools denominated in the given asset symbol.
func NewAggregatorFeed(baseURL, asset string) (*AggregatorFeed, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("feed base URL cannot be empty")
	}
	if strings.TrimSpace(asset) == "" {
		return nil, errors.New("feed asset symbol cannot be empty")
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "yield_feed",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			feedLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Feed circuit breaker state changed")
		},
	})

	return &AggregatorFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		asset:   strings.ToUpper(asset),
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: breaker,
		// The aggregator's public tier allows a handful of requests per
		// second; one per second with a small burst stays well inside it.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}, nil
}

// FetchYields pulls the current pool list and converts it into validated
// yield records for the configured asset. Any transport failure, non-200
// status, or malformed payload yields ErrFeedUnavailable; a record that fails
// validation is rejected rather than silently repaired.
func (f *AggregatorFeed) FetchYields(ctx context.Context) ([]types.YieldRecord, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, errors.Join(ErrFeedUnavailable, err)
	}

	raw, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetchOnce(ctx)
	})
	if err != nil {
		feedLogger.Error().Err(err).Msg("Yield feed fetch failed")
		if errors.Is(err, ErrFeedUnavailable) || errors.Is(err, ErrInvalidFeedData) {
			return nil, err
		}
		return nil, errors.Join(ErrFeedUnavailable, err)
	}

	records := raw.([]types.YieldRecord)
	feedLogger.Info().
		Int("records", len(records)).
		Str("asset", f.asset).
		Msg("Yield records fetched from aggregator")
	return records, nil
}

func (f *AggregatorFeed) fetchOnce(ctx context.Context) ([]types.YieldRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/pools", nil)
	if err != nil {
		return nil, errors.Join(ErrFeedUnavailable, fmt.Errorf("building feed request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFeedUnavailable, fmt.Errorf("feed request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Join(ErrFeedUnavailable,
			fmt.Errorf("feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload aggregatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Join(ErrFeedUnavailable, fmt.Errorf("decoding feed response: %w", err))
	}

	observedAt := time.Now().UTC()
	records := make([]types.YieldRecord, 0, len(payload.Data))
	for _, pool := range payload.Data {
		if !strings.EqualFold(pool.Symbol, f.asset) {
			continue
		}

		record := types.YieldRecord{
			Protocol:   strings.ToLower(pool.Project),
			Chain:      strings.ToLower(pool.Chain),
			Asset:      f.asset,
			APY:        pool.APY / 100.0,
			BaseAPY:    pool.APYBase / 100.0,
			RewardAPY:  pool.APYReward / 100.0,
			TvlUSD:     pool.TvlUSD,
			PoolID:     pool.Pool,
			ObservedAt: observedAt,
		}

		if err := validateFeedRecord(record); err != nil {
			feedLogger.Warn().
				Str("protocol", record.Protocol).
				Str("chain", record.Chain).
				Err(err).
				Msg("Rejecting malformed feed record")
			continue
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.Join(ErrInvalidFeedData,
			fmt.Errorf("aggregator returned no valid %s pools", f.asset))
	}

	return records, nil
}

func validateFeedRecord(record types.YieldRecord) error {
	if record.Protocol == "" {
		return errors.New("empty protocol")
	}
	if record.Chain == "" {
		return errors.New("empty chain")
	}
	if record.PoolID == "" {
		return errors.New("empty pool id")
	}
	if math.IsNaN(record.APY) || math.IsInf(record.APY, 0) {
		return errors.New("APY is not finite")
	}
	if record.APY < 0 {
		return errors.New("APY is negative")
	}
	if math.IsNaN(record.TvlUSD) || math.IsInf(record.TvlUSD, 0) || record.TvlUSD < 0 {
		return errors.New("TVL is not finite and non-negative")
	}
	return nil
}
