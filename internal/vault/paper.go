/*

This file contains the paper vault: an in-memory implementation of both vault
collaborators used for dry runs. Transfers mutate the simulated book
immediately instead of touching any chain.

*/

package vault

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var paperLogger = logger.GetForComponent("paper_vault")

var ErrInsufficientBalance = errors.New("insufficient balance in source protocol")

// PaperVault simulates holdings in memory. It satisfies both PositionSource
// and TransferExecutor so the whole engine can run without a live backend.
type PaperVault struct {
	mu   sync.Mutex
	book map[string]float64 // protocol -> value in USD
	apys map[string]float64 // protocol -> assumed current APY, as a fraction
}

// NewPaperVault seeds the simulated book. The apys map may be nil; positions
// then report zero yield.
func NewPaperVault(initialBook map[string]float64, apys map[string]float64) *PaperVault {
	book := make(map[string]float64, len(initialBook))
	for protocol, value := range initialBook {
		if value > 0 {
			book[protocol] = value
		}
	}
	yields := make(map[string]float64, len(apys))
	for protocol, apy := range apys {
		yields[protocol] = apy
	}
	return &PaperVault{book: book, apys: yields}
}

// GetPositions reports the simulated holdings with normalized weights, in
// lexicographic protocol order.
func (v *PaperVault) GetPositions(ctx context.Context) (float64, []types.Position, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var total float64
	for _, value := range v.book {
		total += value
	}

	protocols := make([]string, 0, len(v.book))
	for protocol := range v.book {
		protocols = append(protocols, protocol)
	}
	sort.Strings(protocols)

	positions := make([]types.Position, 0, len(protocols))
	for _, protocol := range protocols {
		value := v.book[protocol]
		weight := 0.0
		if total > 0 {
			weight = value / total
		}
		positions = append(positions, types.Position{
			Protocol: protocol,
			ValueUSD: value,
			Weight:   weight,
			APY:      v.apys[protocol],
		})
	}

	return total, positions, nil
}

// ExecuteTransfers applies the transfers to the simulated book. The whole
// batch is validated against balances before any mutation, so a failing
// batch leaves the book untouched.
func (v *PaperVault) ExecuteTransfers(ctx context.Context, transfers []types.TransferInstruction) ([]ExecutionHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	outflow := make(map[string]float64, len(transfers))
	for _, t := range transfers {
		outflow[t.FromProtocol] += t.AmountUSD
	}
	for protocol, amount := range outflow {
		// Allow a cent of float drift between planned weights and book values.
		if amount > v.book[protocol]+0.01 {
			paperLogger.Error().
				Str("protocol", protocol).
				Float64("requested", amount).
				Float64("available", v.book[protocol]).
				Msg("Paper transfer batch rejected")
			return nil, ErrInsufficientBalance
		}
	}

	now := time.Now().UTC()
	handles := make([]ExecutionHandle, 0, len(transfers))
	for _, t := range transfers {
		v.book[t.FromProtocol] -= t.AmountUSD
		if v.book[t.FromProtocol] < 0 {
			v.book[t.FromProtocol] = 0
		}
		v.book[t.ToProtocol] += t.AmountUSD
		handles = append(handles, ExecutionHandle{
			ID:          uuid.New().String(),
			SubmittedAt: now,
		})
		paperLogger.Info().
			Str("from", t.FromProtocol).
			Str("to", t.ToProtocol).
			Float64("amountUSD", t.AmountUSD).
			Msg("Paper transfer applied")
	}

	return handles, nil
}

// SetAPY updates the assumed yield for a protocol in the simulated book.
func (v *PaperVault) SetAPY(protocol string, apy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apys[protocol] = apy
}
