/*

This file contains the vault collaborator interfaces: the position source the
engine reads holdings from, and the transfer executor it hands accepted plans
to. Execution itself is an external system; the engine only decides.

*/

package vault

import (
	"context"
	"time"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// PositionSource reports the vault's current holdings. TotalValueUSD is the
// sum of position values; implementations must return positions whose weights
// are already normalized against it.
type PositionSource interface {
	GetPositions(ctx context.Context) (totalValueUSD float64, positions []types.Position, err error)
}

// ExecutionHandle identifies one submitted transfer for later reconciliation.
type ExecutionHandle struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TransferExecutor submits planned transfers to the execution system. A
// returned error means nothing was durably submitted; the caller must not
// start the rebalance cooldown in that case.
type TransferExecutor interface {
	ExecuteTransfers(ctx context.Context, transfers []types.TransferInstruction) ([]ExecutionHandle, error)
}
