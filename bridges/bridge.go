// Package bridges holds the bridge adapters and the static registry of
// which bridge can serve which chain/token pair.
package bridges

import (
	"context"
	"errors"

	"goswapbridge/types"
)

var ErrSingleStepBridge = errors.New("bridge completes in a single step")

// Adapter is the uniform capability set every bridge backend implements.
// GetEstimate is read-only; the transfer steps submit on-chain
// transactions and propagate submission errors unchanged, no retries.
type Adapter interface {
	Key() types.BridgeKey

	GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error)

	TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error)

	// TransferStepTwo completes a two-step transfer. completionID is the
	// orchestrator transaction id except for cBridge, whose withdrawal step
	// is indexed by the gateway's own reference (Estimate.CompletionID).
	TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error)

	History(ctx context.Context) ([]types.HistoryRecord, error)
}

// ActiveHistorian is implemented by adapters whose backend serves the
// active transfer subset pre-filtered.
type ActiveHistorian interface {
	ActiveHistory(ctx context.Context) ([]types.HistoryRecord, error)
}
