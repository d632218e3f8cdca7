// Package txmanager is the bridge route orchestrator: it turns one user
// transfer request into a set of comparable route options across bridge
// backends and drives the chosen option through its (possibly two-step)
// transfer.
package txmanager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"goswapbridge/bridges"
	"goswapbridge/types"

	"github.com/google/uuid"
)

var (
	ErrUnknownTransaction  = errors.New("unknown transaction")
	ErrStepOrder           = errors.New("transfer step out of order")
	ErrNotTwoStep          = errors.New("bridge does not require a second step")
	ErrMissingCompletionID = errors.New("missing bridge completion reference")
)

// RecordStore persists transfer records for the reconcile worker. May be
// nil, persistence is best-effort.
type RecordStore interface {
	Upsert(rec *types.TransferRecord) error
}

// RouteQuote is one independently resolving estimate result. Intent is nil
// when the route was invalidated (below the bridge minimum) or the quote
// failed; Err is only set for the latter.
type RouteQuote struct {
	TransactionID string
	Bridge        types.BridgeKey
	Intent        *types.TransferIntent
	Err           error
}

type EstimateRequest struct {
	From        types.Token
	FromChainID int
	To          types.Token
	ToChainID   int
	Amount      *big.Int
	Recipient   string
}

// Manager owns the in-memory transaction queue and the per-parent route
// tables. Both are append-only for the process lifetime, as in the UI this
// replaces; a long-lived session accumulates entries (known limitation,
// kept deliberately instead of inventing an eviction policy).
type Manager struct {
	mu       sync.Mutex
	adapters map[types.BridgeKey]bridges.Adapter
	queue    map[string]*types.TransferIntent
	routes   map[string]map[types.BridgeKey]*types.TransferIntent
	records  RecordStore
}

func New(records RecordStore, adapters ...bridges.Adapter) *Manager {
	m := &Manager{
		adapters: make(map[types.BridgeKey]bridges.Adapter),
		queue:    make(map[string]*types.TransferIntent),
		routes:   make(map[string]map[types.BridgeKey]*types.TransferIntent),
		records:  records,
	}
	for _, a := range adapters {
		m.adapters[a.Key()] = a
	}
	return m
}

// GetAllEstimates fans one request out to every eligible bridge. It
// returns the parent id grouping the candidate routes, the eligible bridge
// list in display order, and a channel delivering exactly one RouteQuote
// per eligible bridge as each backend answers; no ordering between bridges.
// Zero eligible bridges yields an empty list and an already-closed channel.
func (m *Manager) GetAllEstimates(ctx context.Context, req EstimateRequest) (string, []types.BridgeKey, <-chan RouteQuote) {
	parentID := uuid.New().String()
	eligible := bridges.SupportedBridges(req.To, req.ToChainID, req.From, req.FromChainID)

	results := make(chan RouteQuote, len(eligible))

	m.mu.Lock()
	m.routes[parentID] = make(map[types.BridgeKey]*types.TransferIntent, len(eligible))
	intents := make([]*types.TransferIntent, 0, len(eligible))
	for _, bridge := range eligible {
		intent := &types.TransferIntent{
			TransactionID:    uuid.New().String(),
			ParentID:         parentID,
			Bridge:           bridge,
			SendingChainID:   req.FromChainID,
			ReceivingChainID: req.ToChainID,
			SendingAsset:     req.From,
			ReceivingAsset:   req.To,
			Amount:           req.Amount,
			ReceivingAddress: req.Recipient,
			State:            types.StateQuoting,
			TsCreated:        time.Now().Unix(),
		}
		m.queue[intent.TransactionID] = intent
		m.routes[parentID][bridge] = intent
		intents = append(intents, intent)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, intent := range intents {
		wg.Add(1)
		go func(intent *types.TransferIntent) {
			defer wg.Done()
			results <- m.resolveEstimate(ctx, intent)
		}(intent)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	return parentID, eligible, results
}

func (m *Manager) resolveEstimate(ctx context.Context, intent *types.TransferIntent) RouteQuote {
	quote := RouteQuote{TransactionID: intent.TransactionID, Bridge: intent.Bridge}

	adapter, ok := m.adapters[intent.Bridge]
	if !ok {
		quote.Err = fmt.Errorf("no adapter registered for bridge %s", intent.Bridge)
	}

	var estimate *types.Estimate
	if quote.Err == nil {
		estimate, quote.Err = adapter.GetEstimate(ctx, intent.TransactionID, intent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if quote.Err != nil {
		log.Printf("Estimate failed for %s via %s: %v", intent.TransactionID, intent.Bridge, quote.Err)
		intent.State = types.StateFailed
		m.routes[intent.ParentID][intent.Bridge] = nil
		return quote
	}

	if !estimate.HasMinBridgeAmount {
		// amount below the bridge's viable minimum: not an error, the
		// route is just dropped from the result set
		intent.Estimate = estimate
		intent.State = types.StateFailed
		m.routes[intent.ParentID][intent.Bridge] = nil
		return quote
	}

	intent.Estimate = estimate
	intent.State = types.StateQuoted
	quote.Intent = intent
	return quote
}

// TransferStepOne submits the source-chain leg of the chosen route.
func (m *Manager) TransferStepOne(ctx context.Context, transactionID string) (*types.TransferHandle, error) {
	m.mu.Lock()
	intent, ok := m.queue[transactionID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownTransaction
	}
	if !intent.State.CanTransition(types.StateStepOnePending) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: step one in state %s", ErrStepOrder, intent.State)
	}
	intent.State = types.StateStepOnePending
	adapter := m.adapters[intent.Bridge]
	m.mu.Unlock()

	handle, err := adapter.TransferStepOne(ctx, transactionID, intent)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		intent.State = types.StateFailed
		return nil, err
	}

	intent.StepOneTx = handle
	if intent.Bridge.TwoStep() {
		intent.State = types.StateStepOneDone
	} else {
		intent.State = types.StateComplete
	}

	m.persistRecord(intent)
	return handle, nil
}

// TransferStepTwo completes a two-step transfer. cBridge's completion step
// is indexed by the gateway's own withdrawal reference from the estimate,
// never by the orchestrator transaction id.
func (m *Manager) TransferStepTwo(ctx context.Context, transactionID string) (*types.TransferHandle, error) {
	m.mu.Lock()
	intent, ok := m.queue[transactionID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownTransaction
	}
	if !intent.Bridge.TwoStep() {
		m.mu.Unlock()
		return nil, ErrNotTwoStep
	}
	if !intent.State.CanTransition(types.StateStepTwoPending) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: step two in state %s", ErrStepOrder, intent.State)
	}

	completionID := transactionID
	if intent.Bridge == types.BridgeCBridge {
		if intent.Estimate == nil || intent.Estimate.CompletionID == "" {
			m.mu.Unlock()
			return nil, ErrMissingCompletionID
		}
		completionID = intent.Estimate.CompletionID
	}

	intent.State = types.StateStepTwoPending
	adapter := m.adapters[intent.Bridge]
	m.mu.Unlock()

	handle, err := adapter.TransferStepTwo(ctx, completionID, intent)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		intent.State = types.StateFailed
		return nil, err
	}

	intent.StepTwoTx = handle
	intent.State = types.StateComplete

	m.persistRecord(intent)
	return handle, nil
}

// TwoStepTransferRequired reports whether the intent's bridge needs a
// second signed step. Unknown ids answer false, same as single-step
// bridges; callers that need to tell the cases apart use GetTx first.
func (m *Manager) TwoStepTransferRequired(transactionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	intent, ok := m.queue[transactionID]
	if !ok {
		return false
	}
	return intent.Bridge.TwoStep()
}

func (m *Manager) GetTx(transactionID string) (*types.TransferIntent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	intent, ok := m.queue[transactionID]
	return intent, ok
}

// Route returns the per-parent route table; invalidated routes stay in the
// map as nil entries.
func (m *Manager) Route(parentID string) (map[types.BridgeKey]*types.TransferIntent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	route, ok := m.routes[parentID]
	return route, ok
}

// persistRecord mirrors transfer progress into the record store for the
// reconcile worker; callers hold the lock.
func (m *Manager) persistRecord(intent *types.TransferIntent) {
	if m.records == nil {
		return
	}

	// records stay active until the reconcile worker confirms the
	// destination leg against the bridge's own history
	rec := &types.TransferRecord{
		TransactionID: intent.TransactionID,
		Bridge:        intent.Bridge,
		Status:        "active",
		SourceChain:   intent.SendingChainID,
		DestChain:     intent.ReceivingChainID,
		Amount:        intent.Amount.String(),
		TsFound:       intent.TsCreated,
	}
	if intent.StepOneTx != nil {
		rec.SourceTxHash = intent.StepOneTx.TxHash
	}
	if intent.StepTwoTx != nil {
		rec.DestTxHash = intent.StepTwoTx.TxHash
	}

	if err := m.records.Upsert(rec); err != nil {
		log.Printf("Error persisting transfer record %s: %v", intent.TransactionID, err)
	}
}
