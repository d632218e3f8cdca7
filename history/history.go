// Package history merges per-bridge transfer histories into one view.
package history

import (
	"context"
	"log"
	"sync"

	"goswapbridge/bridges"
	"goswapbridge/types"
)

// cBridge status codes with no transfer in flight: unknown, failed,
// completed, refunded. Everything else counts as active.
var cbridgeInactiveStatuses = map[int]bool{
	0:  true,
	2:  true,
	5:  true,
	10: true,
}

// Aggregator queries every registered bridge backend and merges the
// results. A backend that errors contributes nothing; the rest still
// answer, so the merged view is best-effort by construction.
type Aggregator struct {
	adapters []bridges.Adapter
}

func New(adapters ...bridges.Adapter) *Aggregator {
	return &Aggregator{adapters: adapters}
}

// GetAllTxHistory returns the full merged transfer history across all
// bridges. No ordering is guaranteed between bridges.
func (a *Aggregator) GetAllTxHistory(ctx context.Context) []types.HistoryRecord {
	return a.collect(ctx, func(adapter bridges.Adapter) ([]types.HistoryRecord, error) {
		return adapter.History(ctx)
	})
}

// GetAllActiveTxs returns only in-flight transfers. Backends that serve a
// pre-filtered active list are asked for that directly; the others get
// their raw history filtered here.
func (a *Aggregator) GetAllActiveTxs(ctx context.Context) []types.HistoryRecord {
	return a.collect(ctx, func(adapter bridges.Adapter) ([]types.HistoryRecord, error) {
		if active, ok := adapter.(bridges.ActiveHistorian); ok {
			return active.ActiveHistory(ctx)
		}

		records, err := adapter.History(ctx)
		if err != nil {
			return nil, err
		}

		filtered := make([]types.HistoryRecord, 0, len(records))
		for _, rec := range records {
			if isActive(adapter.Key(), rec) {
				filtered = append(filtered, rec)
			}
		}
		return filtered, nil
	})
}

func (a *Aggregator) collect(ctx context.Context, fetch func(bridges.Adapter) ([]types.HistoryRecord, error)) []types.HistoryRecord {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []types.HistoryRecord
	)

	for _, adapter := range a.adapters {
		wg.Add(1)
		go func(adapter bridges.Adapter) {
			defer wg.Done()

			records, err := fetch(adapter)
			if err != nil {
				log.Printf("Error fetching %s history: %v", adapter.Key(), err)
				return
			}

			mu.Lock()
			merged = append(merged, records...)
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	if merged == nil {
		merged = []types.HistoryRecord{}
	}
	return merged
}

func isActive(bridge types.BridgeKey, rec types.HistoryRecord) bool {
	switch bridge {
	case types.BridgeCBridge:
		return !cbridgeInactiveStatuses[rec.RawStatus]
	case types.BridgeHop:
		return rec.Status == "pending"
	default:
		return rec.Status != "complete" && rec.Status != "failed"
	}
}
