package workers

import (
	"context"
	"log"
	"time"

	"goswapbridge/history"
	"goswapbridge/redis"
	"goswapbridge/types"
)

// bridge-native terminal statuses mapped onto record status sets
var terminalStatuses = map[string]string{
	"complete":  "complete",
	"completed": "complete",
	"fulfilled": "complete",
	"failed":    "failed",
	"cancelled": "failed",
	"refunded":  "refunded",
}

// Worker_reconcileHistory moves persisted transfer records out of the
// active set once the bridges' own histories show the transfer settled.
// Bridges deliver destination legs asynchronously, so record status can
// only be confirmed by polling.
func Worker_reconcileHistory(hist *history.Aggregator) {
	for !WorkerShutdown {
		time.Sleep(15 * time.Second)

		records, err := redis.FindAllTransferRecordsByStatus("active")
		if err != nil {
			log.Printf("Error reading active transfer records: %s", err.Error())
			continue
		}
		if len(records) == 0 {
			continue
		}

		merged := hist.GetAllTxHistory(context.Background())

		for _, rec := range records {
			settled, ok := findSettled(rec, merged)
			if !ok {
				continue
			}

			rec.Status = terminalStatuses[settled.Status]
			rec.Message = settled.Status
			if err := redis.ChangeTransferRecordStatus(rec, "active"); err != nil {
				log.Printf("Error updating transfer record %s: %s", rec.TransactionID, err.Error())
				continue
			}
			log.Printf("Transfer %s via %s settled as %s", rec.TransactionID, rec.Bridge, rec.Status)
		}
	}

	log.Print("history reconcile worker exiting")
}

// findSettled matches a persisted record against a bridge history entry in
// a terminal state. connext histories share our transaction ids; the other
// bridges key by their own references, so those fall back to matching on
// bridge, chain pair and amount.
func findSettled(rec *types.TransferRecord, merged []types.HistoryRecord) (*types.HistoryRecord, bool) {
	for i := range merged {
		h := &merged[i]
		if h.Bridge != rec.Bridge {
			continue
		}
		if _, terminal := terminalStatuses[h.Status]; !terminal {
			continue
		}

		if h.ID == rec.TransactionID {
			return h, true
		}
		if h.FromChain == rec.SourceChain && h.ToChain == rec.DestChain && h.Amount == rec.Amount {
			return h, true
		}
	}
	return nil, false
}
