package handlers

import (
	"net/http"

	"goswapbridge/types"
)

type HistoryResponse struct {
	Status  string                `json:"status"`
	History []types.HistoryRecord `json:"history"`
}

// History merges the full transfer history of every bridge; bridges that
// fail to answer are skipped, the response is best-effort.
func History(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, &HistoryResponse{
		Status:  "ok",
		History: hist.GetAllTxHistory(r.Context()),
	}, http.StatusOK)
}

func ActiveHistory(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, &HistoryResponse{
		Status:  "ok",
		History: hist.GetAllActiveTxs(r.Context()),
	}, http.StatusOK)
}
