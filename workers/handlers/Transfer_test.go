package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goswapbridge/txmanager"
	"goswapbridge/types"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/transfer/{transactionId}", GetTransfer)
	return r
}

func TestGetTransferFallsBackToPersistedRecord(t *testing.T) {
	Init(txmanager.New(nil), nil, nil)

	prev := recordLookup
	recordLookup = func(transactionID string) (*types.TransferRecord, error) {
		if transactionID == "tx-restarted" {
			return &types.TransferRecord{
				TransactionID: "tx-restarted",
				Bridge:        types.BridgeCBridge,
				Status:        "complete",
			}, nil
		}
		return nil, nil
	}
	defer func() { recordLookup = prev }()

	// id absent from the in-memory queue but present in the record store
	rec := httptest.NewRecorder()
	transferRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfer/tx-restarted", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TransferRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Record)
	assert.Equal(t, "tx-restarted", resp.Record.TransactionID)
	assert.Equal(t, "complete", resp.Record.Status)
}

func TestGetTransferUnknownEverywhere(t *testing.T) {
	Init(txmanager.New(nil), nil, nil)

	prev := recordLookup
	recordLookup = func(transactionID string) (*types.TransferRecord, error) {
		return nil, nil
	}
	defer func() { recordLookup = prev }()

	rec := httptest.NewRecorder()
	transferRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfer/no-such-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
