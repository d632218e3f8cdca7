package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"goswapbridge/redis"
	"goswapbridge/txmanager"
	"goswapbridge/types"

	"github.com/go-chi/chi"
)

// recordLookup resolves ids the in-memory queue no longer holds against
// the persisted transfer records, so transfers survive a restart.
// Replaceable in tests.
var recordLookup = redis.FindTransferRecordByTransactionID

type TransferStepRequest struct {
	TransactionID string `json:"transactionId"`
}

type TransferStepResponse struct {
	Status string                `json:"status"`
	Handle *types.TransferHandle `json:"handle"`
	State  string                `json:"state"`
}

func TransferStepOne(w http.ResponseWriter, r *http.Request) {
	transferStep(w, r, mgr.TransferStepOne)
}

func TransferStepTwo(w http.ResponseWriter, r *http.Request) {
	transferStep(w, r, mgr.TransferStepTwo)
}

func transferStep(
	w http.ResponseWriter,
	r *http.Request,
	step func(ctx context.Context, transactionID string) (*types.TransferHandle, error),
) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req TransferStepRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		log.Printf("Error unmarshalling request body: %s\n", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	handle, err := step(r.Context(), req.TransactionID)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, txmanager.ErrUnknownTransaction):
			code = http.StatusNotFound
		case errors.Is(err, txmanager.ErrStepOrder),
			errors.Is(err, txmanager.ErrNotTwoStep),
			errors.Is(err, txmanager.ErrMissingCompletionID):
			code = http.StatusConflict
		}
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "transactionId",
			Message: err.Error(),
		}, code)
		return
	}

	intent, _ := mgr.GetTx(req.TransactionID)

	responseJSON(w, &TransferStepResponse{
		Status: "ok",
		Handle: handle,
		State:  intent.State.String(),
	}, http.StatusOK)
}

type TransferResponse struct {
	Status          string                `json:"status"`
	Transfer        *types.TransferIntent `json:"transfer"`
	TwoStepTransfer bool                  `json:"twoStepTransfer"`
	Route           []types.RouteHop      `json:"route"`
}

type TransferRecordResponse struct {
	Status string                `json:"status"`
	Record *types.TransferRecord `json:"record"`
}

func GetTransfer(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	intent, ok := mgr.GetTx(transactionID)
	if !ok {
		// the queue is in-memory; older transfers only exist as
		// persisted records
		rec, err := recordLookup(transactionID)
		if err != nil {
			log.Printf("Error looking up transfer record %s: %s", transactionID, err.Error())
		}
		if rec != nil {
			responseJSON(w, &TransferRecordResponse{
				Status: "ok",
				Record: rec,
			}, http.StatusOK)
			return
		}

		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "transactionId",
			Message: "Unknown transaction",
		}, http.StatusNotFound)
		return
	}

	responseJSON(w, &TransferResponse{
		Status:          "ok",
		Transfer:        intent,
		TwoStepTransfer: mgr.TwoStepTransferRequired(transactionID),
		Route:           txmanager.BuildRoute(intent),
	}, http.StatusOK)
}
