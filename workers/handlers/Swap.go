package handlers

import (
	"encoding/json"
	"io"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"goswapbridge/config"
	"goswapbridge/types"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type AllowanceResponse struct {
	Status    string `json:"status"`
	Allowance string `json:"allowance"` // smallest units, decimal string
	Approved  string `json:"approved"`  // APPROVED | NOT_APPROVED, only with ?amount
}

// Allowance reports how much of the token the swap infrastructure may
// spend on the owner's behalf, and whether that covers the given amount.
func Allowance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	chainId, err := strconv.Atoi(q.Get("chainId"))
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Chain id must be an integer",
		}, http.StatusBadRequest)
		return
	}
	if _, ok := config.Networks[chainId]; !ok {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Unsupported chain",
		}, http.StatusBadRequest)
		return
	}

	token, err := tokenFromQuery(q.Get("token"), q.Get("symbol"), q.Get("decimals"))
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "token",
			Message: err.Error(),
		}, http.StatusBadRequest)
		return
	}

	owner := q.Get("owner")
	if err := ethav.Validate(common.HexToAddress(owner).Hex()); err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "owner",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	allowance, err := swapSvc.Allowance(r.Context(), token, owner, chainId)
	if err != nil {
		log.Printf("Error reading allowance for %s on chain %d: %s", token.Symbol, chainId, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot read allowance",
		}, http.StatusInternalServerError)
		return
	}

	resp := &AllowanceResponse{Status: "ok", Allowance: allowance.String()}

	if amountStr := q.Get("amount"); amountStr != "" {
		amount, ok := big.NewInt(0).SetString(amountStr, 10)
		if !ok {
			responseJSON(w, &APIResponse{
				Status:  "error",
				Field:   "amount",
				Message: "Amount must be an integer in smallest units",
			}, http.StatusBadRequest)
			return
		}
		approved, err := swapSvc.ApproveStatus(r.Context(), token, owner, amount, chainId)
		if err != nil {
			log.Printf("Error reading approve status: %s", err.Error())
		} else {
			resp.Approved = approved
		}
	}

	responseJSON(w, resp, http.StatusOK)
}

type ApproveRequest struct {
	Token   types.Token `json:"token"`
	Amount  string      `json:"amount"` // smallest units, decimal string
	ChainID int         `json:"chainId"`
}

type TxSubmittedResponse struct {
	Status string `json:"status"`
	TxHash string `json:"txHash"`
}

// Approve grants the swap infrastructure spending rights on the service
// wallet's tokens, with the usual oversized buffer so one approval covers
// many swaps.
func Approve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req ApproveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if _, ok := config.Networks[req.ChainID]; !ok {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Unsupported chain",
		}, http.StatusBadRequest)
		return
	}

	amount, ok := big.NewInt(0).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: "Amount must be a positive integer in smallest units",
		}, http.StatusBadRequest)
		return
	}

	txHash, err := swapSvc.Approve(r.Context(), req.Token, amount, req.ChainID)
	if err != nil {
		log.Printf("Error approving %s on chain %d: %s", req.Token.Symbol, req.ChainID, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot submit approval",
		}, http.StatusInternalServerError)
		return
	}

	responseJSON(w, &TxSubmittedResponse{Status: "ok", TxHash: txHash}, http.StatusOK)
}

type SwapRequest struct {
	From    types.Token `json:"from"`
	To      types.Token `json:"to"`
	Amount  string      `json:"amount"` // smallest units, decimal string
	ChainID int         `json:"chainId"`
}

// Swap executes a same-chain swap through whichever path produced the most
// recent quote: the pathfinder's prepared transaction, or the on-chain
// aggregator with the slippage-bounded min return.
func Swap(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req SwapRequest
	if err := json.Unmarshal(body, &req); err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if _, ok := config.Networks[req.ChainID]; !ok {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Unsupported chain",
		}, http.StatusBadRequest)
		return
	}

	amount, ok := big.NewInt(0).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: "Amount must be a positive integer in smallest units",
		}, http.StatusBadRequest)
		return
	}

	txHash, err := swapSvc.Swap(r.Context(), req.From, req.To, amount, req.ChainID)
	if err != nil {
		log.Printf("Error swapping %s->%s on chain %d: %s", req.From.Symbol, req.To.Symbol, req.ChainID, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot execute swap",
		}, http.StatusInternalServerError)
		return
	}

	responseJSON(w, &TxSubmittedResponse{Status: "ok", TxHash: txHash}, http.StatusOK)
}
