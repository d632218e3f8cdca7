package handlers

import (
	"encoding/json"
	"io"
	"log"
	"math/big"
	"net/http"

	"goswapbridge/txmanager"
	"goswapbridge/types"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

type EstimatesRequest struct {
	From        types.Token `json:"from"`
	FromChainID int         `json:"fromChainId"`
	To          types.Token `json:"to"`
	ToChainID   int         `json:"toChainId"`
	Amount      string      `json:"amount"` // smallest units, decimal string
	Recipient   string      `json:"recipient"`
}

type RouteEstimate struct {
	TransactionID   string           `json:"transactionId"`
	Bridge          types.BridgeKey  `json:"bridge"`
	Estimate        *types.Estimate  `json:"estimate,omitempty"`
	Route           []types.RouteHop `json:"route,omitempty"`
	TwoStepTransfer bool             `json:"twoStepTransfer"`
	Error           string           `json:"error,omitempty"`
}

type EstimatesResponse struct {
	Status   string          `json:"status"`
	ParentID string          `json:"parentId"`
	Routes   []RouteEstimate `json:"routes"`
}

// Estimates fans the request out to every eligible bridge and answers once
// all of them resolve. Routes that failed or fell below a bridge minimum
// come back without an estimate so the client can grey them out.
func Estimates(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req EstimatesRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		log.Printf("Error unmarshalling request body: %s\n", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if err := ethav.Validate(common.HexToAddress(req.Recipient).Hex()); err != nil {
		log.Printf("Error validating recipient address '%s': %s\n", req.Recipient, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "recipient",
			Message: "No ethereum address or invalid address provided",
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

	parentID, _, results := mgr.GetAllEstimates(r.Context(), txmanager.EstimateRequest{
		From:        req.From,
		FromChainID: req.FromChainID,
		To:          req.To,
		ToChainID:   req.ToChainID,
		Amount:      amount,
		Recipient:   req.Recipient,
	})

	routes := make([]RouteEstimate, 0)
	for quote := range results {
		route := RouteEstimate{
			TransactionID:   quote.TransactionID,
			Bridge:          quote.Bridge,
			TwoStepTransfer: quote.Bridge.TwoStep(),
		}
		if quote.Err != nil {
			route.Error = quote.Err.Error()
		}
		if quote.Intent != nil {
			route.Estimate = quote.Intent.Estimate
			route.Route = txmanager.BuildRoute(quote.Intent)
		}
		routes = append(routes, route)
	}

	responseJSON(w, &EstimatesResponse{
		Status:   "ok",
		ParentID: parentID,
		Routes:   routes,
	}, http.StatusOK)
}
