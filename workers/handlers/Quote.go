package handlers

import (
	"errors"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"goswapbridge/config"
	"goswapbridge/types"
)

type QuoteResponse struct {
	Status       string     `json:"status"`
	ReturnAmount string     `json:"returnAmount"` // smallest units, decimal string
	MinReturn    string     `json:"minReturn"`
	Distribution []*big.Int `json:"distribution,omitempty"`
	Route        string     `json:"route,omitempty"`
	PriceImpact  string     `json:"priceImpact,omitempty"`
}

// Quote prices a same-chain swap. Mainnet answers come from the off-chain
// pathfinder, the other chains from the on-chain aggregator contract.
func Quote(w http.ResponseWriter, r *http.Request) {
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

	from, err := tokenFromQuery(q.Get("from"), q.Get("fromSymbol"), q.Get("fromDecimals"))
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "from",
			Message: err.Error(),
		}, http.StatusBadRequest)
		return
	}
	to, err := tokenFromQuery(q.Get("to"), q.Get("toSymbol"), q.Get("toDecimals"))
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "to",
			Message: err.Error(),
		}, http.StatusBadRequest)
		return
	}

	amount, ok := big.NewInt(0).SetString(q.Get("amount"), 10)
	if !ok || amount.Sign() <= 0 {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: "Amount must be a positive integer in smallest units",
		}, http.StatusBadRequest)
		return
	}

	minReturn, err := swapSvc.CalculateMinReturn(r.Context(), from, to, amount, chainId)
	if err != nil {
		log.Printf("Error quoting %s->%s on chain %d: %s", from.Symbol, to.Symbol, chainId, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot quote swap",
		}, http.StatusInternalServerError)
		return
	}

	resp := &QuoteResponse{
		Status:       "ok",
		ReturnAmount: minReturn.ExpectedAmount.String(),
		MinReturn:    minReturn.MinReturn.String(),
		Distribution: minReturn.Distribution,
	}

	// price impact needs an extra probe quote, losing it is not worth
	// failing the whole request over
	if impact, err := swapSvc.CalculatePriceImpact(r.Context(), from, to, amount, chainId); err == nil {
		resp.PriceImpact = impact
	} else {
		log.Printf("Error calculating price impact: %s", err.Error())
	}

	responseJSON(w, resp, http.StatusOK)
}

func tokenFromQuery(address, symbol, decimalsStr string) (types.Token, error) {
	decimals, err := strconv.Atoi(decimalsStr)
	if err != nil || decimals < 0 {
		return types.Token{}, errors.New("token decimals must be a non-negative integer")
	}
	if address == "" {
		return types.Token{}, errors.New("token address is required")
	}

	return types.Token{
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
		Native:   address == config.NATIVE_ASSET,
	}, nil
}
