package bridges

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"goswapbridge/config"
	"goswapbridge/types"
)

// Hop AMM wrapper addresses per source chain
var hopRouters = map[int]string{
	1:     "0xb8901acB165ed027E32754E0FFe830802919727f",
	10:    "0x86cA30bEF97fB651b8d866D45503684b90cb3312",
	100:   "0x76b22b8C1079A44F1211D867D68b1eda76a635A7",
	137:   "0x76b22b8C1079A44F1211D867D68b1eda76a635A7",
	42161: "0xe22D2beDb3Eca35E6397e0C6D62857094aA26F52",
}

type HopAdapter struct {
	api        string
	httpClient *http.Client
}

func NewHop(api string) *HopAdapter {
	return &HopAdapter{
		api:        api,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (h *HopAdapter) Key() types.BridgeKey {
	return types.BridgeHop
}

// bonder fee quote; the API misspells estimatedRecieved
type hopQuoteResponse struct {
	AmountOutMin      string `json:"amountOutMin"`
	BonderFee         string `json:"bonderFee"`
	EstimatedRecieved string `json:"estimatedRecieved"`
}

func (h *HopAdapter) GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error) {
	params := url.Values{}
	params.Set("amount", intent.Amount.String())
	params.Set("token", intent.SendingAsset.Symbol)
	params.Set("fromChain", fmt.Sprintf("%d", intent.SendingChainID))
	params.Set("toChain", fmt.Sprintf("%d", intent.ReceivingChainID))
	params.Set("slippage", config.Config.Swap.SlippagePercent)

	var quote hopQuoteResponse
	if err := h.sendGet(ctx, "v1/quote", params, &quote); err != nil {
		return nil, err
	}

	returnAmount, ok := big.NewInt(0).SetString(quote.EstimatedRecieved, 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse hop estimatedRecieved: %s", quote.EstimatedRecieved)
	}
	bonderFee, ok := big.NewInt(0).SetString(quote.BonderFee, 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse hop bonderFee: %s", quote.BonderFee)
	}

	return &types.Estimate{
		ID: transactionID,
		// the bonder swallows transfers below its fee, nothing arrives
		HasMinBridgeAmount: returnAmount.Sign() > 0,
		ReturnAmount:       returnAmount,
		BridgeFee:          bonderFee,
		EstimatedDuration:  "-5 Minutes",
	}, nil
}

func (h *HopAdapter) TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	router, ok := hopRouters[intent.SendingChainID]
	if !ok {
		return nil, fmt.Errorf("hop has no router on chain %d", intent.SendingChainID)
	}
	return depositFunds(ctx, intent.SendingChainID, router, intent.SendingAsset, intent.Amount)
}

func (h *HopAdapter) TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	// the bonder delivers on the destination chain on its own
	return nil, ErrSingleStepBridge
}

type hopTransfer struct {
	TransferID string `json:"transferId"`
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	SourceID   int    `json:"sourceChainId"`
	DestID     int    `json:"destinationChainId"`
	Bonded     bool   `json:"bonded"`
	Timestamp  int64  `json:"timestamp"`
}

func (h *HopAdapter) History(ctx context.Context) ([]types.HistoryRecord, error) {
	params := url.Values{}
	params.Set("address", config.Config.EVM.PublicAddress)

	var transfers []hopTransfer
	if err := h.sendGet(ctx, "v1/transfers", params, &transfers); err != nil {
		return nil, err
	}

	records := make([]types.HistoryRecord, 0, len(transfers))
	for _, t := range transfers {
		status := "pending"
		if t.Bonded {
			status = "complete"
		}
		records = append(records, types.HistoryRecord{
			ID:        t.TransferID,
			Bridge:    types.BridgeHop,
			Status:    status,
			FromAsset: t.Token,
			ToAsset:   t.Token,
			FromChain: t.SourceID,
			ToChain:   t.DestID,
			Amount:    t.Amount,
			TsCreated: t.Timestamp,
			TsUpdated: t.Timestamp,
		})
	}
	return records, nil
}

func (h *HopAdapter) sendGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?%s", h.api, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling hop %s: %s", path, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hop %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
