package bridges

import (
	"bytes"
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

// cBridge liquidity pool contracts per source chain
var cbridgePools = map[int]string{
	1:     "0x5427FEFA711Eff984124bFBB1AB6fbf5E3DA1820",
	10:    "0x9D39Fc627A6d9d9F8C831c16995b209548cc3401",
	56:    "0xdd90E5E87A2081Dcf0391920868eBc2FFB81a1aF",
	137:   "0x88DCDC47D2f83a99CF0000FDF667A468bB958a78",
	250:   "0x374B8a9f3eC5eB2D97ECA84Ea27aCa45aa1C57EF",
	42161: "0x1619DE6B6B20eD217a58d00f37B9d47C7663feca",
	43114: "0xef3c714c9425a8F3697A9C969Dc1af30ba82e5d4",
}

// cBridge gateway transfer status codes
var cbridgeStatusNames = map[int]string{
	0:  "unknown",
	1:  "submitting",
	2:  "failed",
	3:  "waiting-for-sgn",
	4:  "waiting-for-fund-release",
	5:  "completed",
	6:  "to-be-refunded",
	7:  "requesting-refund",
	8:  "refund-to-be-confirmed",
	9:  "confirming-refund",
	10: "refunded",
}

// CBridgeAdapter talks to the cBridge REST gateway. Step one locks funds in
// the source-chain pool; step two asks the gateway to release destination
// liquidity and is keyed by the gateway's own transfer reference, not the
// orchestrator transaction id.
type CBridgeAdapter struct {
	api        string
	httpClient *http.Client
}

func NewCBridge(api string) *CBridgeAdapter {
	return &CBridgeAdapter{
		api:        api,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *CBridgeAdapter) Key() types.BridgeKey {
	return types.BridgeCBridge
}

type cbridgeQuoteResponse struct {
	TransferID          string `json:"transfer_id"`
	EstimatedReceiveAmt string `json:"estimated_receive_amt"`
	BaseFee             string `json:"base_fee"`
	PercFee             string `json:"perc_fee"`
	MinSendAmt          string `json:"min_send_amt"`
}

func (c *CBridgeAdapter) GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error) {
	params := url.Values{}
	params.Set("src_chain_id", fmt.Sprintf("%d", intent.SendingChainID))
	params.Set("dst_chain_id", fmt.Sprintf("%d", intent.ReceivingChainID))
	params.Set("token_symbol", intent.SendingAsset.Symbol)
	params.Set("amt", intent.Amount.String())
	params.Set("usr_addr", config.Config.EVM.PublicAddress)
	params.Set("slippage_tolerance", config.Config.Swap.SlippagePercent)

	var quote cbridgeQuoteResponse
	if err := c.sendGet(ctx, "v2/estimateAmt", params, &quote); err != nil {
		return nil, err
	}

	returnAmount, ok := big.NewInt(0).SetString(quote.EstimatedReceiveAmt, 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse cbridge estimated_receive_amt: %s", quote.EstimatedReceiveAmt)
	}
	baseFee, ok := big.NewInt(0).SetString(quote.BaseFee, 10)
	if !ok {
		baseFee = big.NewInt(0)
	}
	percFee, ok := big.NewInt(0).SetString(quote.PercFee, 10)
	if !ok {
		percFee = big.NewInt(0)
	}
	minSend, ok := big.NewInt(0).SetString(quote.MinSendAmt, 10)
	if !ok {
		minSend = big.NewInt(0)
	}

	return &types.Estimate{
		ID:                 transactionID,
		HasMinBridgeAmount: intent.Amount.Cmp(minSend) >= 0,
		ReturnAmount:       returnAmount,
		BridgeFee:          big.NewInt(0).Add(baseFee, percFee),
		CompletionID:       quote.TransferID,
		EstimatedDuration:  "-5 Minutes",
	}, nil
}

func (c *CBridgeAdapter) TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	pool, ok := cbridgePools[intent.SendingChainID]
	if !ok {
		return nil, fmt.Errorf("cbridge has no pool on chain %d", intent.SendingChainID)
	}
	return depositFunds(ctx, intent.SendingChainID, pool, intent.SendingAsset, intent.Amount)
}

type cbridgeWithdrawResponse struct {
	TxHash string `json:"tx_hash"`
}

// TransferStepTwo releases destination liquidity. completionID must be the
// gateway's transfer_id from the estimate.
func (c *CBridgeAdapter) TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	body := map[string]interface{}{
		"transfer_id": completionID,
		"usr_addr":    config.Config.EVM.PublicAddress,
	}

	var result cbridgeWithdrawResponse
	if err := c.sendPost(ctx, "v2/withdraw", body, &result); err != nil {
		return nil, err
	}

	return &types.TransferHandle{TxHash: result.TxHash, ChainID: intent.ReceivingChainID}, nil
}

type cbridgeTransfer struct {
	TransferID string `json:"transfer_id"`
	Status     int    `json:"status"`
	SrcChainID int    `json:"src_chain_id"`
	DstChainID int    `json:"dst_chain_id"`
	SrcToken   string `json:"src_token_symbol"`
	DstToken   string `json:"dst_token_symbol"`
	Amount     string `json:"amt"`
	Ts         int64  `json:"ts"`
}

type cbridgeHistoryResponse struct {
	History []cbridgeTransfer `json:"history"`
}

func (c *CBridgeAdapter) History(ctx context.Context) ([]types.HistoryRecord, error) {
	params := url.Values{}
	params.Set("addr", config.Config.EVM.PublicAddress)

	var resp cbridgeHistoryResponse
	if err := c.sendGet(ctx, "v2/transferHistory", params, &resp); err != nil {
		return nil, err
	}

	records := make([]types.HistoryRecord, 0, len(resp.History))
	for _, t := range resp.History {
		status, ok := cbridgeStatusNames[t.Status]
		if !ok {
			status = "unknown"
		}
		records = append(records, types.HistoryRecord{
			ID:        t.TransferID,
			Bridge:    types.BridgeCBridge,
			Status:    status,
			RawStatus: t.Status,
			FromAsset: t.SrcToken,
			ToAsset:   t.DstToken,
			FromChain: t.SrcChainID,
			ToChain:   t.DstChainID,
			Amount:    t.Amount,
			TsCreated: t.Ts,
			TsUpdated: t.Ts,
		})
	}
	return records, nil
}

func (c *CBridgeAdapter) sendGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.api, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling cbridge %s: %s", path, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cbridge %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *CBridgeAdapter) sendPost(ctx context.Context, path string, params interface{}, out interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.api, path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling cbridge %s: %s", path, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cbridge %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
