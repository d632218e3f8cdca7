package bridges

import (
	"context"
	"fmt"
	"math/big"

	"goswapbridge/types"

	"github.com/shopspring/decimal"
	"github.com/ybbus/jsonrpc"
)

// ConnextAdapter talks to a nxtp router node over JSON-RPC. Connext
// transfers are prepare/fulfill pairs keyed by the orchestrator transaction
// id on both legs.
type ConnextAdapter struct {
	rpc jsonrpc.RPCClient
}

func NewConnext(endpoint string) *ConnextAdapter {
	return &ConnextAdapter{rpc: jsonrpc.NewClient(endpoint)}
}

func (c *ConnextAdapter) Key() types.BridgeKey {
	return types.BridgeConnext
}

type connextQuote struct {
	ReceivedAmount   string `json:"receivedAmount"`
	MetaTxRelayerFee string `json:"metaTxRelayerFee"`
	MinAmount        string `json:"minAmount"`
	MaxSlippage      string `json:"maxSlippage"`
}

func (c *ConnextAdapter) GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error) {
	resp, err := c.rpc.Call("getTransferQuote", map[string]interface{}{
		"transactionId":    transactionID,
		"sendingChainId":   intent.SendingChainID,
		"sendingAssetId":   intent.SendingAsset.Address,
		"receivingChainId": intent.ReceivingChainID,
		"receivingAssetId": intent.ReceivingAsset.Address,
		"amount":           intent.Amount.String(),
		"receivingAddress": intent.ReceivingAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("error calling connext getTransferQuote: %s", err.Error())
	}

	var quote connextQuote
	if err := resp.GetObject(&quote); err != nil {
		return nil, fmt.Errorf("cannot decode connext quote: %s", err.Error())
	}

	returnAmount, ok := big.NewInt(0).SetString(quote.ReceivedAmount, 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse connext receivedAmount: %s", quote.ReceivedAmount)
	}
	relayerFee, ok := big.NewInt(0).SetString(quote.MetaTxRelayerFee, 10)
	if !ok {
		relayerFee = big.NewInt(0)
	}
	minAmount, ok := big.NewInt(0).SetString(quote.MinAmount, 10)
	if !ok {
		minAmount = big.NewInt(0)
	}

	maxSlippage, err := decimal.NewFromString(quote.MaxSlippage)
	if err != nil {
		return nil, fmt.Errorf("cannot parse connext maxSlippage: %s", quote.MaxSlippage)
	}

	return &types.Estimate{
		ID:                 transactionID,
		HasMinBridgeAmount: intent.Amount.Cmp(minAmount) >= 0,
		ReturnAmount:       returnAmount,
		BridgeFee:          relayerFee,
		MaxSlippage:        maxSlippage,
		EstimatedDuration:  "-5 Minutes",
	}, nil
}

type connextTxResult struct {
	TxHash  string `json:"txHash"`
	ChainID int    `json:"chainId"`
}

func (c *ConnextAdapter) TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	params := map[string]interface{}{
		"transactionId":    transactionID,
		"sendingChainId":   intent.SendingChainID,
		"sendingAssetId":   intent.SendingAsset.Address,
		"receivingChainId": intent.ReceivingChainID,
		"receivingAssetId": intent.ReceivingAsset.Address,
		"amount":           intent.Amount.String(),
		"receivingAddress": intent.ReceivingAddress,
	}
	// the prepare leg is the only place the protocol consumes the quoted
	// slippage bound
	if intent.Estimate != nil {
		params["maxSlippage"] = intent.Estimate.MaxSlippage.String()
	}

	resp, err := c.rpc.Call("prepare", params)
	if err != nil {
		return nil, fmt.Errorf("error calling connext prepare: %s", err.Error())
	}

	var result connextTxResult
	if err := resp.GetObject(&result); err != nil {
		return nil, fmt.Errorf("cannot decode connext prepare result: %s", err.Error())
	}

	return &types.TransferHandle{TxHash: result.TxHash, ChainID: intent.SendingChainID}, nil
}

func (c *ConnextAdapter) TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	resp, err := c.rpc.Call("fulfill", map[string]interface{}{
		"transactionId": completionID,
	})
	if err != nil {
		return nil, fmt.Errorf("error calling connext fulfill: %s", err.Error())
	}

	var result connextTxResult
	if err := resp.GetObject(&result); err != nil {
		return nil, fmt.Errorf("cannot decode connext fulfill result: %s", err.Error())
	}

	return &types.TransferHandle{TxHash: result.TxHash, ChainID: intent.ReceivingChainID}, nil
}

type connextTransfer struct {
	TransactionID     string `json:"transactionId"`
	Status            string `json:"status"`
	SendingAssetID    string `json:"sendingAssetId"`
	ReceivingAssetID  string `json:"receivingAssetId"`
	SendingChainID    int    `json:"sendingChainId"`
	ReceivingChainID  int    `json:"receivingChainId"`
	Amount            string `json:"amount"`
	PreparedTimestamp int64  `json:"preparedTimestamp"`
}

func (c *ConnextAdapter) History(ctx context.Context) ([]types.HistoryRecord, error) {
	return c.fetchTransfers("getTransfers")
}

// ActiveHistory is pre-filtered by the router node, unlike the other
// bridges' raw histories.
func (c *ConnextAdapter) ActiveHistory(ctx context.Context) ([]types.HistoryRecord, error) {
	return c.fetchTransfers("getActiveTransactions")
}

func (c *ConnextAdapter) fetchTransfers(method string) ([]types.HistoryRecord, error) {
	resp, err := c.rpc.Call(method)
	if err != nil {
		return nil, fmt.Errorf("error calling connext %s: %s", method, err.Error())
	}

	var transfers []connextTransfer
	if err := resp.GetObject(&transfers); err != nil {
		return nil, fmt.Errorf("cannot decode connext transfers: %s", err.Error())
	}

	records := make([]types.HistoryRecord, 0, len(transfers))
	for _, t := range transfers {
		records = append(records, types.HistoryRecord{
			ID:        t.TransactionID,
			Bridge:    types.BridgeConnext,
			Status:    t.Status,
			FromAsset: t.SendingAssetID,
			ToAsset:   t.ReceivingAssetID,
			FromChain: t.SendingChainID,
			ToChain:   t.ReceivingChainID,
			Amount:    t.Amount,
			TsCreated: t.PreparedTimestamp,
			TsUpdated: t.PreparedTimestamp,
		})
	}
	return records, nil
}
