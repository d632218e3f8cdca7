package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Bridge backends the orchestrator can route through.
type BridgeKey string

const (
	BridgeHop     BridgeKey = "hop"
	BridgeCBridge BridgeKey = "cbridge"
	BridgeConnext BridgeKey = "connext"
)

// TwoStep reports whether the bridge needs two separately signed
// transactions to complete one transfer.
func (b BridgeKey) TwoStep() bool {
	return b == BridgeConnext || b == BridgeCBridge
}

// Transfer lifecycle. Progress is tracked explicitly instead of being
// inferred from which intent fields happen to be populated.
type TransferState int

const (
	StateQuoting TransferState = iota
	StateQuoted
	StateStepOnePending
	StateStepOneDone
	StateStepTwoPending
	StateComplete
	StateFailed
)

var stateNames = map[TransferState]string{
	StateQuoting:        "quoting",
	StateQuoted:         "quoted",
	StateStepOnePending: "step1pending",
	StateStepOneDone:    "step1done",
	StateStepTwoPending: "step2pending",
	StateComplete:       "complete",
	StateFailed:         "failed",
}

func (s TransferState) String() string {
	return stateNames[s]
}

// CanTransition reports whether moving to next is a legal lifecycle step.
// Failure is reachable from any non-terminal state.
func (s TransferState) CanTransition(next TransferState) bool {
	if next == StateFailed {
		return s != StateComplete && s != StateFailed
	}

	switch s {
	case StateQuoting:
		return next == StateQuoted
	case StateQuoted:
		return next == StateStepOnePending
	case StateStepOnePending:
		// single-step bridges complete here, two-step bridges park on step1done
		return next == StateStepOneDone || next == StateComplete
	case StateStepOneDone:
		return next == StateStepTwoPending
	case StateStepTwoPending:
		return next == StateComplete
	}
	return false
}

// Chain-scoped token descriptor. Address is the NATIVE_ASSET sentinel for
// the chain's native coin.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Native   bool   `json:"native,omitempty"`
}

// Estimate is a bridge's fee/output quote for a prospective transfer.
type Estimate struct {
	ID                 string          `json:"id"`
	HasMinBridgeAmount bool            `json:"hasMinBridgeAmount"`
	ReturnAmount       *big.Int        `json:"returnAmount"`
	BridgeFee          *big.Int        `json:"bridgeFee,omitempty"`
	MaxSlippage        decimal.Decimal `json:"maxSlippage,omitempty"`  // connext only
	CompletionID       string          `json:"completionId,omitempty"` // cbridge withdrawal reference
	EstimatedDuration  string          `json:"estimatedDuration,omitempty"`
}

// Handle to a submitted on-chain transaction.
type TransferHandle struct {
	TxHash  string `json:"txHash"`
	ChainID int    `json:"chainId"`
}

// TransferIntent is created when a user requests an estimate. Identifying
// fields never change afterwards; Estimate, State and the tx handles are
// filled in as the transfer progresses.
type TransferIntent struct {
	TransactionID    string          `json:"transactionId"`
	ParentID         string          `json:"parentId"`
	Bridge           BridgeKey       `json:"bridge"`
	SendingChainID   int             `json:"sendingChainId"`
	ReceivingChainID int             `json:"receivingChainId"`
	SendingAsset     Token           `json:"sendingAsset"`
	ReceivingAsset   Token           `json:"receivingAsset"`
	Amount           *big.Int        `json:"amount"`
	ReceivingAddress string          `json:"receivingAddress"`
	Estimate         *Estimate       `json:"estimate"` // nil until the quote resolves
	State            TransferState   `json:"state"`
	StepOneTx        *TransferHandle `json:"stepOneTx,omitempty"`
	StepTwoTx        *TransferHandle `json:"stepTwoTx,omitempty"`
	TsCreated        int64           `json:"tsCreated"`
}

// Hop types of a displayed route. A route always starts and ends with a
// token-network hop; swap and bridge hops are interior; additional is the
// trailing informational summary.
const (
	RouteHopTokenNetwork = "token-network"
	RouteHopSwap         = "swap"
	RouteHopBridge       = "bridge"
	RouteHopAdditional   = "additional"
)

type RouteHop struct {
	Type     string `json:"type"`
	Token    *Token `json:"token,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Network  int    `json:"network,omitempty"`
	Name     string `json:"name,omitempty"`
	Fee      string `json:"fee,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// HistoryRecord is the common shape every adapter's native history is
// normalized into.
type HistoryRecord struct {
	ID        string    `json:"id"`
	Bridge    BridgeKey `json:"bridge"`
	Status    string    `json:"status"`
	RawStatus int       `json:"rawStatus,omitempty"` // bridge-native code where the protocol exposes one
	FromAsset string    `json:"fromAsset"`
	ToAsset   string    `json:"toAsset"`
	FromChain int       `json:"fromChain"`
	ToChain   int       `json:"toChain"`
	Amount    string    `json:"amount"`
	TsCreated int64     `json:"tsCreated"`
	TsUpdated int64     `json:"tsUpdated"`
}

// TransferRecord is the persisted form of a transfer for the reconcile
// worker, stored in Redis under per-status sets.
type TransferRecord struct {
	ID            string
	TransactionID string
	Bridge        BridgeKey
	Status        string
	SourceChain   int
	DestChain     int
	Amount        string // smallest units, decimal string
	SourceTxHash  string
	DestTxHash    string
	TsFound       int64
	Message       string // messsages that help to track processing/errors
}
