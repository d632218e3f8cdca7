package txmanager

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"goswapbridge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter scripts one bridge backend for the orchestrator.
type fakeAdapter struct {
	key           types.BridgeKey
	estimate      *types.Estimate
	estimateErr   error
	stepOneErr    error
	stepTwoErr    error
	lastStepTwoID string
}

func (f *fakeAdapter) Key() types.BridgeKey { return f.key }

func (f *fakeAdapter) GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error) {
	if f.estimateErr != nil {
		return nil, f.estimateErr
	}
	est := *f.estimate
	est.ID = transactionID
	return &est, nil
}

func (f *fakeAdapter) TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	if f.stepOneErr != nil {
		return nil, f.stepOneErr
	}
	return &types.TransferHandle{TxHash: "0xstep1", ChainID: intent.SendingChainID}, nil
}

func (f *fakeAdapter) TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	f.lastStepTwoID = completionID
	if f.stepTwoErr != nil {
		return nil, f.stepTwoErr
	}
	return &types.TransferHandle{TxHash: "0xstep2", ChainID: intent.ReceivingChainID}, nil
}

func (f *fakeAdapter) History(ctx context.Context) ([]types.HistoryRecord, error) {
	return nil, nil
}

func goodEstimate() *types.Estimate {
	return &types.Estimate{
		HasMinBridgeAmount: true,
		ReturnAmount:       big.NewInt(995000),
		BridgeFee:          big.NewInt(5000),
	}
}

func usdcRequest() EstimateRequest {
	return EstimateRequest{
		From:        types.Token{Address: "0x01", Symbol: "USDC", Decimals: 6},
		FromChainID: 1,
		To:          types.Token{Address: "0x02", Symbol: "USDC", Decimals: 6},
		ToChainID:   137,
		Amount:      big.NewInt(1000000),
		Recipient:   "0x00000000000000000000000000000000000000aa",
	}
}

func drain(results <-chan RouteQuote) map[types.BridgeKey]RouteQuote {
	quotes := make(map[types.BridgeKey]RouteQuote)
	for q := range results {
		quotes[q.Bridge] = q
	}
	return quotes
}

func TestGetAllEstimatesFanOut(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	parentID, eligible, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	require.Len(t, eligible, 3)

	quotes := drain(results)
	require.Len(t, quotes, 3)

	seen := make(map[string]bool)
	for _, q := range quotes {
		require.NoError(t, q.Err)
		require.NotNil(t, q.Intent)
		assert.Equal(t, parentID, q.Intent.ParentID)
		assert.Equal(t, types.StateQuoted, q.Intent.State)
		assert.Equal(t, q.TransactionID, q.Intent.Estimate.ID)
		assert.NotEqual(t, parentID, q.TransactionID)
		seen[q.TransactionID] = true
	}
	// child ids are distinct per bridge
	assert.Len(t, seen, 3)
}

func TestGetAllEstimatesPartialFailure(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimateErr: errors.New("gateway down")},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	parentID, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)

	assert.Error(t, quotes[types.BridgeCBridge].Err)
	assert.Nil(t, quotes[types.BridgeCBridge].Intent)
	assert.NotNil(t, quotes[types.BridgeHop].Intent)
	assert.NotNil(t, quotes[types.BridgeConnext].Intent)

	route, ok := mgr.Route(parentID)
	require.True(t, ok)
	assert.Nil(t, route[types.BridgeCBridge])
	assert.NotNil(t, route[types.BridgeHop])
}

func TestGetAllEstimatesBelowMinimumInvalidatesRoute(t *testing.T) {
	below := goodEstimate()
	below.HasMinBridgeAmount = false

	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: below},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	parentID, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)

	// below-minimum is not an error, the route is just dropped
	assert.NoError(t, quotes[types.BridgeHop].Err)
	assert.Nil(t, quotes[types.BridgeHop].Intent)

	route, ok := mgr.Route(parentID)
	require.True(t, ok)
	assert.Nil(t, route[types.BridgeHop])
	assert.NotNil(t, route[types.BridgeCBridge])
	assert.NotNil(t, route[types.BridgeConnext])
}

func TestGetAllEstimatesNoEligibleBridges(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	// moonriver is served by no bridge
	req := usdcRequest()
	req.FromChainID = 1285
	req.ToChainID = 1285

	parentID, eligible, results := mgr.GetAllEstimates(context.Background(), req)

	// not an error: an empty list and an already-closed channel
	assert.NotEmpty(t, parentID)
	assert.Empty(t, eligible)

	_, open := <-results
	assert.False(t, open)

	route, ok := mgr.Route(parentID)
	require.True(t, ok)
	assert.Empty(t, route)
}

func pickQuoted(t *testing.T, mgr *Manager, quotes map[types.BridgeKey]RouteQuote, bridge types.BridgeKey) string {
	t.Helper()
	q, ok := quotes[bridge]
	require.True(t, ok)
	require.NotNil(t, q.Intent)
	return q.TransactionID
}

func TestTransferStepsUnknownTransaction(t *testing.T) {
	mgr := New(nil, &fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()})

	_, err := mgr.TransferStepOne(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrUnknownTransaction)

	_, err = mgr.TransferStepTwo(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestTransferStepOrderEnforced(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeConnext)

	// step two before step one
	_, err := mgr.TransferStepTwo(context.Background(), id)
	assert.ErrorIs(t, err, ErrStepOrder)

	_, err = mgr.TransferStepOne(context.Background(), id)
	require.NoError(t, err)

	intent, ok := mgr.GetTx(id)
	require.True(t, ok)
	assert.Equal(t, types.StateStepOneDone, intent.State)

	// step one twice
	_, err = mgr.TransferStepOne(context.Background(), id)
	assert.ErrorIs(t, err, ErrStepOrder)

	_, err = mgr.TransferStepTwo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, types.StateComplete, intent.State)

	// step two twice
	_, err = mgr.TransferStepTwo(context.Background(), id)
	assert.ErrorIs(t, err, ErrStepOrder)
}

func TestSingleStepBridgeCompletesOnStepOne(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeHop)

	_, err := mgr.TransferStepOne(context.Background(), id)
	require.NoError(t, err)

	intent, _ := mgr.GetTx(id)
	assert.Equal(t, types.StateComplete, intent.State)

	_, err = mgr.TransferStepTwo(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotTwoStep)
}

func TestStepOneFailureMarksIntentFailed(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate(), stepOneErr: errors.New("nonce too low")},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeConnext)

	_, err := mgr.TransferStepOne(context.Background(), id)
	require.Error(t, err)

	intent, _ := mgr.GetTx(id)
	assert.Equal(t, types.StateFailed, intent.State)

	// failed transfers cannot be retried
	_, err = mgr.TransferStepOne(context.Background(), id)
	assert.ErrorIs(t, err, ErrStepOrder)
}

func TestCBridgeStepTwoUsesCompletionID(t *testing.T) {
	est := goodEstimate()
	est.CompletionID = "0xcelertransfer"
	cbridge := &fakeAdapter{key: types.BridgeCBridge, estimate: est}

	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		cbridge,
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeCBridge)

	_, err := mgr.TransferStepOne(context.Background(), id)
	require.NoError(t, err)
	_, err = mgr.TransferStepTwo(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "0xcelertransfer", cbridge.lastStepTwoID)
}

func TestConnextStepTwoUsesTransactionID(t *testing.T) {
	connext := &fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()}

	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		connext,
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeConnext)

	_, err := mgr.TransferStepOne(context.Background(), id)
	require.NoError(t, err)
	_, err = mgr.TransferStepTwo(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, connext.lastStepTwoID)
}

func TestCBridgeStepTwoMissingCompletionID(t *testing.T) {
	// estimate without the gateway's withdrawal reference
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)
	id := pickQuoted(t, mgr, quotes, types.BridgeCBridge)

	_, err := mgr.TransferStepOne(context.Background(), id)
	require.NoError(t, err)
	_, err = mgr.TransferStepTwo(context.Background(), id)
	assert.ErrorIs(t, err, ErrMissingCompletionID)
}

func TestTwoStepTransferRequired(t *testing.T) {
	mgr := New(nil,
		&fakeAdapter{key: types.BridgeHop, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeCBridge, estimate: goodEstimate()},
		&fakeAdapter{key: types.BridgeConnext, estimate: goodEstimate()},
	)

	_, _, results := mgr.GetAllEstimates(context.Background(), usdcRequest())
	quotes := drain(results)

	assert.True(t, mgr.TwoStepTransferRequired(pickQuoted(t, mgr, quotes, types.BridgeConnext)))
	assert.True(t, mgr.TwoStepTransferRequired(pickQuoted(t, mgr, quotes, types.BridgeCBridge)))
	assert.False(t, mgr.TwoStepTransferRequired(pickQuoted(t, mgr, quotes, types.BridgeHop)))

	// unknown ids answer false, same as single-step; GetTx tells them apart
	assert.False(t, mgr.TwoStepTransferRequired("no-such-id"))
	_, ok := mgr.GetTx("no-such-id")
	assert.False(t, ok)
}
