package history

import (
	"context"
	"errors"
	"testing"

	"goswapbridge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistorian struct {
	key     types.BridgeKey
	records []types.HistoryRecord
	err     error
}

func (f *fakeHistorian) Key() types.BridgeKey { return f.key }

func (f *fakeHistorian) GetEstimate(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.Estimate, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHistorian) TransferStepOne(ctx context.Context, transactionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHistorian) TransferStepTwo(ctx context.Context, completionID string, intent *types.TransferIntent) (*types.TransferHandle, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHistorian) History(ctx context.Context) ([]types.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeActiveHistorian additionally serves a pre-filtered active list, the
// way the connext router node does.
type fakeActiveHistorian struct {
	fakeHistorian
	active []types.HistoryRecord
}

func (f *fakeActiveHistorian) ActiveHistory(ctx context.Context) ([]types.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.active, nil
}

func cbridgeRecords() []types.HistoryRecord {
	// one record per gateway status code
	recs := make([]types.HistoryRecord, 0, 11)
	names := map[int]string{
		0: "unknown", 1: "submitting", 2: "failed", 3: "waiting-for-sgn",
		4: "waiting-for-fund-release", 5: "completed", 6: "to-be-refunded",
		7: "requesting-refund", 8: "refund-to-be-confirmed", 9: "confirming-refund",
		10: "refunded",
	}
	for code := 0; code <= 10; code++ {
		recs = append(recs, types.HistoryRecord{
			ID:        names[code],
			Bridge:    types.BridgeCBridge,
			Status:    names[code],
			RawStatus: code,
		})
	}
	return recs
}

func TestGetAllTxHistoryMergesAllBridges(t *testing.T) {
	agg := New(
		&fakeHistorian{key: types.BridgeHop, records: []types.HistoryRecord{
			{ID: "h1", Bridge: types.BridgeHop, Status: "complete"},
		}},
		&fakeHistorian{key: types.BridgeCBridge, records: []types.HistoryRecord{
			{ID: "c1", Bridge: types.BridgeCBridge, Status: "completed", RawStatus: 5},
			{ID: "c2", Bridge: types.BridgeCBridge, Status: "submitting", RawStatus: 1},
		}},
	)

	merged := agg.GetAllTxHistory(context.Background())
	assert.Len(t, merged, 3)
}

func TestGetAllTxHistoryPartialResults(t *testing.T) {
	agg := New(
		&fakeHistorian{key: types.BridgeHop, err: errors.New("api down")},
		&fakeHistorian{key: types.BridgeCBridge, records: []types.HistoryRecord{
			{ID: "c1", Bridge: types.BridgeCBridge, Status: "completed", RawStatus: 5},
		}},
	)

	// one backend failing does not fail the merged view
	merged := agg.GetAllTxHistory(context.Background())
	require.Len(t, merged, 1)
	assert.Equal(t, "c1", merged[0].ID)
}

func TestGetAllTxHistoryAllFailed(t *testing.T) {
	agg := New(
		&fakeHistorian{key: types.BridgeHop, err: errors.New("api down")},
		&fakeHistorian{key: types.BridgeCBridge, err: errors.New("gateway down")},
	)

	merged := agg.GetAllTxHistory(context.Background())
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestGetAllActiveTxsCBridgeStatusFilter(t *testing.T) {
	agg := New(&fakeHistorian{key: types.BridgeCBridge, records: cbridgeRecords()})

	active := agg.GetAllActiveTxs(context.Background())

	// unknown (0), failed (2), completed (5) and refunded (10) are settled
	activeIDs := make(map[string]bool)
	for _, rec := range active {
		activeIDs[rec.ID] = true
	}
	assert.Len(t, active, 7)
	assert.False(t, activeIDs["unknown"])
	assert.False(t, activeIDs["failed"])
	assert.False(t, activeIDs["completed"])
	assert.False(t, activeIDs["refunded"])
	assert.True(t, activeIDs["submitting"])
	assert.True(t, activeIDs["waiting-for-fund-release"])
}

func TestGetAllActiveTxsHopPendingFilter(t *testing.T) {
	agg := New(&fakeHistorian{key: types.BridgeHop, records: []types.HistoryRecord{
		{ID: "h1", Bridge: types.BridgeHop, Status: "complete"},
		{ID: "h2", Bridge: types.BridgeHop, Status: "pending"},
	}})

	active := agg.GetAllActiveTxs(context.Background())
	require.Len(t, active, 1)
	assert.Equal(t, "h2", active[0].ID)
}

func TestGetAllActiveTxsUsesPrefilteredBackend(t *testing.T) {
	connext := &fakeActiveHistorian{
		fakeHistorian: fakeHistorian{
			key: types.BridgeConnext,
			records: []types.HistoryRecord{
				{ID: "n1", Bridge: types.BridgeConnext, Status: "fulfilled"},
				{ID: "n2", Bridge: types.BridgeConnext, Status: "prepared"},
			},
		},
		active: []types.HistoryRecord{
			{ID: "n2", Bridge: types.BridgeConnext, Status: "prepared"},
		},
	}

	agg := New(connext)

	active := agg.GetAllActiveTxs(context.Background())
	require.Len(t, active, 1)
	assert.Equal(t, "n2", active[0].ID)
}
