package swap

import (
	"context"
	"math/big"
	"testing"
	"time"

	"goswapbridge/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRouteStore keeps the persisted pathfinder route in memory.
type fakeRouteStore struct {
	route   string
	cleared int
}

func (f *fakeRouteStore) Route() (string, error) { return f.route, nil }

func (f *fakeRouteStore) SetRoute(route string) error {
	f.route = route
	return nil
}

func (f *fakeRouteStore) ClearRoute() error {
	f.route = ""
	f.cleared++
	return nil
}

func testService(quoter Quoter) (*Service, *fakeRouteStore, *time.Time) {
	routes := &fakeRouteStore{}
	svc := New(nil, routes, decimal.RequireFromString("0.5"))
	svc.quoteOnChain = quoter

	now := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return now }

	return svc, routes, &now
}

func tokens() (types.Token, types.Token) {
	return types.Token{Address: "0x01", Symbol: "WMATIC", Decimals: 18},
		types.Token{Address: "0x02", Symbol: "USDC", Decimals: 6}
}

func TestGetExpectedReturnCachesWithinWindow(t *testing.T) {
	calls := 0
	svc, routes, now := testService(func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
		calls++
		return &ReturnEstimate{ReturnAmount: big.NewInt(0).Add(amount, big.NewInt(int64(calls)))}, nil
	})

	from, to := tokens()
	amount := big.NewInt(1e6)

	first, err := svc.GetExpectedReturn(context.Background(), from, to, amount, 137)
	require.NoError(t, err)

	*now = now.Add(4 * time.Second)
	second, err := svc.GetExpectedReturn(context.Background(), from, to, amount, 137)
	require.NoError(t, err)

	// within the window the very same object comes back
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	// quoting clears any stale pathfinder route
	assert.Equal(t, 1, routes.cleared)
}

func TestGetExpectedReturnRefreshesAfterWindow(t *testing.T) {
	calls := 0
	svc, _, now := testService(func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
		calls++
		return &ReturnEstimate{ReturnAmount: big.NewInt(int64(calls))}, nil
	})

	from, to := tokens()
	amount := big.NewInt(1e6)

	first, err := svc.GetExpectedReturn(context.Background(), from, to, amount, 137)
	require.NoError(t, err)

	*now = now.Add(6 * time.Second)
	second, err := svc.GetExpectedReturn(context.Background(), from, to, amount, 137)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestGetExpectedReturnCacheKeyedByRequest(t *testing.T) {
	calls := 0
	svc, _, _ := testService(func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
		calls++
		return &ReturnEstimate{ReturnAmount: big.NewInt(1)}, nil
	})

	from, to := tokens()

	_, err := svc.GetExpectedReturn(context.Background(), from, to, big.NewInt(100), 137)
	require.NoError(t, err)
	_, err = svc.GetExpectedReturn(context.Background(), from, to, big.NewInt(200), 137)
	require.NoError(t, err)
	_, err = svc.GetExpectedReturn(context.Background(), from, to, big.NewInt(100), 56)
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
}

func TestCalculateMinReturn(t *testing.T) {
	svc, _, _ := testService(func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
		return &ReturnEstimate{
			ReturnAmount: big.NewInt(1000000),
			Distribution: []*big.Int{big.NewInt(10), big.NewInt(0)},
		}, nil
	})

	from, to := tokens()

	result, err := svc.CalculateMinReturn(context.Background(), from, to, big.NewInt(1e18), 137)
	require.NoError(t, err)

	// 0.5% slippage off 1000000
	assert.Equal(t, big.NewInt(995000), result.MinReturn)
	assert.Equal(t, big.NewInt(1000000), result.ExpectedAmount)
	assert.Len(t, result.Distribution, 2)
}

func TestCalculatePriceImpact(t *testing.T) {
	svc, _, _ := testService(func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
		// flat 1:2 rate regardless of size means zero impact
		return &ReturnEstimate{ReturnAmount: big.NewInt(0).Mul(amount, big.NewInt(2))}, nil
	})

	from, to := tokens()

	impact, err := svc.CalculatePriceImpact(context.Background(), from, to, big.NewInt(1e6), 137)
	require.NoError(t, err)
	assert.Equal(t, "0.000000", impact)
}
