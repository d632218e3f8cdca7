// Package swap implements the expected-return quoting and swap execution
// subsystem. On Ethereum mainnet quotes come from the off-chain pathfinder
// service (which also dictates how the swap must later be executed); on
// every other network they come straight from the network's on-chain
// aggregator contract and are memoized for a short window.
package swap

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"sync"
	"time"

	"goswapbridge/pathfinder"
	"goswapbridge/types"

	"github.com/shopspring/decimal"
)

// expected-return quotes are memoized this long, enough to absorb UI
// re-render storms without serving stale pricing
const cacheWindow = 5 * time.Second

// RouteStore persists the quoting route chosen by the pathfinder between
// the quote and the swap that executes it.
type RouteStore interface {
	Route() (string, error)
	SetRoute(route string) error
	ClearRoute() error
}

// ReturnEstimate is an expected-return quote. Distribution is only set for
// on-chain quotes, Route only for pathfinder quotes.
type ReturnEstimate struct {
	ReturnAmount   *big.Int
	Distribution   []*big.Int
	Route          string
	CacheTimestamp time.Time
}

// Quoter resolves an expected return against a network's aggregator
// contract. Replaceable in tests.
type Quoter func(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error)

type smallProbe struct {
	estimate *ReturnEstimate
	amount   *big.Int
}

type Service struct {
	mu         sync.Mutex
	cache      map[string]*ReturnEstimate
	smallCache map[string]*smallProbe

	pf           *pathfinder.Client
	routes       RouteStore
	quoteOnChain Quoter
	slippage     decimal.Decimal
	now          func() time.Time
}

func New(pf *pathfinder.Client, routes RouteStore, slippagePercent decimal.Decimal) *Service {
	return &Service{
		cache:        make(map[string]*ReturnEstimate),
		smallCache:   make(map[string]*smallProbe),
		pf:           pf,
		routes:       routes,
		quoteOnChain: quoteOnChain,
		slippage:     slippagePercent,
		now:          time.Now,
	}
}

func pow10(decimals int) decimal.Decimal {
	return decimal.New(1, int32(decimals))
}

func cacheKey(fromToken, toToken types.Token, amount *big.Int, chainId int) string {
	return fromToken.Address + toToken.Address + amount.String() + strconv.Itoa(chainId)
}

// GetExpectedReturn quotes amount (smallest units) of fromToken into
// toToken on the given chain. Mainnet goes through the pathfinder and
// persists the winning route; other chains call the aggregator contract and
// cache the result. Within the cache window the same object is returned.
func (s *Service) GetExpectedReturn(
	ctx context.Context,
	fromToken types.Token,
	toToken types.Token,
	amount *big.Int,
	chainId int,
) (*ReturnEstimate, error) {
	key := cacheKey(fromToken, toToken, amount, chainId)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok && s.now().Sub(cached.CacheTimestamp) < cacheWindow {
		s.mu.Unlock()
		log.Printf("Using expectedReturn cache: %s", key)
		return cached, nil
	}
	s.mu.Unlock()

	if chainId == 1 {
		originAmount := decimal.NewFromBigInt(amount, 0).Div(pow10(fromToken.Decimals))
		quote, err := s.pf.GetQuote(ctx, fromToken.Symbol, toToken.Symbol, originAmount, chainId)
		if err != nil {
			return nil, err
		}

		returnAmount := quote.DestAmount.Mul(pow10(toToken.Decimals)).BigInt()
		if err := s.routes.SetRoute(quote.Route); err != nil {
			return nil, fmt.Errorf("error persisting pathfinder route: %s", err.Error())
		}

		// pathfinder quotes are not memoized, the route must stay fresh
		return &ReturnEstimate{ReturnAmount: returnAmount, Route: quote.Route}, nil
	}

	if err := s.routes.ClearRoute(); err != nil {
		log.Printf("Error clearing pathfinder route: %s", err.Error())
	}

	result, err := s.quoteOnChain(ctx, chainId, fromToken, toToken, amount)
	if err != nil {
		return nil, err
	}

	result.CacheTimestamp = s.now()
	s.mu.Lock()
	s.cache[key] = result
	s.mu.Unlock()

	return result, nil
}

type MinReturnResult struct {
	MinReturn      *big.Int
	ExpectedAmount *big.Int
	Distribution   []*big.Int
}

// CalculateMinReturn applies the configured slippage tolerance to the
// expected return, flooring to smallest units.
func (s *Service) CalculateMinReturn(
	ctx context.Context,
	fromToken types.Token,
	toToken types.Token,
	amount *big.Int,
	chainId int,
) (*MinReturnResult, error) {
	actual, err := s.GetExpectedReturn(ctx, fromToken, toToken, amount, chainId)
	if err != nil {
		return nil, err
	}

	y := decimal.NewFromInt(1).Sub(s.slippage.Div(decimal.NewFromInt(100)))
	minReturn := decimal.NewFromBigInt(actual.ReturnAmount, 0).Mul(y).BigInt()

	return &MinReturnResult{
		MinReturn:      minReturn,
		ExpectedAmount: actual.ReturnAmount,
		Distribution:   actual.Distribution,
	}, nil
}

// CalculatePriceImpact compares the marginal rate of a tiny probe trade to
// the requested trade's rate, returned as a fraction with 6 decimal places.
func (s *Service) CalculatePriceImpact(
	ctx context.Context,
	fromToken types.Token,
	toToken types.Token,
	amount *big.Int,
	chainId int,
) (string, error) {
	probe, err := s.findSmallResult(ctx, fromToken, toToken, 1, chainId)
	if err != nil {
		return "", err
	}

	actual, err := s.GetExpectedReturn(ctx, fromToken, toToken, amount, chainId)
	if err != nil {
		return "", err
	}

	x := decimal.NewFromBigInt(probe.estimate.ReturnAmount, 0).Div(decimal.NewFromBigInt(probe.amount, 0))
	y := decimal.NewFromBigInt(actual.ReturnAmount, 0).Div(decimal.NewFromBigInt(amount, 0))

	return x.Sub(y).Abs().Div(x).StringFixed(6), nil
}

// findSmallResult probes with growing powers of ten until the quote clears
// the dust threshold, then remembers the probe per pair.
func (s *Service) findSmallResult(
	ctx context.Context,
	fromToken types.Token,
	toToken types.Token,
	factor int,
	chainId int,
) (*smallProbe, error) {
	pairKey := fromToken.Symbol + "-" + toToken.Symbol

	s.mu.Lock()
	if probe, ok := s.smallCache[pairKey]; ok {
		s.mu.Unlock()
		return probe, nil
	}
	s.mu.Unlock()

	smallAmount := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(factor*3)), nil)

	smallResult, err := s.GetExpectedReturn(ctx, fromToken, toToken, smallAmount, chainId)
	if err != nil {
		return nil, err
	}

	if smallResult.ReturnAmount.Cmp(big.NewInt(100)) > 0 {
		probe := &smallProbe{estimate: smallResult, amount: smallAmount}
		s.mu.Lock()
		s.smallCache[pairKey] = probe
		s.mu.Unlock()
		return probe, nil
	}

	return s.findSmallResult(ctx, fromToken, toToken, factor+1, chainId)
}
