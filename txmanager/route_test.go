package txmanager

import (
	"math/big"
	"testing"

	"goswapbridge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeIntent(bridge types.BridgeKey, from, to types.Token) *types.TransferIntent {
	return &types.TransferIntent{
		TransactionID:    "tx-1",
		Bridge:           bridge,
		SendingChainID:   1,
		ReceivingChainID: 137,
		SendingAsset:     from,
		ReceivingAsset:   to,
		Amount:           big.NewInt(2500000),
		Estimate: &types.Estimate{
			HasMinBridgeAmount: true,
			ReturnAmount:       big.NewInt(2490000),
		},
	}
}

func hopTypes(route []types.RouteHop) []string {
	out := make([]string, 0, len(route))
	for _, h := range route {
		out = append(out, h.Type)
	}
	return out
}

func TestBuildRouteHop(t *testing.T) {
	usdc := types.Token{Address: "0x01", Symbol: "USDC", Decimals: 6}

	route := BuildRoute(routeIntent(types.BridgeHop, usdc, usdc))

	require.Equal(t, []string{
		types.RouteHopTokenNetwork,
		types.RouteHopBridge,
		types.RouteHopTokenNetwork,
		types.RouteHopAdditional,
	}, hopTypes(route))

	assert.Equal(t, "2.5", route[0].Amount)
	assert.Equal(t, 1, route[0].Network)
	assert.Equal(t, "Hop", route[1].Name)
	assert.Equal(t, "0.05", route[1].Fee)
	assert.Equal(t, "2.49", route[2].Amount)
	assert.Equal(t, 137, route[2].Network)
	assert.Equal(t, "Low", route[3].Fee)
	assert.Equal(t, "-5 Minutes", route[3].Duration)
}

func TestBuildRouteConnextGenericToken(t *testing.T) {
	dai := types.Token{Address: "0x01", Symbol: "DAI", Decimals: 18}
	usdc := types.Token{Address: "0x02", Symbol: "USDC", Decimals: 6}

	intent := routeIntent(types.BridgeConnext, dai, usdc)
	intent.Amount = big.NewInt(0).Mul(big.NewInt(3), big.NewInt(1e18))
	route := BuildRoute(intent)

	// generic-token sends go through canonical USDC: extra swap leg in
	require.Equal(t, []string{
		types.RouteHopTokenNetwork,
		types.RouteHopSwap,
		types.RouteHopTokenNetwork,
		types.RouteHopBridge,
		types.RouteHopTokenNetwork,
		types.RouteHopAdditional,
	}, hopTypes(route))

	assert.Equal(t, "0.39", route[1].Fee)
	assert.Equal(t, "USDC", route[2].Token.Symbol)
	assert.Equal(t, "Connext", route[3].Name)
	assert.Equal(t, "High", route[5].Fee)
}

func TestBuildRouteConnextSwapOut(t *testing.T) {
	weth := types.Token{Address: "0x01", Symbol: "WETH", Decimals: 18}
	dai := types.Token{Address: "0x02", Symbol: "DAI", Decimals: 18}

	intent := routeIntent(types.BridgeConnext, weth, dai)
	intent.Amount = big.NewInt(1e18)
	route := BuildRoute(intent)

	// WETH is not generic, so the bridge carries it directly and swaps on
	// the destination side
	require.Equal(t, []string{
		types.RouteHopTokenNetwork,
		types.RouteHopBridge,
		types.RouteHopSwap,
		types.RouteHopTokenNetwork,
		types.RouteHopAdditional,
	}, hopTypes(route))

	assert.Equal(t, "0.39", route[2].Fee)
}

func TestBuildRouteWithoutEstimate(t *testing.T) {
	usdc := types.Token{Address: "0x01", Symbol: "USDC", Decimals: 6}

	intent := routeIntent(types.BridgeHop, usdc, usdc)
	intent.Estimate = nil
	route := BuildRoute(intent)

	// destination amount falls back to zero until the quote resolves
	assert.Equal(t, "0", route[2].Amount)
}
