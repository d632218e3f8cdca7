package txmanager

import (
	"math/big"
	"strings"

	"goswapbridge/types"

	"github.com/shopspring/decimal"
)

// tokens every supported bridge can carry without an extra swap leg
var genericBridgeTokens = []string{"USDC", "USDT", "DAI"}

// canonical USDC per chain, the default asset a connext route swaps through
var usdcByChain = map[int]types.Token{
	1:     {Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
	10:    {Address: "0x7F5c764cBc14f9669B88837ca1490cCa17c31607", Symbol: "USDC", Decimals: 6},
	56:    {Address: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Symbol: "USDC", Decimals: 18},
	100:   {Address: "0xDDAfbb505ad214D7b80b1f830fcCc89B60fb7A83", Symbol: "USDC", Decimals: 6},
	137:   {Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Symbol: "USDC", Decimals: 6},
	250:   {Address: "0x04068DA6C83AFCFA0e13ba15A6696662335D5B75", Symbol: "USDC", Decimals: 6},
	42161: {Address: "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8", Symbol: "USDC", Decimals: 6},
	43114: {Address: "0xA7D7079b0FEaD91F3e65f86E8915Cb59c1a4C664", Symbol: "USDC", Decimals: 6},
}

// BuildRoute renders an intent as the hop sequence shown to the user: a
// token-network hop on each end, the bridge leg in the middle, swap legs
// around it where connext has to go through a canonical asset, and a
// trailing summary hop. Display fees are fixed per leg kind; the real
// numbers live in the estimate.
func BuildRoute(intent *types.TransferIntent) []types.RouteHop {
	from := intent.SendingAsset
	to := intent.ReceivingAsset

	route := []types.RouteHop{{
		Type:    types.RouteHopTokenNetwork,
		Token:   &from,
		Amount:  formatUnits(intent.Amount, from.Decimals),
		Network: intent.SendingChainID,
	}}

	targetBridgeToken := "USDC"
	if intent.Bridge == types.BridgeConnext && tokenListed(from.Symbol, genericBridgeTokens) {
		usdc, ok := usdcByChain[intent.SendingChainID]
		if !ok {
			usdc = types.Token{Symbol: "USDC", Decimals: 6}
		}
		route = append(route,
			types.RouteHop{Type: types.RouteHopSwap, Fee: "0.39"},
			types.RouteHop{
				Type:    types.RouteHopTokenNetwork,
				Token:   &usdc,
				Amount:  formatUnits(intent.Amount, from.Decimals),
				Network: intent.SendingChainID,
			},
		)
	} else {
		targetBridgeToken = strings.ToUpper(from.Symbol)
	}

	route = append(route, types.RouteHop{
		Type: types.RouteHopBridge,
		Name: capitalize(string(intent.Bridge)),
		Fee:  "0.05",
	})

	if intent.Bridge == types.BridgeConnext && targetBridgeToken != strings.ToUpper(to.Symbol) {
		route = append(route, types.RouteHop{Type: types.RouteHopSwap, Fee: "0.39"})
	}

	returnAmount := big.NewInt(0)
	if intent.Estimate != nil && intent.Estimate.ReturnAmount != nil {
		returnAmount = intent.Estimate.ReturnAmount
	}

	additionalFee := "Low"
	if intent.Bridge == types.BridgeConnext {
		additionalFee = "High"
	}

	return append(route,
		types.RouteHop{
			Type:    types.RouteHopTokenNetwork,
			Token:   &to,
			Amount:  formatUnits(returnAmount, to.Decimals),
			Network: intent.ReceivingChainID,
		},
		types.RouteHop{
			Type:     types.RouteHopAdditional,
			Fee:      additionalFee,
			Duration: "-5 Minutes",
		},
	)
}

func tokenListed(symbol string, list []string) bool {
	upper := strings.ToUpper(symbol)
	for _, s := range list {
		if s == upper {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatUnits renders a smallest-units amount in whole-token units.
func formatUnits(amount *big.Int, decimals int) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
