package bridges

import (
	"strings"

	"goswapbridge/types"
)

// hard-code for now; the bridge SDKs expose supported-chain and token lists
// per network pair, integrate later
var hopSupportedChains = []int{1, 137, 100, 10, 42161}

var hopSupportedBridgeTokens = []string{"USDC", "USDT", "DAI"}

var connextSupportedChains = []int{1, 56, 137, 100, 250, 42161, 43114}

var cbridgeSupportedChains = []int{1, 10, 56, 137, 250, 42161, 43114}

var cbridgeSupportedBridgeTokens = []string{"USDC", "USDT", "DAI"}

func chainsSupported(set []int, chainIds ...int) bool {
	for _, id := range chainIds {
		found := false
		for _, s := range set {
			if s == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func tokensSupported(set []string, symbols ...string) bool {
	for _, symbol := range symbols {
		found := false
		for _, s := range set {
			if strings.EqualFold(s, symbol) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SupportedBridges returns the bridges able to serve the pair, in display
// order: cbridge, hop, connext. hop and cbridge only move the same asset
// between chains and only whitelisted symbols; connext has no symbol
// restriction since it performs its own swap legs.
func SupportedBridges(to types.Token, toChainId int, from types.Token, fromChainId int) []types.BridgeKey {
	var eligible []types.BridgeKey
	sameSymbol := strings.EqualFold(to.Symbol, from.Symbol)

	if chainsSupported(cbridgeSupportedChains, toChainId, fromChainId) &&
		sameSymbol && tokensSupported(cbridgeSupportedBridgeTokens, to.Symbol, from.Symbol) {
		eligible = append(eligible, types.BridgeCBridge)
	}

	if chainsSupported(hopSupportedChains, toChainId, fromChainId) &&
		sameSymbol && tokensSupported(hopSupportedBridgeTokens, to.Symbol, from.Symbol) {
		eligible = append(eligible, types.BridgeHop)
	}

	if chainsSupported(connextSupportedChains, toChainId, fromChainId) {
		eligible = append(eligible, types.BridgeConnext)
	}

	return eligible
}
