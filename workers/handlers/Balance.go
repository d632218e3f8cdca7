package handlers

import (
	"log"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"goswapbridge/EVMRPC"
	"goswapbridge/config"
	"goswapbridge/contracts"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi"
)

type BalanceResponse struct {
	Status  string `json:"status"`
	ChainID int    `json:"chainId"`
	Token   string `json:"token"`
	Address string `json:"address"`
	Balance string `json:"balance"` // smallest units, decimal string
}

// Balance reads an ERC20 or native balance on the given chain. The token
// path segment is a contract address, or the native-asset sentinel for the
// chain's own coin.
func Balance(w http.ResponseWriter, r *http.Request) {
	chainId, err := strconv.Atoi(chi.URLParam(r, "chainId"))
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Chain id must be an integer",
		}, http.StatusBadRequest)
		return
	}
	if _, ok := config.Networks[chainId]; !ok {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "chainId",
			Message: "Unsupported chain",
		}, http.StatusBadRequest)
		return
	}

	token := chi.URLParam(r, "token")
	address := chi.URLParam(r, "address")

	if err := ethav.Validate(common.HexToAddress(address).Hex()); err != nil {
		log.Printf("Error validating address '%s': %s\n", address, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "address",
			Message: "No ethereum address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	balance, err := EVMRPC.WithClient(chainId, func(client *ethclient.Client) (*big.Int, error) {
		if strings.EqualFold(token, config.NATIVE_ASSET) {
			return client.BalanceAt(r.Context(), common.HexToAddress(address), nil)
		}

		erc20, err := contracts.NewERC20(common.HexToAddress(token), client)
		if err != nil {
			return nil, err
		}
		return erc20.BalanceOf(nil, common.HexToAddress(address))
	})
	if err != nil {
		log.Printf("Error reading balance on chain %d: %s", chainId, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot read balance",
		}, http.StatusInternalServerError)
		return
	}

	responseJSON(w, &BalanceResponse{
		Status:  "ok",
		ChainID: chainId,
		Token:   token,
		Address: address,
		Balance: balance.String(),
	}, http.StatusOK)
}
