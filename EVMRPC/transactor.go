package EVMRPC

import (
	"context"
	"fmt"
	"math/big"

	"goswapbridge/config"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// NewKeyedTransactor prepares transact opts for the service signer on the
// given chain: pending nonce, suggested gas price (doubled off mainnet,
// decentralized L2 nodes underquote), fixed gas limit.
func NewKeyedTransactor(ctx context.Context, client *ethclient.Client, chainId int) (*bind.TransactOpts, error) {
	nonce, err := client.PendingNonceAt(ctx, common.HexToAddress(config.Config.EVM.PublicAddress))
	if err != nil {
		return nil, fmt.Errorf("error getting nonce for wallet: %s", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting suggested gas price: %s", err)
	}

	privateKey, err := crypto.HexToECDSA(config.Config.EVM.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("error instantiating private key: %s", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(int64(chainId)))
	if err != nil {
		return nil, fmt.Errorf("error instantiating contract call: %s", err)
	}

	auth.Nonce = big.NewInt(int64(nonce))
	auth.Value = big.NewInt(0)
	auth.GasLimit = uint64(500000)
	auth.Context = ctx
	if chainId == 1 {
		auth.GasPrice = gasPrice
	} else {
		auth.GasPrice = gasPrice.Mul(gasPrice, big.NewInt(2))
	}

	return auth, nil
}
