package bridges

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"goswapbridge/EVMRPC"
	"goswapbridge/config"
	"goswapbridge/contracts"
	"goswapbridge/types"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// depositFunds moves the sending asset from the service wallet into a
// bridge contract on the source chain: an ERC20 transfer, or a plain value
// transfer for the native asset.
func depositFunds(ctx context.Context, chainId int, bridgeContract string, token types.Token, amount *big.Int) (*types.TransferHandle, error) {
	txHash, err := EVMRPC.WithClient(chainId, func(client *ethclient.Client) (string, error) {
		if token.Native {
			return sendNative(ctx, client, chainId, bridgeContract, amount)
		}

		auth, err := EVMRPC.NewKeyedTransactor(ctx, client, chainId)
		if err != nil {
			return "", err
		}

		erc20, err := contracts.NewERC20(common.HexToAddress(token.Address), client)
		if err != nil {
			return "", fmt.Errorf("error instantiating contract: %s", err)
		}

		tx, err := erc20.Transfer(auth, common.HexToAddress(bridgeContract), amount)
		if err != nil {
			return "", fmt.Errorf("error calling transfer method: %s", err)
		}

		return tx.Hash().Hex(), nil
	})
	if err != nil {
		log.Printf("Error depositing %s %s into bridge contract %s: %v", amount.String(), token.Symbol, bridgeContract, err)
		return nil, err
	}

	return &types.TransferHandle{TxHash: txHash, ChainID: chainId}, nil
}

func sendNative(ctx context.Context, client *ethclient.Client, chainId int, to string, amount *big.Int) (string, error) {
	nonce, err := client.PendingNonceAt(ctx, common.HexToAddress(config.Config.EVM.PublicAddress))
	if err != nil {
		return "", fmt.Errorf("error getting nonce for wallet: %s", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting suggested gas price: %s", err)
	}

	privateKey, err := crypto.HexToECDSA(config.Config.EVM.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("error instantiating private key: %s", err)
	}

	toAddr := common.HexToAddress(to)
	tx, err := ethtypes.SignNewTx(
		privateKey,
		ethtypes.LatestSignerForChainID(big.NewInt(int64(chainId))),
		&ethtypes.LegacyTx{
			Nonce:    nonce,
			To:       &toAddr,
			Value:    amount,
			Gas:      21000,
			GasPrice: gasPrice,
		},
	)
	if err != nil {
		return "", fmt.Errorf("error signing native transfer: %s", err)
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}
