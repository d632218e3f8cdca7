package swap

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"goswapbridge/EVMRPC"
	"goswapbridge/config"
	"goswapbridge/contracts"
	"goswapbridge/pathfinder"
	"goswapbridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// default on-chain quoter: the network aggregator's getExpectedReturn view
// function (flags 0, split parts from network config)
func quoteOnChain(ctx context.Context, chainId int, fromToken, toToken types.Token, amount *big.Int) (*ReturnEstimate, error) {
	network, ok := config.Networks[chainId]
	if !ok {
		return nil, fmt.Errorf("unknown network: %d", chainId)
	}

	return EVMRPC.WithClient(chainId, func(client *ethclient.Client) (*ReturnEstimate, error) {
		aggregator, err := contracts.NewAggregator(common.HexToAddress(network.AggregatorAddress), network.ABI, client)
		if err != nil {
			return nil, err
		}

		ret, err := aggregator.GetExpectedReturn(
			&bind.CallOpts{Context: ctx},
			common.HexToAddress(fromToken.Address),
			common.HexToAddress(toToken.Address),
			amount,
			big.NewInt(int64(network.DesiredParts)),
			big.NewInt(0),
		)
		if err != nil {
			return nil, err
		}

		return &ReturnEstimate{ReturnAmount: ret.ReturnAmount, Distribution: ret.Distribution}, nil
	})
}

// Swap executes fromToken -> toToken. If the last quote came from the
// pathfinder (oneinch/paraswap route persisted) the prepared transaction is
// fetched from there; otherwise the network aggregator's swap is called
// with the variant-specific argument list.
func (s *Service) Swap(ctx context.Context, fromToken, toToken types.Token, amount *big.Int, chainId int) (string, error) {
	route, err := s.routes.Route()
	if err != nil {
		return "", err
	}

	if route == "oneinch" || route == "paraswap" {
		originAmount := decimal.NewFromBigInt(amount, 0).Div(pow10(fromToken.Decimals))
		tx, err := s.pf.GetSwapTx(ctx, pathfinder.SwapRequest{
			ChainID:   chainId,
			Route:     route,
			SrcToken:  fromToken.Symbol,
			DestToken: toToken.Symbol,
			SrcAmount: originAmount.String(),
			UserAddr:  config.Config.EVM.PublicAddress,
		})
		if err != nil {
			return "", err
		}
		return sendPreparedTx(ctx, chainId, tx)
	}

	log.Printf("Calling SWAP() with %s to %s of %s", fromToken.Symbol, toToken.Symbol, amount.String())

	minReturn, err := s.CalculateMinReturn(ctx, fromToken, toToken, amount, chainId)
	if err != nil {
		return "", err
	}

	network := config.Networks[chainId]

	return EVMRPC.WithClient(chainId, func(client *ethclient.Client) (string, error) {
		aggregator, err := contracts.NewAggregator(common.HexToAddress(network.AggregatorAddress), network.ABI, client)
		if err != nil {
			return "", err
		}

		auth, err := EVMRPC.NewKeyedTransactor(ctx, client, chainId)
		if err != nil {
			return "", err
		}
		if fromToken.Native {
			auth.Value = amount
		}

		tx, err := aggregator.Swap(auth, contracts.SwapParams{
			FromToken:      common.HexToAddress(fromToken.Address),
			DestToken:      common.HexToAddress(toToken.Address),
			Amount:         amount,
			ExpectedReturn: minReturn.ExpectedAmount,
			MinReturn:      minReturn.MinReturn,
			Recipient:      common.HexToAddress(config.Config.EVM.PublicAddress),
			Distribution:   minReturn.Distribution,
			Flags:          big.NewInt(0),
		})
		if err != nil {
			return "", err
		}

		return tx.Hash().Hex(), nil
	})
}

// sendPreparedTx signs a pathfinder-prepared transaction with the service
// key and submits it.
func sendPreparedTx(ctx context.Context, chainId int, txReq *pathfinder.TxRequest) (string, error) {
	return EVMRPC.WithClient(chainId, func(client *ethclient.Client) (string, error) {
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

		data, err := hexutil.Decode(txReq.Data)
		if err != nil {
			return "", fmt.Errorf("error decoding prepared tx data: %s", err)
		}

		value := big.NewInt(0)
		if txReq.Value != "" {
			if _, ok := value.SetString(txReq.Value, 10); !ok {
				return "", fmt.Errorf("error parsing prepared tx value: %s", txReq.Value)
			}
		}

		gasLimit := txReq.GasLimit
		if gasLimit == 0 {
			gasLimit = 500000
		}

		to := common.HexToAddress(txReq.To)
		tx, err := ethtypes.SignNewTx(
			privateKey,
			ethtypes.LatestSignerForChainID(big.NewInt(int64(chainId))),
			&ethtypes.LegacyTx{
				Nonce:    nonce,
				To:       &to,
				Value:    value,
				Gas:      gasLimit,
				GasPrice: gasPrice,
				Data:     data,
			},
		)
		if err != nil {
			return "", fmt.Errorf("error signing prepared tx: %s", err)
		}

		if err := client.SendTransaction(ctx, tx); err != nil {
			return "", err
		}

		return tx.Hash().Hex(), nil
	})
}
