package swap

import (
	"context"
	"log"
	"math/big"

	"goswapbridge/EVMRPC"
	"goswapbridge/config"
	"goswapbridge/contracts"
	"goswapbridge/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	ApprovalApproved    = "APPROVED"
	ApprovalNotApproved = "NOT_APPROVED"
)

// Allowance reads how much of token the aggregator (or the pathfinder
// route's spender) may pull from owner. Zero for native assets.
func (s *Service) Allowance(ctx context.Context, token types.Token, owner string, chainId int) (*big.Int, error) {
	if token.Native {
		log.Printf("Not calling ALLOWANCE() on native token %s", token.Symbol)
		return big.NewInt(0), nil
	}

	route, err := s.routes.Route()
	if err != nil {
		return nil, err
	}

	if route == "oneinch" || route == "paraswap" {
		allowance, err := s.pf.GetAllowance(ctx, owner, token.Address, route, chainId)
		if err != nil {
			// treat an unreachable pathfinder as no allowance
			return big.NewInt(0), nil
		}
		value := big.NewInt(0)
		if _, ok := value.SetString(allowance.Allowance, 10); !ok {
			return big.NewInt(0), nil
		}
		return value, nil
	}

	log.Printf("Calling ALLOWANCE() with %s", token.Address)

	network := config.Networks[chainId]
	return EVMRPC.WithClient(chainId, func(client *ethclient.Client) (*big.Int, error) {
		erc20, err := contracts.NewERC20(common.HexToAddress(token.Address), client)
		if err != nil {
			return nil, err
		}
		return erc20.Allowance(
			&bind.CallOpts{Context: ctx},
			common.HexToAddress(owner),
			common.HexToAddress(network.AggregatorAddress),
		)
	})
}

// ApproveStatus reports whether the current allowance already covers
// amount. Native assets never need approval.
func (s *Service) ApproveStatus(ctx context.Context, token types.Token, owner string, amount *big.Int, chainId int) (string, error) {
	if token.Native {
		return ApprovalApproved, nil
	}

	allowance, err := s.Allowance(ctx, token, owner, chainId)
	if err != nil {
		return "", err
	}

	if allowance.Cmp(amount) >= 0 {
		return ApprovalApproved, nil
	}
	return ApprovalNotApproved, nil
}

// Approve grants the spender an allowance well above amount so repeated
// swaps skip re-approval.
func (s *Service) Approve(ctx context.Context, token types.Token, amount *big.Int, chainId int) (string, error) {
	// approve arbitrarily large number
	buffer := new(big.Int).Mul(big.NewInt(100000000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	value := new(big.Int).Add(amount, buffer)

	route, err := s.routes.Route()
	if err != nil {
		return "", err
	}

	if route == "oneinch" || route == "paraswap" {
		tx, err := s.pf.GetApproveTx(ctx, token.Address, value.String(), route, config.Config.EVM.PublicAddress, chainId)
		if err != nil {
			return "", err
		}
		return sendPreparedTx(ctx, chainId, tx)
	}

	log.Printf("Calling APPROVE() with %s %s", token.Address, value.String())

	network := config.Networks[chainId]
	return EVMRPC.WithClient(chainId, func(client *ethclient.Client) (string, error) {
		erc20, err := contracts.NewERC20(common.HexToAddress(token.Address), client)
		if err != nil {
			return "", err
		}

		auth, err := EVMRPC.NewKeyedTransactor(ctx, client, chainId)
		if err != nil {
			return "", err
		}

		tx, err := erc20.Approve(auth, common.HexToAddress(network.AggregatorAddress), value)
		if err != nil {
			return "", err
		}
		return tx.Hash().Hex(), nil
	})
}
