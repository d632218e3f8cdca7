package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// The aggregator contract exists in four ABI variants. getExpectedReturn is
// identical everywhere; swap differs: Polygon takes an extra expectedReturn
// param, Moonriver takes an explicit recipient.
const oneSplitABI = `[
	{"constant":true,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"parts","type":"uint256"},{"name":"flags","type":"uint256"}],"name":"getExpectedReturn","outputs":[{"name":"returnAmount","type":"uint256"},{"name":"distribution","type":"uint256[]"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"minReturn","type":"uint256"},{"name":"distribution","type":"uint256[]"},{"name":"flags","type":"uint256"}],"name":"swap","outputs":[{"name":"returnAmount","type":"uint256"}],"payable":true,"stateMutability":"payable","type":"function"}
]`

const polygonABI = `[
	{"constant":true,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"parts","type":"uint256"},{"name":"flags","type":"uint256"}],"name":"getExpectedReturn","outputs":[{"name":"returnAmount","type":"uint256"},{"name":"distribution","type":"uint256[]"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"expectedReturn","type":"uint256"},{"name":"minReturn","type":"uint256"},{"name":"distribution","type":"uint256[]"},{"name":"flags","type":"uint256"}],"name":"swap","outputs":[{"name":"returnAmount","type":"uint256"}],"payable":true,"stateMutability":"payable","type":"function"}
]`

const moonriverABI = `[
	{"constant":true,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"parts","type":"uint256"},{"name":"flags","type":"uint256"}],"name":"getExpectedReturn","outputs":[{"name":"returnAmount","type":"uint256"},{"name":"distribution","type":"uint256[]"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"fromToken","type":"address"},{"name":"destToken","type":"address"},{"name":"amount","type":"uint256"},{"name":"minReturn","type":"uint256"},{"name":"recipient","type":"address"},{"name":"distribution","type":"uint256[]"},{"name":"flags","type":"uint256"}],"name":"swap","outputs":[{"name":"returnAmount","type":"uint256"}],"payable":true,"stateMutability":"payable","type":"function"}
]`

// xDai deployment shares the OneSplit swap signature
const xdaiABI = oneSplitABI

var aggregatorABIs = map[string]string{
	"oneSplit":  oneSplitABI,
	"polygon":   polygonABI,
	"moonriver": moonriverABI,
	"xdai":      xdaiABI,
}

type ExpectedReturn struct {
	ReturnAmount *big.Int
	Distribution []*big.Int
}

type Aggregator struct {
	variant  string
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

func NewAggregator(address common.Address, variant string, backend bind.ContractBackend) (*Aggregator, error) {
	abiJSON, ok := aggregatorABIs[variant]
	if !ok {
		return nil, fmt.Errorf("unknown aggregator ABI variant: %s", variant)
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("error parsing aggregator ABI: %s", err.Error())
	}

	return &Aggregator{
		variant:  variant,
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (a *Aggregator) Address() common.Address {
	return a.address
}

func (a *Aggregator) GetExpectedReturn(
	opts *bind.CallOpts,
	fromToken common.Address,
	destToken common.Address,
	amount *big.Int,
	parts *big.Int,
	flags *big.Int,
) (ExpectedReturn, error) {
	var out []interface{}
	err := a.contract.Call(opts, &out, "getExpectedReturn", fromToken, destToken, amount, parts, flags)
	if err != nil {
		return ExpectedReturn{}, err
	}

	return ExpectedReturn{
		ReturnAmount: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Distribution: *abi.ConvertType(out[1], new([]*big.Int)).(*[]*big.Int),
	}, nil
}

// SwapParams carries the superset of arguments across ABI variants;
// ExpectedReturn is only consumed by the Polygon variant, Recipient only by
// the Moonriver variant.
type SwapParams struct {
	FromToken      common.Address
	DestToken      common.Address
	Amount         *big.Int
	ExpectedReturn *big.Int
	MinReturn      *big.Int
	Recipient      common.Address
	Distribution   []*big.Int
	Flags          *big.Int
}

func (a *Aggregator) Swap(opts *bind.TransactOpts, p SwapParams) (*ethtypes.Transaction, error) {
	switch a.variant {
	case "polygon":
		return a.contract.Transact(opts, "swap",
			p.FromToken, p.DestToken, p.Amount, p.ExpectedReturn, p.MinReturn, p.Distribution, p.Flags)
	case "moonriver":
		return a.contract.Transact(opts, "swap",
			p.FromToken, p.DestToken, p.Amount, p.MinReturn, p.Recipient, p.Distribution, p.Flags)
	default:
		return a.contract.Transact(opts, "swap",
			p.FromToken, p.DestToken, p.Amount, p.MinReturn, p.Distribution, p.Flags)
	}
}
