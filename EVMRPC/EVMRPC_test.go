package EVMRPC

import (
	"testing"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientUnknownChain(t *testing.T) {
	assert.Nil(t, GetClient(424242, 0))
}

func TestWithClientUnknownChainErrors(t *testing.T) {
	called := false
	res, err := WithClient(424242, func(client *ethclient.Client) (int, error) {
		called = true
		return 7, nil
	})

	// a chain with no endpoints must surface an error, never a zero value
	require.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, res)
}
