package EVMRPC

import (
	"fmt"
	"log"

	"goswapbridge/config"

	"github.com/ethereum/go-ethereum/ethclient"
)

// WithClient runs f against the network's RPC endpoints, retrying up to
// config.EVM_RETRIES attempts and cycling through the endpoint list, until
// one attempt both connects and serves the call.
func WithClient[T any](chainId int, f func(client *ethclient.Client) (T, error)) (res T, err error) {
	for attempt := 0; attempt < config.EVM_RETRIES; attempt++ {
		client := GetClient(chainId, attempt)
		if client == nil {
			continue
		}

		res, err = f(client)
		client.Close()
		if err == nil {
			return
		}
	}

	if err == nil {
		err = fmt.Errorf("no usable RPC endpoint for chain %d", chainId)
	}
	return
}

// GetClient dials the attempt-th RPC endpoint of the network, wrapping
// around the list. Callers own closing the client.
func GetClient(chainId int, attempt int) *ethclient.Client {
	urls := config.Networks[chainId].RPCList
	if len(urls) == 0 {
		return nil
	}

	url := urls[attempt%len(urls)]
	client, err := ethclient.Dial(url)
	if err != nil {
		log.Println(fmt.Sprintf("Error connecting to %s: %s", url, err.Error()))
		return nil
	}
	return client
}
