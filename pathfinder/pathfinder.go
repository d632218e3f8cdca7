// Package pathfinder is the client for the off-chain quoting service used
// on Ethereum mainnet. The service fans a quote request out to 1inch and
// Paraswap and answers with the winning route plus its output amount.
package pathfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type Quote struct {
	DestAmount decimal.Decimal `json:"destAmount"`
	Route      string          `json:"route"` // oneinch | paraswap
}

type Allowance struct {
	Allowance string `json:"allowance"`
}

// TxRequest is an unsigned transaction prepared by the quoting service; the
// caller signs and submits it.
type TxRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasLimit uint64 `json:"gasLimit"`
}

func (c *Client) sendGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling pathfinder %s: %s", path, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pathfinder %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) sendPost(ctx context.Context, path string, params interface{}, out interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.baseURL, path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling pathfinder %s: %s", path, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pathfinder %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// GetQuote asks for the best route for srcAmount (token units, not wei) of
// srcToken into destToken.
func (c *Client) GetQuote(ctx context.Context, srcToken, destToken string, srcAmount decimal.Decimal, chainId int) (*Quote, error) {
	params := url.Values{}
	params.Set("chainId", fmt.Sprintf("%d", chainId))
	params.Set("srcToken", srcToken)
	params.Set("destToken", destToken)
	params.Set("srcAmount", srcAmount.String())

	var quote Quote
	if err := c.sendGet(ctx, "quote", params, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) GetAllowance(ctx context.Context, userAddress, tokenAddress, route string, chainId int) (*Allowance, error) {
	params := url.Values{}
	params.Set("route", route)
	params.Set("chainId", fmt.Sprintf("%d", chainId))
	params.Set("userAddress", userAddress)
	params.Set("tokenAddress", tokenAddress)

	var allowance Allowance
	if err := c.sendGet(ctx, "allowance", params, &allowance); err != nil {
		return nil, err
	}
	return &allowance, nil
}

func (c *Client) GetApproveTx(ctx context.Context, tokenAddress, amount, route, userAddress string, chainId int) (*TxRequest, error) {
	params := url.Values{}
	params.Set("route", route)
	params.Set("chainId", fmt.Sprintf("%d", chainId))
	params.Set("tokenAddress", tokenAddress)
	params.Set("amount", amount)
	params.Set("userAddress", userAddress)

	var tx TxRequest
	if err := c.sendGet(ctx, "approve", params, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

type SwapRequest struct {
	ChainID   int    `json:"chainId"`
	Route     string `json:"route"`
	SrcToken  string `json:"srcToken"`
	DestToken string `json:"destToken"`
	SrcAmount string `json:"srcAmount"`
	UserAddr  string `json:"userAddress"`
}

func (c *Client) GetSwapTx(ctx context.Context, req SwapRequest) (*TxRequest, error) {
	var tx TxRequest
	if err := c.sendPost(ctx, "swap", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
