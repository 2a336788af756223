// Package stateapi reads dynamic venue state from the indexer service. Pool
// snapshots are cached with a short TTL so a burst of quotes for one pair
// costs a single upstream call.
package stateapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/cache"
	"github.com/hxuan190/convert-engine/internal/chain"
)

type Client struct {
	baseURL string
	http    *http.Client

	prismCache *cache.TTL[string, *chain.WeightedPoolState]
	novaCache  *cache.TTL[string, *chain.NovaPoolState]
}

func NewClient(baseURL string, ttl time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 5 * time.Second},
		prismCache: cache.NewTTL[string, *chain.WeightedPoolState](ttl),
		novaCache:  cache.NewTTL[string, *chain.NovaPoolState](ttl),
	}
}

var _ chain.PoolStateFetcher = (*Client)(nil)
var _ chain.NovaStateFetcher = (*Client)(nil)
var _ chain.StableQuoter = (*Client)(nil)

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("state api: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("state api: %s returned %d", path, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("state api: decode %s: %w", path, err)
	}
	return nil
}

type weightedPoolPayload struct {
	PoolID   string    `json:"poolId"`
	Tokens   []string  `json:"tokens"`
	Balances []string  `json:"balances"`
	Decimals []uint8   `json:"decimals"`
	Weights  []float64 `json:"weights"`
	SwapFee  float64   `json:"swapFee"`
}

func (c *Client) WeightedPoolState(ctx context.Context, chainID uint64, poolID string) (*chain.WeightedPoolState, error) {
	key := fmt.Sprintf("%d|%s", chainID, poolID)
	if state, ok := c.prismCache.Get(key); ok {
		return state, nil
	}

	var payload weightedPoolPayload
	q := url.Values{}
	q.Set("chainId", fmt.Sprintf("%d", chainID))
	q.Set("poolId", poolID)
	if err := c.get(ctx, "/v1/prism/pool", q, &payload); err != nil {
		return nil, err
	}
	if len(payload.Tokens) != len(payload.Balances) || len(payload.Tokens) != len(payload.Weights) {
		return nil, errors.New("state api: misaligned pool arrays")
	}

	state := &chain.WeightedPoolState{
		PoolID:   payload.PoolID,
		Tokens:   make([]common.Address, len(payload.Tokens)),
		Balances: make([]*big.Int, len(payload.Balances)),
		Decimals: payload.Decimals,
		Weights:  payload.Weights,
		SwapFee:  payload.SwapFee,
	}
	for i, raw := range payload.Tokens {
		state.Tokens[i] = common.HexToAddress(raw)
	}
	for i, raw := range payload.Balances {
		b, err := parseBig(raw)
		if err != nil {
			return nil, fmt.Errorf("state api: balance %d: %w", i, err)
		}
		state.Balances[i] = b
	}

	c.prismCache.Set(key, state)
	return state, nil
}

type novaPoolPayload struct {
	UsdSupply string `json:"usdSupply"`
	TargetUsd string `json:"targetUsd"`
	NlpPrice  string `json:"nlpPrice"`
}

func (c *Client) PoolComposition(ctx context.Context, chainID uint64, token common.Address) (*chain.NovaPoolState, error) {
	key := fmt.Sprintf("%d|%s", chainID, token.Hex())
	if state, ok := c.novaCache.Get(key); ok {
		return state, nil
	}

	var payload novaPoolPayload
	q := url.Values{}
	q.Set("chainId", fmt.Sprintf("%d", chainID))
	q.Set("token", token.Hex())
	if err := c.get(ctx, "/v1/nova/pool", q, &payload); err != nil {
		return nil, err
	}

	state := &chain.NovaPoolState{}
	var err error
	if state.UsdSupply, err = parseBig(payload.UsdSupply); err != nil {
		return nil, fmt.Errorf("state api: usdSupply: %w", err)
	}
	if state.TargetUsd, err = parseBig(payload.TargetUsd); err != nil {
		return nil, fmt.Errorf("state api: targetUsd: %w", err)
	}
	if payload.NlpPrice != "" {
		if state.NlpPrice, err = parseBig(payload.NlpPrice); err != nil {
			return nil, fmt.Errorf("state api: nlpPrice: %w", err)
		}
	}

	c.novaCache.Set(key, state)
	return state, nil
}

type stableQuotePayload struct {
	AmountOut string `json:"amountOut"`
}

// AmountOut is never cached: it is amount-dependent, so a TTL entry would
// only ever serve the exact repeated request.
func (c *Client) AmountOut(ctx context.Context, chainID uint64, pool, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	var payload stableQuotePayload
	q := url.Values{}
	q.Set("chainId", fmt.Sprintf("%d", chainID))
	q.Set("pool", pool.Hex())
	q.Set("tokenIn", tokenIn.Hex())
	q.Set("tokenOut", tokenOut.Hex())
	q.Set("amountIn", amountIn.String())
	if err := c.get(ctx, "/v1/crest/quote", q, &payload); err != nil {
		return nil, err
	}
	return parseBig(payload.AmountOut)
}

func parseBig(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed integer %q", raw)
	}
	return v, nil
}
