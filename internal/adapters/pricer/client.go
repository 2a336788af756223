// Package pricer values token amounts in USD through the price feed
// service. Spot prices are cached per token with a TTL; valuations are
// display metadata, not execution inputs, so mild staleness is fine.
package pricer

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/convert-engine/internal/cache"
	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
	prices  *cache.TTL[string, decimal.Decimal]
}

func NewClient(baseURL string, ttl time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 3 * time.Second},
		prices:  cache.NewTTL[string, decimal.Decimal](ttl),
	}
}

var _ chain.UsdPricer = (*Client)(nil)

type pricePayload struct {
	PriceUsd string `json:"priceUsd"`
}

func (c *Client) UsdValue(ctx context.Context, token domain.Token, amount *big.Int) (decimal.Decimal, error) {
	price, err := c.spotPrice(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	units := decimal.NewFromBigInt(amount, -int32(token.Decimals))
	return units.Mul(price), nil
}

func (c *Client) spotPrice(ctx context.Context, token domain.Token) (decimal.Decimal, error) {
	key := fmt.Sprintf("%d|%s", token.ChainID, token.Address.Hex())
	if price, ok := c.prices.Get(key); ok {
		return price, nil
	}

	q := url.Values{}
	q.Set("chainId", fmt.Sprintf("%d", token.ChainID))
	q.Set("token", token.Address.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/price?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricer: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("pricer: returned %d for %s", res.StatusCode, token.Symbol)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return decimal.Zero, err
	}

	var payload pricePayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("pricer: decode: %w", err)
	}
	price, err := decimal.NewFromString(payload.PriceUsd)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricer: malformed price %q: %w", payload.PriceUsd, err)
	}

	c.prices.Set(key, price)
	return price, nil
}
