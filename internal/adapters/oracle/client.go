// Package oracle is the HTTP client for the signed price service. The proof
// bytes travel opaque end to end; only the Nova contracts interpret them.
package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/convert-engine/internal/chain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 3 * time.Second}}
}

var _ chain.PriceOracle = (*Client)(nil)

type pricesRequest struct {
	Pairs []string `json:"pairs"`
}

type pricePayload struct {
	Pair    string `json:"pair"`
	Index   string `json:"index"`
	BestBid string `json:"bestBid"`
	BestAsk string `json:"bestAsk"`
}

type pricesResponse struct {
	Proof  string         `json:"proof"` // base64
	Prices []pricePayload `json:"prices"`
}

func (c *Client) SignedPrices(ctx context.Context, pairs []string) (*chain.SignedPrices, error) {
	body, err := sonic.Marshal(pricesRequest{Pairs: pairs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/prices", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle: returned %d", res.StatusCode)
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var payload pricesResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("oracle: decode: %w", err)
	}

	proof, err := base64.StdEncoding.DecodeString(payload.Proof)
	if err != nil {
		return nil, fmt.Errorf("oracle: proof: %w", err)
	}

	out := &chain.SignedPrices{Proof: proof, Prices: make([]chain.MarketPrice, 0, len(payload.Prices))}
	for _, p := range payload.Prices {
		price := chain.MarketPrice{Pair: p.Pair}
		if price.Index, err = parseBig(p.Index); err != nil {
			return nil, fmt.Errorf("oracle: %s index: %w", p.Pair, err)
		}
		if price.BestBid, err = parseBig(p.BestBid); err != nil {
			return nil, fmt.Errorf("oracle: %s bid: %w", p.Pair, err)
		}
		if price.BestAsk, err = parseBig(p.BestAsk); err != nil {
			return nil, fmt.Errorf("oracle: %s ask: %w", p.Pair, err)
		}
		out.Prices = append(out.Prices, price)
	}
	return out, nil
}

func parseBig(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed integer %q", raw)
	}
	return v, nil
}
