// Package relay is the HTTP client for the external aggregator the Relay
// route falls back to when no internal venue serves a pair.
package relay

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
	chains  map[uint64]struct{}
}

// NewClient limits the fallback to chains the upstream aggregator actually
// serves; others weigh out rather than fail at quote time.
func NewClient(baseURL string, chainIDs []uint64) *Client {
	chains := make(map[uint64]struct{}, len(chainIDs))
	for _, id := range chainIDs {
		chains[id] = struct{}{}
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 8 * time.Second},
		chains:  chains,
	}
}

var _ chain.AggregatorClient = (*Client)(nil)

func (c *Client) Supports(chainID uint64, from, to common.Address) bool {
	if from == to {
		return false
	}
	_, ok := c.chains[chainID]
	return ok
}

type quotePayload struct {
	BuyAmount        string `json:"buyAmount"`
	EstimatedGas     uint64 `json:"estimatedGas"`
	FeeBps           int64  `json:"feeBps"`
	AllowanceSpender string `json:"allowanceTarget"`
}

func (c *Client) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	var payload quotePayload
	if err := c.get(ctx, "/v1/quote", c.query(args), &payload); err != nil {
		return nil, err
	}

	buy, ok := new(big.Int).SetString(payload.BuyAmount, 10)
	if !ok {
		return nil, fmt.Errorf("relay: malformed buyAmount %q", payload.BuyAmount)
	}

	quote := &domain.RawQuote{
		SellAmount:  new(big.Int).Set(args.SellAmount),
		BuyAmount:   buy,
		GasEstimate: payload.EstimatedGas,
		FeeBps:      payload.FeeBps,
	}
	if payload.AllowanceSpender != "" && !args.From.IsNative() {
		quote.AllowanceTargets = []domain.AllowanceTarget{{
			Spender: common.HexToAddress(payload.AllowanceSpender),
			Token:   args.From.Address,
			Amount:  new(big.Int).Set(args.SellAmount),
		}}
	}
	return quote, nil
}

type txPayload struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      uint64 `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

func (c *Client) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	q := c.query(&args.QuoteArgs)
	q.Set("slippageBps", fmt.Sprintf("%d", args.SlippageBps))
	if args.Signer != nil {
		q.Set("taker", args.Signer.Address().Hex())
	}

	var payload txPayload
	if err := c.get(ctx, "/v1/swap", q, &payload); err != nil {
		return nil, err
	}

	tx := &domain.TxRequest{
		To:   common.HexToAddress(payload.To),
		Data: common.FromHex(payload.Data),
		Gas:  payload.Gas,
	}
	if payload.Value != "" {
		value, ok := new(big.Int).SetString(payload.Value, 10)
		if !ok {
			return nil, fmt.Errorf("relay: malformed value %q", payload.Value)
		}
		if value.Sign() > 0 {
			tx.Value = value
		}
	}
	return tx, nil
}

func (c *Client) query(args *domain.QuoteArgs) url.Values {
	q := url.Values{}
	q.Set("chainId", fmt.Sprintf("%d", args.ChainID))
	q.Set("sellToken", args.From.Address.Hex())
	q.Set("buyToken", args.To.Address.Hex())
	q.Set("sellAmount", args.SellAmount.String())
	return q
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("relay: %s returned %d", path, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("relay: decode %s: %w", path, err)
	}
	return nil
}
