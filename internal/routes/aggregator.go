package routes

import (
	"context"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
)

// RelayRoute is the generic off-chain aggregator fallback. It carries the
// lowest weight so it only wins pairs no native venue serves; pricing and
// transaction payloads come entirely from the external client.
type RelayRoute struct {
	client chain.AggregatorClient
}

func NewRelayRoute(client chain.AggregatorClient) *RelayRoute {
	return &RelayRoute{client: client}
}

func (r *RelayRoute) Name() string { return "relay" }

func (r *RelayRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	if in.From.Address == in.To.Address {
		return NotApplicable, nil
	}
	if !r.client.Supports(in.ChainID, in.From.Address, in.To.Address) {
		return NotApplicable, nil
	}
	return weightAggregator, nil
}

func (r *RelayRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	return r.client.Quote(ctx, args)
}

func (r *RelayRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	return r.client.Transaction(ctx, args)
}
