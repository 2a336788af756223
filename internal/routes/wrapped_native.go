package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// WrappedNativeRoute services the native asset against its own wrapped form.
// The exchange is 1:1 and fee-free in both directions.
type WrappedNativeRoute struct {
	tables  *registry.Tables
	builder chain.WrappedNativeTxBuilder
}

func NewWrappedNativeRoute(tables *registry.Tables, builder chain.WrappedNativeTxBuilder) *WrappedNativeRoute {
	return &WrappedNativeRoute{tables: tables, builder: builder}
}

func (r *WrappedNativeRoute) Name() string { return "wrapped-native" }

func (r *WrappedNativeRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return NotApplicable, nil
	}
	wrap := in.From.IsNative() && in.To.Address == wrapped
	unwrap := in.From.Address == wrapped && in.To.IsNative()
	if !wrap && !unwrap {
		return NotApplicable, nil
	}
	return weightWrappedNative, nil
}

func (r *WrappedNativeRoute) Quote(_ context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	// Wrapping mints 1:1; unwrapping burns 1:1. No allowance either way:
	// deposit is payable and withdraw is a call on the token itself.
	return &domain.RawQuote{
		SellAmount:  new(big.Int).Set(args.SellAmount),
		BuyAmount:   new(big.Int).Set(args.SellAmount),
		GasEstimate: gasWrap,
		FeeBps:      0,
	}, nil
}

func (r *WrappedNativeRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	wrapped, ok := r.tables.WrappedNative(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	wa := chain.WrapArgs{
		ChainID: args.ChainID,
		Wrapped: wrapped,
		Amount:  args.SellAmount,
	}
	if args.From.IsNative() {
		return r.builder.Wrap(ctx, wa)
	}
	return r.builder.Unwrap(ctx, wa)
}
