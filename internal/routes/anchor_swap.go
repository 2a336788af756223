package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// AnchorSwapRoute exchanges a pegged collateral token against the synthetic
// the Anchor module mints for it, 1:1 minus the peg fee, in either
// direction.
type AnchorSwapRoute struct {
	tables  *registry.Tables
	reg     *registry.TokenRegistry
	builder chain.AnchorTxBuilder
}

func NewAnchorSwapRoute(tables *registry.Tables, reg *registry.TokenRegistry, builder chain.AnchorTxBuilder) *AnchorSwapRoute {
	return &AnchorSwapRoute{tables: tables, reg: reg, builder: builder}
}

func (r *AnchorSwapRoute) Name() string { return "anchor-swap" }

// peg returns the peg serving the pair and whether From is the collateral
// side.
func (r *AnchorSwapRoute) peg(in *domain.WeightInput) (registry.AnchorPeg, bool, bool) {
	if p, ok := r.tables.PegForCollateral(in.ChainID, in.From.Address); ok && p.Synthetic == in.To.Address {
		return p, true, true
	}
	if p, ok := r.tables.PegForSynthetic(in.ChainID, in.From.Address); ok && p.Collateral == in.To.Address {
		return p, false, true
	}
	return registry.AnchorPeg{}, false, false
}

func (r *AnchorSwapRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	if _, _, ok := r.peg(in); !ok {
		return NotApplicable, nil
	}
	return weightAnchorSwap, nil
}

func (r *AnchorSwapRoute) Quote(_ context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	peg, _, ok := r.peg(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	// Peg is 1:1 across possibly different decimals; the fee comes off the
	// output side.
	buy := feemath.TransformDecimals(args.SellAmount, args.From.Decimals, args.To.Decimals)
	buy = feemath.ApplyFeeBps(buy, peg.FeeBps)

	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        buy,
		GasEstimate:      gasAnchorSwap,
		AllowanceTargets: allowancesFor(args.From, contracts.AnchorModule, args.SellAmount),
		FeeBps:           peg.FeeBps,
	}, nil
}

func (r *AnchorSwapRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	peg, fromCollateral, ok := r.peg(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	// The peg module charges its fee unconditionally and enforces no
	// minimum; a fee above the caller's tolerance can never satisfy it.
	if peg.FeeBps > args.SlippageBps {
		return nil, ErrFeeExceedsSlippage
	}

	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	quote, err := r.Quote(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}

	sa := chain.AnchorSwapArgs{
		ChainID:    args.ChainID,
		Module:     contracts.AnchorModule,
		TokenIn:    args.From.Address,
		TokenOut:   args.To.Address,
		SellAmount: args.SellAmount,
		MinOut:     feemath.MinOut(quote.BuyAmount, args.SlippageBps),
		Recipient:  recipientOf(args),
	}
	if fromCollateral {
		return r.builder.SwapCollateralToSynth(ctx, sa)
	}
	return r.builder.SwapSynthToCollateral(ctx, sa)
}
