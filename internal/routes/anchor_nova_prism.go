package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// AnchorNovaPrismRoute is the three-hop path: peg module, Nova, then a
// Prism pool (or the same chain reversed when the collateral is the output
// side). The Nova leg bridges the synthetic to a token the pool holds.
type AnchorNovaPrismRoute struct {
	anchor   *AnchorSwapRoute
	nova     *NovaSwapRoute
	prism    *PrismSwapRoute
	resolver *anchorVenueResolver
	composer chain.ComposerTxBuilder
}

func NewAnchorNovaPrismRoute(anchor *AnchorSwapRoute, nova *NovaSwapRoute, prism *PrismSwapRoute, reg *registry.TokenRegistry, composer chain.ComposerTxBuilder) *AnchorNovaPrismRoute {
	return &AnchorNovaPrismRoute{
		anchor:   anchor,
		nova:     nova,
		prism:    prism,
		resolver: newAnchorVenueResolver(anchor.tables, reg, false),
		composer: composer,
	}
}

func (r *AnchorNovaPrismRoute) Name() string { return "anchor-nova-prism" }

func (r *AnchorNovaPrismRoute) Weight(ctx context.Context, in *domain.WeightInput) (Weight, error) {
	path, err := r.resolver.resolve(in)
	if err != nil {
		return NotApplicable, nil
	}
	if !novaLegOpen(ctx, r.nova, in, path) {
		return NotApplicable, nil
	}
	return weightAnchorNovaPrism, nil
}

func (r *AnchorNovaPrismRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	cq, path, err := anchorBridgeLegs(ctx, r.anchor, r.nova, r.prism.Quote, args, r.resolver, gasPrismSwap)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.anchor.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        cq.buy,
		GasEstimate:      cq.gas,
		AllowanceTargets: allowancesFor(args.From, contracts.ConvertRouter, args.SellAmount),
		FeeBps:           cq.feeBps,
		// Pool leg first means its cut comes off the input.
		FeeChargedBeforeConvert: !path.AnchorFirst,
	}, nil
}

func (r *AnchorNovaPrismRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	cq, path, err := anchorBridgeLegs(ctx, r.anchor, r.nova, r.prism.Quote, &args.QuoteArgs, r.resolver, gasPrismSwap)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.anchor.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	hops := anchorBridgeHops(args, path, "prism", path.PrismPool.PoolID)
	return r.composer.Convert(ctx, chain.ComposeArgs{
		ChainID:    args.ChainID,
		Router:     contracts.ConvertRouter,
		Hops:       hops,
		SellAmount: args.SellAmount,
		MinOut:     feemath.MinOut(cq.buy, args.SlippageBps),
		Recipient:  recipientOf(args),
		PriceProof: cq.proof,
		NativeIn:   args.From.IsNative(),
		NativeOut:  args.To.IsNative(),
	})
}

// novaLegOpen applies the Nova-side gating (listing and market hours) to the
// synthetic-bridge hop of a three-hop path.
func novaLegOpen(ctx context.Context, nova *NovaSwapRoute, in *domain.WeightInput, path anchorVenuePath) bool {
	hop := domain.WeightInput{From: path.Synth, To: path.Mid, ChainID: in.ChainID, Provider: in.Provider}
	if !path.AnchorFirst {
		hop = domain.WeightInput{From: path.Mid, To: path.Synth, ChainID: in.ChainID, Provider: in.Provider}
	}
	w, err := nova.Weight(ctx, &hop)
	return err == nil && w.Applicable()
}

// anchorBridgeLegs folds the three hop quotes of an anchor/Nova/pool path.
// poolQuote is the pool venue's quote operation; poolGas its gas constant.
func anchorBridgeLegs(
	ctx context.Context,
	anchor *AnchorSwapRoute,
	nova *NovaSwapRoute,
	poolQuote func(context.Context, *domain.QuoteArgs) (*domain.RawQuote, error),
	args *domain.QuoteArgs,
	resolver *anchorVenueResolver,
	poolGas uint64,
) (*compositeQuote, anchorVenuePath, error) {
	path, err := resolver.resolve(&args.WeightInput)
	if err != nil {
		return nil, anchorVenuePath{}, err
	}
	base := args.WeightInput
	hop := func(from, to domain.Token) domain.WeightInput {
		return domain.WeightInput{From: from, To: to, ChainID: base.ChainID, Provider: base.Provider}
	}
	gas := gasAnchorSwap + gasNovaSwap + poolGas + 2*gasPerExtraHop

	if path.AnchorFirst {
		q1, err := anchor.Quote(ctx, &domain.QuoteArgs{WeightInput: hop(base.From, path.Synth), SellAmount: args.SellAmount})
		if err != nil {
			return nil, path, err
		}
		res, err := nova.price(ctx, &domain.QuoteArgs{WeightInput: hop(path.Synth, path.Mid), SellAmount: q1.BuyAmount})
		if err != nil {
			return nil, path, err
		}
		q3, err := poolQuote(ctx, &domain.QuoteArgs{WeightInput: hop(path.Mid, base.To), SellAmount: res.buy})
		if err != nil {
			return nil, path, err
		}
		fee, err := combineLegFees(q1.FeeBps, res.feeBps, q3.FeeBps)
		if err != nil {
			return nil, path, err
		}
		return &compositeQuote{
			buy:    q3.BuyAmount,
			feeBps: fee,
			gas:    gas,
			proof:  res.proof,
		}, path, nil
	}

	q1, err := poolQuote(ctx, &domain.QuoteArgs{WeightInput: hop(base.From, path.Mid), SellAmount: args.SellAmount})
	if err != nil {
		return nil, path, err
	}
	res, err := nova.price(ctx, &domain.QuoteArgs{WeightInput: hop(path.Mid, path.Synth), SellAmount: q1.BuyAmount})
	if err != nil {
		return nil, path, err
	}
	q3, err := anchor.Quote(ctx, &domain.QuoteArgs{WeightInput: hop(path.Synth, base.To), SellAmount: res.buy})
	if err != nil {
		return nil, path, err
	}
	fee, err := combineLegFees(q1.FeeBps, res.feeBps, q3.FeeBps)
	if err != nil {
		return nil, path, err
	}
	return &compositeQuote{
		buy:    q3.BuyAmount,
		feeBps: fee,
		gas:    gas,
		proof:  res.proof,
	}, path, nil
}

// anchorBridgeHops lays out the periphery hop list for a three-hop path.
func anchorBridgeHops(args *domain.TransactionArgs, path anchorVenuePath, poolVenue, poolID string) []chain.ComposeHop {
	if path.AnchorFirst {
		return []chain.ComposeHop{
			{Venue: "anchor", TokenIn: args.From.Address, TokenOut: path.Synth.Address},
			{Venue: "nova", TokenIn: path.Synth.Address, TokenOut: path.Mid.Address},
			{Venue: poolVenue, TokenIn: path.Mid.Address, TokenOut: args.To.Address, PoolID: poolID},
		}
	}
	return []chain.ComposeHop{
		{Venue: poolVenue, TokenIn: args.From.Address, TokenOut: path.Mid.Address, PoolID: poolID},
		{Venue: "nova", TokenIn: path.Mid.Address, TokenOut: path.Synth.Address},
		{Venue: "anchor", TokenIn: path.Synth.Address, TokenOut: args.To.Address},
	}
}
