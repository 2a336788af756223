package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// AnchorNovaCrestRoute is the stable-pool sibling of AnchorNovaPrismRoute:
// peg module, Nova, then a Crest pool, in either direction.
type AnchorNovaCrestRoute struct {
	anchor   *AnchorSwapRoute
	nova     *NovaSwapRoute
	crest    *CrestSwapRoute
	resolver *anchorVenueResolver
	composer chain.ComposerTxBuilder
}

func NewAnchorNovaCrestRoute(anchor *AnchorSwapRoute, nova *NovaSwapRoute, crest *CrestSwapRoute, reg *registry.TokenRegistry, composer chain.ComposerTxBuilder) *AnchorNovaCrestRoute {
	return &AnchorNovaCrestRoute{
		anchor:   anchor,
		nova:     nova,
		crest:    crest,
		resolver: newAnchorVenueResolver(anchor.tables, reg, true),
		composer: composer,
	}
}

func (r *AnchorNovaCrestRoute) Name() string { return "anchor-nova-crest" }

func (r *AnchorNovaCrestRoute) Weight(ctx context.Context, in *domain.WeightInput) (Weight, error) {
	path, err := r.resolver.resolve(in)
	if err != nil {
		return NotApplicable, nil
	}
	if !novaLegOpen(ctx, r.nova, in, path) {
		return NotApplicable, nil
	}
	return weightAnchorNovaCrest, nil
}

func (r *AnchorNovaCrestRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	cq, path, err := anchorBridgeLegs(ctx, r.anchor, r.nova, r.crest.Quote, args, r.resolver, gasCrestSwap)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.anchor.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	return &domain.RawQuote{
		SellAmount:              new(big.Int).Set(args.SellAmount),
		BuyAmount:               cq.buy,
		GasEstimate:             cq.gas,
		AllowanceTargets:        allowancesFor(args.From, contracts.ConvertRouter, args.SellAmount),
		FeeBps:                  cq.feeBps,
		FeeChargedBeforeConvert: !path.AnchorFirst,
	}, nil
}

func (r *AnchorNovaCrestRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	cq, path, err := anchorBridgeLegs(ctx, r.anchor, r.nova, r.crest.Quote, &args.QuoteArgs, r.resolver, gasCrestSwap)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.anchor.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	hops := anchorBridgeHops(args, path, "crest", path.CrestPool.Pool.Hex())
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
