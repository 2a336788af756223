package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// compositeQuote is the folded result of a multi-leg quote: the final output
// amount, the combined fee, the summed gas and the oracle proof the Nova leg
// needs on-chain.
type compositeQuote struct {
	buy    *big.Int
	feeBps int64
	gas    uint64
	proof  []byte
}

// AnchorNovaRoute chains the Anchor peg module with a Nova swap: collateral
// in through the peg's synthetic onto Nova, or the same path reversed with
// collateral out. Both legs execute atomically through the periphery convert
// router, so the router is the only spender the caller approves.
type AnchorNovaRoute struct {
	anchor   *AnchorSwapRoute
	nova     *NovaSwapRoute
	resolver *anchorNovaResolver
	composer chain.ComposerTxBuilder
}

func NewAnchorNovaRoute(anchor *AnchorSwapRoute, nova *NovaSwapRoute, reg *registry.TokenRegistry, composer chain.ComposerTxBuilder) *AnchorNovaRoute {
	return &AnchorNovaRoute{
		anchor:   anchor,
		nova:     nova,
		resolver: newAnchorNovaResolver(anchor.tables, reg),
		composer: composer,
	}
}

func (r *AnchorNovaRoute) Name() string { return "anchor-nova" }

func (r *AnchorNovaRoute) Weight(ctx context.Context, in *domain.WeightInput) (Weight, error) {
	path, err := r.resolver.resolve(in)
	if err != nil {
		return NotApplicable, nil
	}
	// The peg leg is table-static; the Nova leg still gates on market hours.
	novaHop := domain.WeightInput{From: path.Synth, To: in.To, ChainID: in.ChainID, Provider: in.Provider}
	if !path.AnchorFirst {
		novaHop = domain.WeightInput{From: in.From, To: path.Synth, ChainID: in.ChainID, Provider: in.Provider}
	}
	w, err := r.nova.Weight(ctx, &novaHop)
	if err != nil || !w.Applicable() {
		return NotApplicable, nil
	}
	return weightAnchorNova, nil
}

// quoteLegs folds the two hop quotes in path order. The Anchor leg is pure
// table arithmetic; the Nova leg prices against the oracle once.
func (r *AnchorNovaRoute) quoteLegs(ctx context.Context, args *domain.QuoteArgs) (*compositeQuote, anchorNovaPath, error) {
	path, err := r.resolver.resolve(&args.WeightInput)
	if err != nil {
		return nil, anchorNovaPath{}, err
	}
	base := args.WeightInput

	if path.AnchorFirst {
		q1, err := r.anchor.Quote(ctx, &domain.QuoteArgs{
			WeightInput: domain.WeightInput{From: base.From, To: path.Synth, ChainID: base.ChainID, Provider: base.Provider},
			SellAmount:  args.SellAmount,
		})
		if err != nil {
			return nil, path, err
		}
		res, err := r.nova.price(ctx, &domain.QuoteArgs{
			WeightInput: domain.WeightInput{From: path.Synth, To: base.To, ChainID: base.ChainID, Provider: base.Provider},
			SellAmount:  q1.BuyAmount,
		})
		if err != nil {
			return nil, path, err
		}
		fee, err := feemath.CombineFeesBps(q1.FeeBps, res.feeBps)
		if err != nil {
			return nil, path, err
		}
		return &compositeQuote{
			buy:    res.buy,
			feeBps: fee,
			gas:    gasAnchorSwap + gasNovaSwap + gasPerExtraHop,
			proof:  res.proof,
		}, path, nil
	}

	res, err := r.nova.price(ctx, &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: base.From, To: path.Synth, ChainID: base.ChainID, Provider: base.Provider},
		SellAmount:  args.SellAmount,
	})
	if err != nil {
		return nil, path, err
	}
	q2, err := r.anchor.Quote(ctx, &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: path.Synth, To: base.To, ChainID: base.ChainID, Provider: base.Provider},
		SellAmount:  res.buy,
	})
	if err != nil {
		return nil, path, err
	}
	fee, err := feemath.CombineFeesBps(res.feeBps, q2.FeeBps)
	if err != nil {
		return nil, path, err
	}
	return &compositeQuote{
		buy:    q2.BuyAmount,
		feeBps: fee,
		gas:    gasNovaSwap + gasAnchorSwap + gasPerExtraHop,
		proof:  res.proof,
	}, path, nil
}

func (r *AnchorNovaRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	cq, _, err := r.quoteLegs(ctx, args)
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
	}, nil
}

func (r *AnchorNovaRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	cq, path, err := r.quoteLegs(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.anchor.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	var hops []chain.ComposeHop
	if path.AnchorFirst {
		hops = []chain.ComposeHop{
			{Venue: "anchor", TokenIn: args.From.Address, TokenOut: path.Synth.Address},
			{Venue: "nova", TokenIn: path.Synth.Address, TokenOut: args.To.Address},
		}
	} else {
		hops = []chain.ComposeHop{
			{Venue: "nova", TokenIn: args.From.Address, TokenOut: path.Synth.Address},
			{Venue: "anchor", TokenIn: path.Synth.Address, TokenOut: args.To.Address},
		}
	}

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
