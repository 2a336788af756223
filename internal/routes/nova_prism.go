package routes

import (
	"context"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// NovaPrismRoute bridges a Nova swap with a Prism pool through a token
// listed on both venues.
type NovaPrismRoute struct {
	nova     *NovaSwapRoute
	prism    *PrismSwapRoute
	resolver *novaPrismResolver
	composer chain.ComposerTxBuilder
}

func NewNovaPrismRoute(nova *NovaSwapRoute, prism *PrismSwapRoute, reg *registry.TokenRegistry, composer chain.ComposerTxBuilder) *NovaPrismRoute {
	return &NovaPrismRoute{
		nova:     nova,
		prism:    prism,
		resolver: newNovaPrismResolver(nova.tables, reg),
		composer: composer,
	}
}

func (r *NovaPrismRoute) Name() string { return "nova-prism" }

func (r *NovaPrismRoute) Weight(ctx context.Context, in *domain.WeightInput) (Weight, error) {
	path, err := r.resolver.resolve(in)
	if err != nil {
		return NotApplicable, nil
	}
	novaHop := domain.WeightInput{From: in.From, To: path.Mid, ChainID: in.ChainID, Provider: in.Provider}
	if !path.NovaFirst {
		novaHop = domain.WeightInput{From: path.Mid, To: in.To, ChainID: in.ChainID, Provider: in.Provider}
	}
	w, err := r.nova.Weight(ctx, &novaHop)
	if err != nil || !w.Applicable() {
		return NotApplicable, nil
	}
	return weightNovaPrism, nil
}

func (r *NovaPrismRoute) quoteLegs(ctx context.Context, args *domain.QuoteArgs) (*compositeQuote, novaPrismPath, error) {
	path, err := r.resolver.resolve(&args.WeightInput)
	if err != nil {
		return nil, novaPrismPath{}, err
	}
	base := args.WeightInput

	if path.NovaFirst {
		res, err := r.nova.price(ctx, &domain.QuoteArgs{
			WeightInput: domain.WeightInput{From: base.From, To: path.Mid, ChainID: base.ChainID, Provider: base.Provider},
			SellAmount:  args.SellAmount,
		})
		if err != nil {
			return nil, path, err
		}
		q2, err := r.prism.Quote(ctx, &domain.QuoteArgs{
			WeightInput: domain.WeightInput{From: path.Mid, To: base.To, ChainID: base.ChainID, Provider: base.Provider},
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
			gas:    gasNovaSwap + gasPrismSwap + gasPerExtraHop,
			proof:  res.proof,
		}, path, nil
	}

	q1, err := r.prism.Quote(ctx, &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: base.From, To: path.Mid, ChainID: base.ChainID, Provider: base.Provider},
		SellAmount:  args.SellAmount,
	})
	if err != nil {
		return nil, path, err
	}
	res, err := r.nova.price(ctx, &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: path.Mid, To: base.To, ChainID: base.ChainID, Provider: base.Provider},
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
		gas:    gasPrismSwap + gasNovaSwap + gasPerExtraHop,
		proof:  res.proof,
	}, path, nil
}

func (r *NovaPrismRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	cq, path, err := r.quoteLegs(ctx, args)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.nova.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        cq.buy,
		GasEstimate:      cq.gas,
		AllowanceTargets: allowancesFor(args.From, contracts.ConvertRouter, args.SellAmount),
		FeeBps:           cq.feeBps,
		// A prism-first path takes the pool cut off the input leg.
		FeeChargedBeforeConvert: !path.NovaFirst,
	}, nil
}

func (r *NovaPrismRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	cq, path, err := r.quoteLegs(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.nova.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	var hops []chain.ComposeHop
	if path.NovaFirst {
		hops = []chain.ComposeHop{
			{Venue: "nova", TokenIn: args.From.Address, TokenOut: path.Mid.Address},
			{Venue: "prism", TokenIn: path.Mid.Address, TokenOut: args.To.Address, PoolID: path.Pool.PoolID},
		}
	} else {
		hops = []chain.ComposeHop{
			{Venue: "prism", TokenIn: args.From.Address, TokenOut: path.Mid.Address, PoolID: path.Pool.PoolID},
			{Venue: "nova", TokenIn: path.Mid.Address, TokenOut: args.To.Address},
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
