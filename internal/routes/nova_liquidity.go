package routes

import (
	"context"
	"fmt"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/pricing"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// NovaAddLiquidityRoute converts a listed asset into the Nova LP token (NLP)
// by depositing it into the pool it tracks. NovaRemoveLiquidityRoute is the
// inverse. Both share the swap route's oracle pricing; the dynamic fee runs
// one-legged since only one tracked supply moves.
type NovaAddLiquidityRoute struct {
	swap *NovaSwapRoute
}

func NewNovaAddLiquidityRoute(swap *NovaSwapRoute) *NovaAddLiquidityRoute {
	return &NovaAddLiquidityRoute{swap: swap}
}

func (r *NovaAddLiquidityRoute) Name() string { return "nova-add-liquidity" }

func (r *NovaAddLiquidityRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	asset, ok := r.depositAsset(in)
	if !ok {
		return NotApplicable, nil
	}
	if !asset.Hours.Open(r.swap.now()) {
		return NotApplicable, nil
	}
	return weightNovaAddLiq, nil
}

func (r *NovaAddLiquidityRoute) depositAsset(in *domain.WeightInput) (registry.NovaAsset, bool) {
	if !in.To.IsLiquidity() {
		return registry.NovaAsset{}, false
	}
	contracts, ok := r.swap.tables.Contracts(in.ChainID)
	if !ok || in.To.Address != contracts.NovaNlp {
		return registry.NovaAsset{}, false
	}
	wrapped, ok := r.swap.tables.WrappedNative(in.ChainID)
	if !ok {
		return registry.NovaAsset{}, false
	}
	return r.swap.tables.NovaAsset(in.ChainID, in.From.PoolAddress(wrapped))
}

func (r *NovaAddLiquidityRoute) price(ctx context.Context, args *domain.QuoteArgs) (*novaResult, error) {
	asset, ok := r.depositAsset(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	prices, proof, err := r.swap.marketPrices(ctx, args.ChainID, asset)
	if err != nil {
		return nil, err
	}
	side := prices[asset.OraclePair]

	amt18 := feemath.TransformDecimals(args.SellAmount, args.From.Decimals, usdDecimals)
	usd18 := new(big.Int).Mul(amt18, side.bid)
	usd18.Quo(usd18, big.NewInt(pricing.PricePrecision))

	state, err := r.swap.state.PoolComposition(ctx, args.ChainID, asset.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPoolState, asset.OraclePair)
	}
	if state.NlpPrice == nil || state.NlpPrice.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nlp price", ErrMissingPoolState)
	}

	fees := r.swap.tables.NovaFees(args.ChainID)
	feeBps := pricing.RebalanceFeeBps(usd18, state.UsdSupply, state.TargetUsd, fees.BaseFeeBps, fees.TaxFeeBps, true)

	nlp18 := new(big.Int).Mul(usd18, big.NewInt(pricing.PricePrecision))
	nlp18.Quo(nlp18, state.NlpPrice)
	buy := feemath.TransformDecimals(nlp18, usdDecimals, args.To.Decimals)

	return &novaResult{
		buy:    feemath.ApplyFeeBps(buy, feeBps),
		feeBps: feeBps,
		usd18:  usd18,
		proof:  proof,
	}, nil
}

func (r *NovaAddLiquidityRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	res, err := r.price(ctx, args)
	if err != nil {
		return nil, err
	}
	contracts, _ := r.swap.tables.Contracts(args.ChainID)
	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        res.buy,
		GasEstimate:      gasNovaLiquidity,
		AllowanceTargets: allowancesFor(args.From, contracts.NovaRouter, args.SellAmount),
		FeeBps:           res.feeBps,
	}, nil
}

func (r *NovaAddLiquidityRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	res, err := r.price(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.swap.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	wrapped, _ := r.swap.tables.WrappedNative(args.ChainID)

	return r.swap.builder.AddLiquidity(ctx, chain.NovaLiquidityArgs{
		ChainID:    args.ChainID,
		Router:     contracts.NovaRouter,
		Token:      args.From.PoolAddress(wrapped),
		Amount:     args.SellAmount,
		MinNlpOut:  feemath.MinOut(res.buy, args.SlippageBps),
		Recipient:  recipientOf(args),
		PriceProof: res.proof,
		Native:     args.From.IsNative(),
	})
}

type NovaRemoveLiquidityRoute struct {
	swap *NovaSwapRoute
}

func NewNovaRemoveLiquidityRoute(swap *NovaSwapRoute) *NovaRemoveLiquidityRoute {
	return &NovaRemoveLiquidityRoute{swap: swap}
}

func (r *NovaRemoveLiquidityRoute) Name() string { return "nova-remove-liquidity" }

func (r *NovaRemoveLiquidityRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	asset, ok := r.withdrawAsset(in)
	if !ok {
		return NotApplicable, nil
	}
	if !asset.Hours.Open(r.swap.now()) {
		return NotApplicable, nil
	}
	return weightNovaRemoveLiq, nil
}

func (r *NovaRemoveLiquidityRoute) withdrawAsset(in *domain.WeightInput) (registry.NovaAsset, bool) {
	if !in.From.IsLiquidity() {
		return registry.NovaAsset{}, false
	}
	contracts, ok := r.swap.tables.Contracts(in.ChainID)
	if !ok || in.From.Address != contracts.NovaNlp {
		return registry.NovaAsset{}, false
	}
	wrapped, ok := r.swap.tables.WrappedNative(in.ChainID)
	if !ok {
		return registry.NovaAsset{}, false
	}
	return r.swap.tables.NovaAsset(in.ChainID, in.To.PoolAddress(wrapped))
}

func (r *NovaRemoveLiquidityRoute) price(ctx context.Context, args *domain.QuoteArgs) (*novaResult, error) {
	asset, ok := r.withdrawAsset(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	prices, proof, err := r.swap.marketPrices(ctx, args.ChainID, asset)
	if err != nil {
		return nil, err
	}
	side := prices[asset.OraclePair]

	state, err := r.swap.state.PoolComposition(ctx, args.ChainID, asset.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPoolState, asset.OraclePair)
	}
	if state.NlpPrice == nil || state.NlpPrice.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nlp price", ErrMissingPoolState)
	}

	// NLP burns at its mark price; the freed USD buys the out token at ask.
	nlp18 := feemath.TransformDecimals(args.SellAmount, args.From.Decimals, usdDecimals)
	usd18 := new(big.Int).Mul(nlp18, state.NlpPrice)
	usd18.Quo(usd18, big.NewInt(pricing.PricePrecision))

	fees := r.swap.tables.NovaFees(args.ChainID)
	feeBps := pricing.RebalanceFeeBps(usd18, state.UsdSupply, state.TargetUsd, fees.BaseFeeBps, fees.TaxFeeBps, false)

	buy18 := new(big.Int).Mul(usd18, big.NewInt(pricing.PricePrecision))
	buy18.Quo(buy18, side.ask)
	buy := feemath.TransformDecimals(buy18, usdDecimals, args.To.Decimals)

	return &novaResult{
		buy:    feemath.ApplyFeeBps(buy, feeBps),
		feeBps: feeBps,
		usd18:  usd18,
		proof:  proof,
	}, nil
}

func (r *NovaRemoveLiquidityRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	res, err := r.price(ctx, args)
	if err != nil {
		return nil, err
	}
	contracts, _ := r.swap.tables.Contracts(args.ChainID)
	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        res.buy,
		GasEstimate:      gasNovaLiquidity,
		AllowanceTargets: allowancesFor(args.From, contracts.NovaRouter, args.SellAmount),
		FeeBps:           res.feeBps,
	}, nil
}

func (r *NovaRemoveLiquidityRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	res, err := r.price(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.swap.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	wrapped, _ := r.swap.tables.WrappedNative(args.ChainID)

	return r.swap.builder.RemoveLiquidity(ctx, chain.NovaLiquidityArgs{
		ChainID:     args.ChainID,
		Router:      contracts.NovaRouter,
		Token:       args.To.PoolAddress(wrapped),
		Amount:      args.SellAmount,
		MinTokenOut: feemath.MinOut(res.buy, args.SlippageBps),
		Recipient:   recipientOf(args),
		PriceProof:  res.proof,
		Native:      args.To.IsNative(),
	})
}
