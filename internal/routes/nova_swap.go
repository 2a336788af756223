package routes

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/pricing"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// usdDecimals is the fixed-point scale Nova tracks pool USD composition in.
const usdDecimals = 18

// NovaSwapRoute prices one listed asset against another on the internal
// synthetic AMM: sell at the in-token's best bid, buy at the out-token's
// best ask, both derived from oracle index prices, with the dynamic
// rebalancing fee on top.
type NovaSwapRoute struct {
	tables  *registry.Tables
	oracle  chain.PriceOracle
	state   chain.NovaStateFetcher
	builder chain.NovaTxBuilder

	now func() time.Time
}

func NewNovaSwapRoute(tables *registry.Tables, oracle chain.PriceOracle, state chain.NovaStateFetcher, builder chain.NovaTxBuilder) *NovaSwapRoute {
	return &NovaSwapRoute{tables: tables, oracle: oracle, state: state, builder: builder, now: time.Now}
}

func (r *NovaSwapRoute) Name() string { return "nova-swap" }

// assets resolves both legs' Nova listings, native normalized to wrapped.
func (r *NovaSwapRoute) assets(in *domain.WeightInput) (registry.NovaAsset, registry.NovaAsset, bool) {
	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return registry.NovaAsset{}, registry.NovaAsset{}, false
	}
	fromAddr := in.From.PoolAddress(wrapped)
	toAddr := in.To.PoolAddress(wrapped)
	if fromAddr == toAddr {
		return registry.NovaAsset{}, registry.NovaAsset{}, false
	}
	fromAsset, ok := r.tables.NovaAsset(in.ChainID, fromAddr)
	if !ok {
		return registry.NovaAsset{}, registry.NovaAsset{}, false
	}
	toAsset, ok := r.tables.NovaAsset(in.ChainID, toAddr)
	if !ok {
		return registry.NovaAsset{}, registry.NovaAsset{}, false
	}
	return fromAsset, toAsset, true
}

func (r *NovaSwapRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	fromAsset, toAsset, ok := r.assets(in)
	if !ok {
		return NotApplicable, nil
	}
	// FX-style markets close over the weekend; a closed market cannot quote.
	t := r.now()
	if !fromAsset.Hours.Open(t) || !toAsset.Hours.Open(t) {
		return NotApplicable, nil
	}
	return weightNovaSwap, nil
}

// sidePrices is the tradable bid/ask for one asset, reversal applied.
type sidePrices struct {
	bid *big.Int
	ask *big.Int
}

// marketPrices fetches signed prices for the given assets in one oracle
// round trip and returns per-pair tradable sides plus the proof blob.
func (r *NovaSwapRoute) marketPrices(ctx context.Context, chainID uint64, assets ...registry.NovaAsset) (map[string]sidePrices, []byte, error) {
	pairs := make([]string, 0, len(assets))
	for _, a := range assets {
		pairs = append(pairs, a.OraclePair)
	}

	signed, err := r.oracle.SignedPrices(ctx, pairs)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch signed prices: %w", err)
	}

	byPair := make(map[string]chain.MarketPrice, len(signed.Prices))
	for _, p := range signed.Prices {
		byPair[p.Pair] = p
	}

	out := make(map[string]sidePrices, len(assets))
	for _, a := range assets {
		mp, ok := byPair[a.OraclePair]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingPrice, a.OraclePair)
		}

		bid, ask := mp.BestBid, mp.BestAsk
		if bid == nil || ask == nil {
			// Oracle sent only the index; derive the sides from the asset's
			// configured spread.
			if bid, err = pricing.BestBid(mp.Index, a.SpreadBps); err != nil {
				return nil, nil, err
			}
			if ask, err = pricing.BestAsk(mp.Index, a.SpreadBps); err != nil {
				return nil, nil, err
			}
		}

		// A reversed pair quotes base and quote swapped: the tradable bid is
		// the inverse of the feed's ask and vice versa.
		if r.tables.IsReversedPair(chainID, a.OraclePair) {
			invBid, err := pricing.InvertPrice(ask)
			if err != nil {
				return nil, nil, err
			}
			invAsk, err := pricing.InvertPrice(bid)
			if err != nil {
				return nil, nil, err
			}
			bid, ask = invBid, invAsk
		}

		out[a.OraclePair] = sidePrices{bid: bid, ask: ask}
	}
	return out, signed.Proof, nil
}

type novaResult struct {
	buy    *big.Int
	feeBps int64
	usd18  *big.Int
	proof  []byte
}

func (r *NovaSwapRoute) price(ctx context.Context, args *domain.QuoteArgs) (*novaResult, error) {
	fromAsset, toAsset, ok := r.assets(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	prices, proof, err := r.marketPrices(ctx, args.ChainID, fromAsset, toAsset)
	if err != nil {
		return nil, err
	}
	in := prices[fromAsset.OraclePair]
	out := prices[toAsset.OraclePair]

	// USD value of the sell side at its bid, 1e18 fixed point.
	amt18 := feemath.TransformDecimals(args.SellAmount, args.From.Decimals, usdDecimals)
	usd18 := new(big.Int).Mul(amt18, in.bid)
	usd18.Quo(usd18, big.NewInt(pricing.PricePrecision))

	// Buy side priced at its ask.
	buy18 := new(big.Int).Mul(usd18, big.NewInt(pricing.PricePrecision))
	buy18.Quo(buy18, out.ask)
	buy := feemath.TransformDecimals(buy18, usdDecimals, args.To.Decimals)

	// Dynamic fee: the in token's pool grows, the out token's shrinks; the
	// worse leg is charged.
	inState, err := r.state.PoolComposition(ctx, args.ChainID, fromAsset.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPoolState, fromAsset.OraclePair)
	}
	outState, err := r.state.PoolComposition(ctx, args.ChainID, toAsset.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPoolState, toAsset.OraclePair)
	}

	fees := r.tables.NovaFees(args.ChainID)
	feeBps := pricing.SwapFeeBps(
		usd18,
		inState.UsdSupply, inState.TargetUsd,
		outState.UsdSupply, outState.TargetUsd,
		fees.BaseFeeBps, fees.TaxFeeBps,
	)

	return &novaResult{
		buy:    feemath.ApplyFeeBps(buy, feeBps),
		feeBps: feeBps,
		usd18:  usd18,
		proof:  proof,
	}, nil
}

func (r *NovaSwapRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	res, err := r.price(ctx, args)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        res.buy,
		GasEstimate:      gasNovaSwap,
		AllowanceTargets: allowancesFor(args.From, contracts.NovaRouter, args.SellAmount),
		FeeBps:           res.feeBps,
	}, nil
}

func (r *NovaSwapRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	res, err := r.price(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}
	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}
	wrapped, _ := r.tables.WrappedNative(args.ChainID)

	return r.builder.Swap(ctx, chain.NovaSwapArgs{
		ChainID:    args.ChainID,
		Router:     contracts.NovaRouter,
		TokenIn:    args.From.PoolAddress(wrapped),
		TokenOut:   args.To.PoolAddress(wrapped),
		SellAmount: args.SellAmount,
		MinOut:     feemath.MinOut(res.buy, args.SlippageBps),
		Recipient:  recipientOf(args),
		PriceProof: res.proof,
		NativeIn:   args.From.IsNative(),
		NativeOut:  args.To.IsNative(),
	})
}
