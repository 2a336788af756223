package routes

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/pricing"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// PrismSwapRoute trades through a single Prism weighted pool holding both
// tokens. Pool membership is static table data; balances and weights are
// read per quote.
type PrismSwapRoute struct {
	tables  *registry.Tables
	pools   chain.PoolStateFetcher
	builder chain.PrismTxBuilder
}

func NewPrismSwapRoute(tables *registry.Tables, pools chain.PoolStateFetcher, builder chain.PrismTxBuilder) *PrismSwapRoute {
	return &PrismSwapRoute{tables: tables, pools: pools, builder: builder}
}

func (r *PrismSwapRoute) Name() string { return "prism-swap" }

func (r *PrismSwapRoute) pool(in *domain.WeightInput) (registry.WeightedPoolDef, common.Address, common.Address, bool) {
	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return registry.WeightedPoolDef{}, common.Address{}, common.Address{}, false
	}
	fromAddr := in.From.PoolAddress(wrapped)
	toAddr := in.To.PoolAddress(wrapped)
	if fromAddr == toAddr {
		return registry.WeightedPoolDef{}, common.Address{}, common.Address{}, false
	}
	def, ok := r.tables.PrismPoolFor(in.ChainID, fromAddr, toAddr)
	return def, fromAddr, toAddr, ok
}

func (r *PrismSwapRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	if _, _, _, ok := r.pool(in); !ok {
		return NotApplicable, nil
	}
	return weightPrismSwap, nil
}

func (r *PrismSwapRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	def, fromAddr, toAddr, ok := r.pool(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	state, err := r.pools.WeightedPoolState(ctx, args.ChainID, def.PoolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPoolState, def.PoolID)
	}

	pool, err := directedPool(state, fromAddr, toAddr)
	if err != nil {
		return nil, err
	}
	buy, err := pricing.WeightedPoolOut(pool, args.SellAmount)
	if err != nil {
		return nil, err
	}

	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	return &domain.RawQuote{
		SellAmount:       new(big.Int).Set(args.SellAmount),
		BuyAmount:        buy,
		GasEstimate:      gasPrismSwap,
		AllowanceTargets: allowancesFor(args.From, contracts.PrismVault, args.SellAmount),
		FeeBps:           int64(math.Round(pool.SwapFee * 10000)),
		// The vault takes its cut from the input before pricing.
		FeeChargedBeforeConvert: true,
	}, nil
}

func (r *PrismSwapRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	def, fromAddr, toAddr, ok := r.pool(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}
	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	quote, err := r.Quote(ctx, &args.QuoteArgs)
	if err != nil {
		return nil, err
	}

	return r.builder.Swap(ctx, chain.PrismSwapArgs{
		ChainID:    args.ChainID,
		Vault:      contracts.PrismVault,
		PoolID:     def.PoolID,
		TokenIn:    fromAddr,
		TokenOut:   toAddr,
		SellAmount: args.SellAmount,
		MinOut:     feemath.MinOut(quote.BuyAmount, args.SlippageBps),
		Recipient:  recipientOf(args),
		NativeIn:   args.From.IsNative(),
		NativeOut:  args.To.IsNative(),
	})
}

// directedPool orients a pool snapshot for an in/out token pair.
func directedPool(state *chain.WeightedPoolState, tokenIn, tokenOut common.Address) (pricing.WeightedPool, error) {
	in, out := -1, -1
	for i, tk := range state.Tokens {
		switch tk {
		case tokenIn:
			in = i
		case tokenOut:
			out = i
		}
	}
	if in < 0 || out < 0 {
		return pricing.WeightedPool{}, fmt.Errorf("%w: token not in pool %s", ErrMissingPoolState, state.PoolID)
	}
	return pricing.WeightedPool{
		BalanceIn:   state.Balances[in],
		BalanceOut:  state.Balances[out],
		DecimalsIn:  state.Decimals[in],
		DecimalsOut: state.Decimals[out],
		WeightIn:    state.Weights[in],
		WeightOut:   state.Weights[out],
		SwapFee:     state.SwapFee,
	}, nil
}
