package routes

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
	"github.com/hxuan190/convert-engine/internal/pricing"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// CrestSwapRoute trades stables through a single Crest pool. The quote comes
// from the venue itself; the pool's flat fee is reported in bps for
// composition with other legs.
type CrestSwapRoute struct {
	tables  *registry.Tables
	quoter  chain.StableQuoter
	builder chain.CrestTxBuilder
}

func NewCrestSwapRoute(tables *registry.Tables, quoter chain.StableQuoter, builder chain.CrestTxBuilder) *CrestSwapRoute {
	return &CrestSwapRoute{tables: tables, quoter: quoter, builder: builder}
}

func (r *CrestSwapRoute) Name() string { return "crest-swap" }

func (r *CrestSwapRoute) pool(in *domain.WeightInput) (registry.StablePoolDef, common.Address, common.Address, bool) {
	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return registry.StablePoolDef{}, common.Address{}, common.Address{}, false
	}
	fromAddr := in.From.PoolAddress(wrapped)
	toAddr := in.To.PoolAddress(wrapped)
	if fromAddr == toAddr {
		return registry.StablePoolDef{}, common.Address{}, common.Address{}, false
	}
	def, ok := r.tables.CrestPoolFor(in.ChainID, fromAddr, toAddr)
	return def, fromAddr, toAddr, ok
}

func (r *CrestSwapRoute) Weight(_ context.Context, in *domain.WeightInput) (Weight, error) {
	if _, _, _, ok := r.pool(in); !ok {
		return NotApplicable, nil
	}
	return weightCrestSwap, nil
}

func (r *CrestSwapRoute) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error) {
	def, fromAddr, toAddr, ok := r.pool(&args.WeightInput)
	if !ok {
		return nil, ErrNoPath
	}

	buy, err := r.quoter.AmountOut(ctx, args.ChainID, def.Pool, fromAddr, toAddr, args.SellAmount)
	if err != nil {
		return nil, err
	}

	contracts, ok := r.tables.Contracts(args.ChainID)
	if !ok {
		return nil, ErrUnknownChain
	}

	// The venue quotes post-fee; the fee-free figure pins the effective fee
	// in bps for this amount. Pool misconfiguration surfaces here.
	gross, err := pricing.StripPoolFee(buy, big.NewInt(def.PoolFee), big.NewInt(def.FeeDenominator))
	if err != nil {
		return nil, err
	}
	var feeBps int64
	if gross.Sign() > 0 {
		// Floor the kept fraction so the reported fee never understates
		// the loss.
		kept := new(big.Int).Mul(buy, big.NewInt(feemath.BpsDenom))
		kept.Quo(kept, gross)
		feeBps = feemath.BpsDenom - kept.Int64()
	}

	return &domain.RawQuote{
		SellAmount:              new(big.Int).Set(args.SellAmount),
		BuyAmount:               buy,
		GasEstimate:             gasCrestSwap,
		AllowanceTargets:        allowancesFor(args.From, contracts.CrestRouter, args.SellAmount),
		FeeBps:                  feeBps,
		FeeChargedBeforeConvert: true,
	}, nil
}

func (r *CrestSwapRoute) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
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

	return r.builder.Swap(ctx, chain.CrestSwapArgs{
		ChainID:    args.ChainID,
		Router:     contracts.CrestRouter,
		Pool:       def.Pool,
		TokenIn:    fromAddr,
		TokenOut:   toAddr,
		SellAmount: args.SellAmount,
		MinOut:     feemath.MinOut(quote.BuyAmount, args.SlippageBps),
		Recipient:  recipientOf(args),
	})
}
