// Package chain declares the collaborator contracts the routing core depends
// on: pool state reads, the signed price oracle, per-venue transaction
// builders and USD valuation. Implementations live at the edges (RPC,
// subgraph, HTTP); the core only sees these interfaces.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/convert-engine/internal/domain"
)

// WeightedPoolState is a Prism pool snapshot. Token order is the pool's own;
// balances, decimals and normalized weights are index-aligned with Tokens.
type WeightedPoolState struct {
	PoolID   string
	Tokens   []common.Address
	Balances []*big.Int
	Decimals []uint8
	Weights  []float64
	SwapFee  float64 // fraction
}

// PoolStateFetcher reads dynamic pool parameters. Staleness policy belongs
// to the implementation, not the core.
type PoolStateFetcher interface {
	WeightedPoolState(ctx context.Context, chainID uint64, poolID string) (*WeightedPoolState, error)
}

// StableQuoter quotes a Crest pool. The returned amount has the venue's
// built-in fee already deducted.
type StableQuoter interface {
	AmountOut(ctx context.Context, chainID uint64, pool, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error)
}

// NovaPoolState is the tracked USD composition of one Nova asset pool, in
// 1e18 fixed-point USD.
type NovaPoolState struct {
	UsdSupply *big.Int
	TargetUsd *big.Int
	// NlpPrice is the LP token price in 1e8 fixed point.
	NlpPrice *big.Int
}

type NovaStateFetcher interface {
	PoolComposition(ctx context.Context, chainID uint64, token common.Address) (*NovaPoolState, error)
}

// MarketPrice is one oracle pair quote, 1e8 fixed point.
type MarketPrice struct {
	Pair    string
	Index   *big.Int
	BestBid *big.Int
	BestAsk *big.Int
}

// SignedPrices is an oracle response: prices plus the encoded proof the Nova
// contracts verify on-chain.
type SignedPrices struct {
	Proof  []byte
	Prices []MarketPrice
}

type PriceOracle interface {
	SignedPrices(ctx context.Context, pairs []string) (*SignedPrices, error)
}

// UsdPricer values a token amount in USD. A lookup miss is an error here and
// a nil valuation at the facade.
type UsdPricer interface {
	UsdValue(ctx context.Context, token domain.Token, amount *big.Int) (decimal.Decimal, error)
}

// ProviderResolver supplies a default provider for a chain when the caller
// did not pass one.
type ProviderResolver interface {
	Default(ctx context.Context, chainID uint64) (domain.Provider, error)
}
