package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/domain"
)

// WrapArgs covers both directions of the native/wrapped pair; Unwrap calls
// withdraw on the wrapped token itself.
type WrapArgs struct {
	ChainID uint64
	Wrapped common.Address
	Amount  *big.Int
}

type WrappedNativeTxBuilder interface {
	Wrap(ctx context.Context, args WrapArgs) (*domain.TxRequest, error)
	Unwrap(ctx context.Context, args WrapArgs) (*domain.TxRequest, error)
}

type AnchorSwapArgs struct {
	ChainID    uint64
	Module     common.Address
	TokenIn    common.Address
	TokenOut   common.Address
	SellAmount *big.Int
	MinOut     *big.Int
	Recipient  common.Address
}

// AnchorTxBuilder builds peg module calls. The module enforces the peg, not
// a minimum out, so MinOut is validated by the route before building.
type AnchorTxBuilder interface {
	SwapCollateralToSynth(ctx context.Context, args AnchorSwapArgs) (*domain.TxRequest, error)
	SwapSynthToCollateral(ctx context.Context, args AnchorSwapArgs) (*domain.TxRequest, error)
}

type NovaSwapArgs struct {
	ChainID    uint64
	Router     common.Address
	TokenIn    common.Address
	TokenOut   common.Address
	SellAmount *big.Int
	MinOut     *big.Int
	Recipient  common.Address
	PriceProof []byte
	// NativeIn / NativeOut select the payable call variants.
	NativeIn  bool
	NativeOut bool
}

type NovaLiquidityArgs struct {
	ChainID     uint64
	Router      common.Address
	Token       common.Address
	Amount      *big.Int
	MinNlpOut   *big.Int
	MinTokenOut *big.Int
	Recipient   common.Address
	PriceProof  []byte
	Native      bool
}

// NovaTxBuilder builds synthetic-AMM calls. Each logical operation has
// native-in/native-out call-signature variants on the same router.
type NovaTxBuilder interface {
	Swap(ctx context.Context, args NovaSwapArgs) (*domain.TxRequest, error)
	AddLiquidity(ctx context.Context, args NovaLiquidityArgs) (*domain.TxRequest, error)
	RemoveLiquidity(ctx context.Context, args NovaLiquidityArgs) (*domain.TxRequest, error)
}

type PrismSwapArgs struct {
	ChainID    uint64
	Vault      common.Address
	PoolID     string
	TokenIn    common.Address
	TokenOut   common.Address
	SellAmount *big.Int
	MinOut     *big.Int
	Recipient  common.Address
	NativeIn   bool
	NativeOut  bool
}

type PrismTxBuilder interface {
	Swap(ctx context.Context, args PrismSwapArgs) (*domain.TxRequest, error)
}

type CrestSwapArgs struct {
	ChainID    uint64
	Router     common.Address
	Pool       common.Address
	TokenIn    common.Address
	TokenOut   common.Address
	SellAmount *big.Int
	MinOut     *big.Int
	Recipient  common.Address
}

type CrestTxBuilder interface {
	Swap(ctx context.Context, args CrestSwapArgs) (*domain.TxRequest, error)
}

// ComposeHop is one leg of a composite path executed by the periphery
// convert router.
type ComposeHop struct {
	Venue    string // "anchor", "nova", "prism", "crest"
	TokenIn  common.Address
	TokenOut common.Address
	PoolID   string // prism pool ID or crest pool address hex, empty otherwise
}

type ComposeArgs struct {
	ChainID    uint64
	Router     common.Address
	Hops       []ComposeHop
	SellAmount *big.Int
	MinOut     *big.Int
	Recipient  common.Address
	PriceProof []byte
	NativeIn   bool
	NativeOut  bool
}

// ComposerTxBuilder builds a single transaction that executes a multi-venue
// path atomically through the periphery convert router.
type ComposerTxBuilder interface {
	Convert(ctx context.Context, args ComposeArgs) (*domain.TxRequest, error)
}

// AggregatorClient is the generic off-chain aggregator fallback (Relay).
type AggregatorClient interface {
	Supports(chainID uint64, from, to common.Address) bool
	Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error)
	Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error)
}
