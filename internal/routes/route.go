// Package routes implements the venue adapters. Every route exposes the same
// three-operation contract: a side-effect-free applicability weight, an
// exact-in quote, and an unsigned transaction for the quoted path. Routes are
// stateless apart from optional per-process path caches.
package routes

import (
	"context"
	"errors"

	"github.com/hxuan190/convert-engine/internal/domain"
)

// Weight is a route's static priority for a pair. Zero means the venue
// cannot service the request; that is an ordinary outcome, not an error.
// Ties between nonzero weights are broken by registration order.
type Weight int

const NotApplicable Weight = 0

func (w Weight) Applicable() bool { return w > NotApplicable }

// Per-venue priority constants. These are routing configuration: a composite
// must outrank the venues it strictly improves on and lose to the venues
// that serve the pair directly.
const (
	weightWrappedNative   Weight = 600
	weightAnchorSwap      Weight = 500
	weightNovaAddLiq      Weight = 460
	weightNovaRemoveLiq   Weight = 450
	weightNovaSwap        Weight = 400
	weightAnchorNova      Weight = 350
	weightAnchorNovaPrism Weight = 340
	weightAnchorNovaCrest Weight = 330
	weightNovaPrism       Weight = 320
	weightPrismSwap       Weight = 200
	weightCrestSwap       Weight = 180
	weightAggregator      Weight = 100
)

// Route is the plug-in contract the router selects over.
type Route interface {
	Name() string

	// Weight must not do chain I/O and must prefer returning NotApplicable
	// over failing for ordinary "wrong pair" conditions.
	Weight(ctx context.Context, in *domain.WeightInput) (Weight, error)

	Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, error)

	Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error)
}

var (
	ErrNoPath             = errors.New("no conversion path")
	ErrUnknownChain       = errors.New("chain not configured")
	ErrMissingPoolState   = errors.New("pool state unavailable")
	ErrMissingPrice       = errors.New("oracle price unavailable")
	ErrFeeExceedsSlippage = errors.New("venue fee exceeds slippage tolerance")
)

// Gas estimates per venue call shape. Estimation accuracy is out of scope;
// these only have to be sane defaults for quote display and fee valuation.
const (
	gasWrap          uint64 = 50_000
	gasAnchorSwap    uint64 = 180_000
	gasNovaSwap      uint64 = 420_000
	gasNovaLiquidity uint64 = 520_000
	gasPrismSwap     uint64 = 240_000
	gasCrestSwap     uint64 = 260_000
	gasPerExtraHop   uint64 = 160_000
)
