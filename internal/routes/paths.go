package routes

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/cache"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// Path resolvers connect two venues through an intermediate token found in
// the static membership tables. Membership never changes within a process,
// so resolutions cache forever; only successful resolutions are cached.

// anchorNovaPath chains the Anchor peg module with a Nova swap. AnchorFirst
// is true when the peg leg runs first (collateral in), false when it runs
// last (collateral out).
type anchorNovaPath struct {
	Synth       domain.Token
	Peg         registry.AnchorPeg
	AnchorFirst bool
}

type anchorNovaResolver struct {
	tables *registry.Tables
	reg    *registry.TokenRegistry
	cache  cache.Cache[string, anchorNovaPath]
}

func newAnchorNovaResolver(tables *registry.Tables, reg *registry.TokenRegistry) *anchorNovaResolver {
	return &anchorNovaResolver{
		tables: tables,
		reg:    reg,
		cache:  cache.NewStatic[string, anchorNovaPath](),
	}
}

func (r *anchorNovaResolver) resolve(in *domain.WeightInput) (anchorNovaPath, error) {
	key := domain.PairKey(in.From.Address, in.To.Address, in.ChainID)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return anchorNovaPath{}, ErrUnknownChain
	}

	// Collateral in: peg mints the synthetic, Nova swaps it to the target.
	if peg, ok := r.tables.PegForCollateral(in.ChainID, in.From.Address); ok {
		toAddr := in.To.PoolAddress(wrapped)
		if _, listed := r.tables.NovaAsset(in.ChainID, peg.Synthetic); listed && peg.Synthetic != toAddr {
			if _, toListed := r.tables.NovaAsset(in.ChainID, toAddr); toListed {
				synth, err := r.reg.ByAddress(peg.Synthetic, in.ChainID)
				if err != nil {
					return anchorNovaPath{}, err
				}
				p := anchorNovaPath{Synth: synth, Peg: peg, AnchorFirst: true}
				r.cache.Set(key, p)
				return p, nil
			}
		}
	}

	// Collateral out: Nova swaps to the synthetic, the peg redeems it.
	if peg, ok := r.tables.PegForCollateral(in.ChainID, in.To.Address); ok {
		fromAddr := in.From.PoolAddress(wrapped)
		if _, listed := r.tables.NovaAsset(in.ChainID, peg.Synthetic); listed && peg.Synthetic != fromAddr {
			if _, fromListed := r.tables.NovaAsset(in.ChainID, fromAddr); fromListed {
				synth, err := r.reg.ByAddress(peg.Synthetic, in.ChainID)
				if err != nil {
					return anchorNovaPath{}, err
				}
				p := anchorNovaPath{Synth: synth, Peg: peg, AnchorFirst: false}
				r.cache.Set(key, p)
				return p, nil
			}
		}
	}

	return anchorNovaPath{}, noPathErr(in)
}

// novaPrismPath chains a Nova swap with a Prism pool through a token listed
// on both. NovaFirst orders the legs.
type novaPrismPath struct {
	Mid       domain.Token
	Pool      registry.WeightedPoolDef
	NovaFirst bool
}

type novaPrismResolver struct {
	tables *registry.Tables
	reg    *registry.TokenRegistry
	cache  cache.Cache[string, novaPrismPath]
}

func newNovaPrismResolver(tables *registry.Tables, reg *registry.TokenRegistry) *novaPrismResolver {
	return &novaPrismResolver{
		tables: tables,
		reg:    reg,
		cache:  cache.NewStatic[string, novaPrismPath](),
	}
}

func (r *novaPrismResolver) resolve(in *domain.WeightInput) (novaPrismPath, error) {
	key := domain.PairKey(in.From.Address, in.To.Address, in.ChainID)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return novaPrismPath{}, ErrUnknownChain
	}
	fromAddr := in.From.PoolAddress(wrapped)
	toAddr := in.To.PoolAddress(wrapped)

	if _, fromListed := r.tables.NovaAsset(in.ChainID, fromAddr); fromListed {
		// Nova first: find a shared token inside a pool holding the target.
		mid, pool, err := r.novaPoolBridge(in.ChainID, toAddr, fromAddr)
		if err == nil {
			p := novaPrismPath{Mid: mid, Pool: pool, NovaFirst: true}
			r.cache.Set(key, p)
			return p, nil
		}
	}
	if _, toListed := r.tables.NovaAsset(in.ChainID, toAddr); toListed {
		// Prism first: pool trades From into a Nova-listed token.
		mid, pool, err := r.novaPoolBridge(in.ChainID, fromAddr, toAddr)
		if err == nil {
			p := novaPrismPath{Mid: mid, Pool: pool, NovaFirst: false}
			r.cache.Set(key, p)
			return p, nil
		}
	}
	return novaPrismPath{}, noPathErr(in)
}

// novaPoolBridge finds a Nova-listed token sharing a Prism pool with
// poolSide, excluding both endpoints.
func (r *novaPrismResolver) novaPoolBridge(chainID uint64, poolSide, exclude common.Address) (domain.Token, registry.WeightedPoolDef, error) {
	for _, pool := range r.tables.PrismPoolsWith(chainID, poolSide) {
		for _, tk := range pool.Tokens {
			if tk == poolSide || tk == exclude {
				continue
			}
			if _, listed := r.tables.NovaAsset(chainID, tk); !listed {
				continue
			}
			mid, err := r.reg.ByAddress(tk, chainID)
			if err != nil {
				continue
			}
			return mid, pool, nil
		}
	}
	return domain.Token{}, registry.WeightedPoolDef{}, ErrNoPath
}

// anchorVenuePath is the three-hop shape shared by the anchor-nova-prism and
// anchor-nova-crest composites: peg leg, Nova leg, pool leg. AnchorFirst
// orders the whole chain.
type anchorVenuePath struct {
	Synth       domain.Token
	Mid         domain.Token
	Peg         registry.AnchorPeg
	AnchorFirst bool

	PrismPool registry.WeightedPoolDef // set for the prism variant
	CrestPool registry.StablePoolDef   // set for the crest variant
}

type anchorVenueResolver struct {
	tables *registry.Tables
	reg    *registry.TokenRegistry
	crest  bool // bridge through Crest pools instead of Prism pools
	cache  cache.Cache[string, anchorVenuePath]
}

func newAnchorVenueResolver(tables *registry.Tables, reg *registry.TokenRegistry, crest bool) *anchorVenueResolver {
	return &anchorVenueResolver{
		tables: tables,
		reg:    reg,
		crest:  crest,
		cache:  cache.NewStatic[string, anchorVenuePath](),
	}
}

func (r *anchorVenueResolver) resolve(in *domain.WeightInput) (anchorVenuePath, error) {
	key := domain.PairKey(in.From.Address, in.To.Address, in.ChainID)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	wrapped, ok := r.tables.WrappedNative(in.ChainID)
	if !ok {
		return anchorVenuePath{}, ErrUnknownChain
	}

	// Collateral in: peg, Nova to the bridge token, pool to the target.
	if peg, ok := r.tables.PegForCollateral(in.ChainID, in.From.Address); ok {
		if _, listed := r.tables.NovaAsset(in.ChainID, peg.Synthetic); listed {
			toAddr := in.To.PoolAddress(wrapped)
			if p, err := r.bridged(in.ChainID, peg, toAddr, true); err == nil {
				r.cache.Set(key, p)
				return p, nil
			}
		}
	}
	// Collateral out: pool to the bridge token, Nova to the synthetic, peg.
	if peg, ok := r.tables.PegForCollateral(in.ChainID, in.To.Address); ok {
		if _, listed := r.tables.NovaAsset(in.ChainID, peg.Synthetic); listed {
			fromAddr := in.From.PoolAddress(wrapped)
			if p, err := r.bridged(in.ChainID, peg, fromAddr, false); err == nil {
				r.cache.Set(key, p)
				return p, nil
			}
		}
	}
	return anchorVenuePath{}, noPathErr(in)
}

func (r *anchorVenueResolver) bridged(chainID uint64, peg registry.AnchorPeg, poolSide common.Address, anchorFirst bool) (anchorVenuePath, error) {
	synth, err := r.reg.ByAddress(peg.Synthetic, chainID)
	if err != nil {
		return anchorVenuePath{}, err
	}

	pick := func(tokens []common.Address) (domain.Token, bool) {
		for _, tk := range tokens {
			if tk == poolSide || tk == peg.Synthetic {
				continue
			}
			if _, listed := r.tables.NovaAsset(chainID, tk); !listed {
				continue
			}
			if mid, err := r.reg.ByAddress(tk, chainID); err == nil {
				return mid, true
			}
		}
		return domain.Token{}, false
	}

	if r.crest {
		for _, pool := range r.tables.CrestPoolsWith(chainID, poolSide) {
			if mid, ok := pick(pool.Tokens); ok {
				return anchorVenuePath{Synth: synth, Mid: mid, Peg: peg, AnchorFirst: anchorFirst, CrestPool: pool}, nil
			}
		}
	} else {
		for _, pool := range r.tables.PrismPoolsWith(chainID, poolSide) {
			if mid, ok := pick(pool.Tokens); ok {
				return anchorVenuePath{Synth: synth, Mid: mid, Peg: peg, AnchorFirst: anchorFirst, PrismPool: pool}, nil
			}
		}
	}
	return anchorVenuePath{}, ErrNoPath
}

func noPathErr(in *domain.WeightInput) error {
	return fmt.Errorf("%w: %s -> %s", ErrNoPath, in.From.Symbol, in.To.Symbol)
}
