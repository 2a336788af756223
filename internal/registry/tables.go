package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
)

// Contracts are the per-chain venue entry points. Allowance targets and
// transaction destinations come from here.
type Contracts struct {
	AnchorModule  common.Address `json:"anchorModule"`
	NovaRouter    common.Address `json:"novaRouter"`
	NovaNlp       common.Address `json:"novaNlp"`
	PrismVault    common.Address `json:"prismVault"`
	CrestRouter   common.Address `json:"crestRouter"`
	ConvertRouter common.Address `json:"convertRouter"` // periphery executing composite paths
	WrappedNative common.Address `json:"wrappedNative"`
}

// WeightedPoolDef is a Prism pool's static membership entry.
type WeightedPoolDef struct {
	PoolID  string           `json:"poolId"`
	Factory common.Address   `json:"factory"`
	Tokens  []common.Address `json:"tokens"`
}

// StablePoolDef is a Crest pool's static membership entry. PoolFee is
// expressed in the venue's own FeeDenominator precision, not bps.
type StablePoolDef struct {
	Pool           common.Address   `json:"pool"`
	Tokens         []common.Address `json:"tokens"`
	PoolFee        int64            `json:"poolFee"`
	FeeDenominator int64            `json:"feeDenominator"`
}

// MarketHours is an optional trading window for FX-style Nova markets, in
// UTC. Zero value means always open.
type MarketHours struct {
	OpenWeekday  int `json:"openWeekday"` // 0 = Sunday
	OpenHour     int `json:"openHour"`
	CloseWeekday int `json:"closeWeekday"`
	CloseHour    int `json:"closeHour"`
}

// NovaAsset describes a token listed on the Nova synthetic AMM.
type NovaAsset struct {
	Token      common.Address `json:"token"`
	OraclePair string         `json:"oraclePair"` // e.g. "ETH/USD"
	SpreadBps  int64          `json:"spreadBps"`
	Hours      *MarketHours   `json:"hours,omitempty"`
}

// AnchorPeg is a 1:1 fee-adjusted peg between a collateral token and the
// synthetic the Anchor module mints for it.
type AnchorPeg struct {
	Collateral common.Address `json:"collateral"`
	Synthetic  common.Address `json:"synthetic"`
	FeeBps     int64          `json:"feeBps"`
}

// NovaFees are the venue-wide dynamic fee parameters.
type NovaFees struct {
	BaseFeeBps int64 `json:"baseFeeBps"`
	TaxFeeBps  int64 `json:"taxFeeBps"`
}

// ChainTables is everything the resolvers know about one chain's venues.
type ChainTables struct {
	Contracts Contracts `json:"contracts"`

	PrismPools []WeightedPoolDef `json:"prismPools"`
	CrestPools []StablePoolDef   `json:"crestPools"`

	NovaAssets []NovaAsset `json:"novaAssets"`
	NovaFees   NovaFees    `json:"novaFees"`

	AnchorPegs []AnchorPeg `json:"anchorPegs"`

	// ReversedPairs lists oracle pairs quoted base-inverted, e.g. "USD/JPY"
	// feeds where the synthetic is the quote currency.
	ReversedPairs []string `json:"reversedPairs"`
}

// Tables holds the per-chain venue membership, loaded once at startup.
// Static for the process lifetime; resolvers cache lookups against it
// without invalidation.
type Tables struct {
	chains map[uint64]*chainIndex
}

type chainIndex struct {
	def *ChainTables

	novaByToken     map[common.Address]NovaAsset
	pegByCollateral map[common.Address]AnchorPeg
	pegBySynthetic  map[common.Address]AnchorPeg
	reversed        map[string]struct{}
}

// LoadTables reads a venue-table JSON file, one ChainTables per chain ID.
func LoadTables(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue tables: %w", err)
	}
	var defs map[uint64]*ChainTables
	if err := sonic.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("decode venue tables: %w", err)
	}
	return NewTables(defs), nil
}

func NewTables(defs map[uint64]*ChainTables) *Tables {
	t := &Tables{chains: make(map[uint64]*chainIndex, len(defs))}
	for chainID, def := range defs {
		idx := &chainIndex{
			def:             def,
			novaByToken:     make(map[common.Address]NovaAsset, len(def.NovaAssets)),
			pegByCollateral: make(map[common.Address]AnchorPeg, len(def.AnchorPegs)),
			pegBySynthetic:  make(map[common.Address]AnchorPeg, len(def.AnchorPegs)),
			reversed:        make(map[string]struct{}, len(def.ReversedPairs)),
		}
		for _, a := range def.NovaAssets {
			idx.novaByToken[a.Token] = a
		}
		for _, p := range def.AnchorPegs {
			idx.pegByCollateral[p.Collateral] = p
			idx.pegBySynthetic[p.Synthetic] = p
		}
		for _, pair := range def.ReversedPairs {
			idx.reversed[strings.ToUpper(pair)] = struct{}{}
		}
		t.chains[chainID] = idx
	}
	return t
}

func (t *Tables) chain(chainID uint64) *chainIndex {
	return t.chains[chainID]
}

func (t *Tables) Contracts(chainID uint64) (Contracts, bool) {
	if c := t.chain(chainID); c != nil {
		return c.def.Contracts, true
	}
	return Contracts{}, false
}

func (t *Tables) WrappedNative(chainID uint64) (common.Address, bool) {
	c, ok := t.Contracts(chainID)
	if !ok || c.WrappedNative == (common.Address{}) {
		return common.Address{}, false
	}
	return c.WrappedNative, true
}

// PrismPoolFor finds a weighted pool containing both tokens.
func (t *Tables) PrismPoolFor(chainID uint64, a, b common.Address) (WeightedPoolDef, bool) {
	c := t.chain(chainID)
	if c == nil {
		return WeightedPoolDef{}, false
	}
	for _, p := range c.def.PrismPools {
		if containsToken(p.Tokens, a) && containsToken(p.Tokens, b) {
			return p, true
		}
	}
	return WeightedPoolDef{}, false
}

// PrismPoolsWith lists weighted pools containing the token.
func (t *Tables) PrismPoolsWith(chainID uint64, token common.Address) []WeightedPoolDef {
	c := t.chain(chainID)
	if c == nil {
		return nil
	}
	var out []WeightedPoolDef
	for _, p := range c.def.PrismPools {
		if containsToken(p.Tokens, token) {
			out = append(out, p)
		}
	}
	return out
}

// CrestPoolFor finds a stable pool containing both tokens.
func (t *Tables) CrestPoolFor(chainID uint64, a, b common.Address) (StablePoolDef, bool) {
	c := t.chain(chainID)
	if c == nil {
		return StablePoolDef{}, false
	}
	for _, p := range c.def.CrestPools {
		if containsToken(p.Tokens, a) && containsToken(p.Tokens, b) {
			return p, true
		}
	}
	return StablePoolDef{}, false
}

// CrestPoolsWith lists stable pools containing the token.
func (t *Tables) CrestPoolsWith(chainID uint64, token common.Address) []StablePoolDef {
	c := t.chain(chainID)
	if c == nil {
		return nil
	}
	var out []StablePoolDef
	for _, p := range c.def.CrestPools {
		if containsToken(p.Tokens, token) {
			out = append(out, p)
		}
	}
	return out
}

func (t *Tables) NovaAsset(chainID uint64, token common.Address) (NovaAsset, bool) {
	c := t.chain(chainID)
	if c == nil {
		return NovaAsset{}, false
	}
	a, ok := c.novaByToken[token]
	return a, ok
}

func (t *Tables) NovaFees(chainID uint64) NovaFees {
	if c := t.chain(chainID); c != nil {
		return c.def.NovaFees
	}
	return NovaFees{}
}

func (t *Tables) PegForCollateral(chainID uint64, collateral common.Address) (AnchorPeg, bool) {
	c := t.chain(chainID)
	if c == nil {
		return AnchorPeg{}, false
	}
	p, ok := c.pegByCollateral[collateral]
	return p, ok
}

func (t *Tables) PegForSynthetic(chainID uint64, synthetic common.Address) (AnchorPeg, bool) {
	c := t.chain(chainID)
	if c == nil {
		return AnchorPeg{}, false
	}
	p, ok := c.pegBySynthetic[synthetic]
	return p, ok
}

func (t *Tables) IsReversedPair(chainID uint64, pair string) bool {
	c := t.chain(chainID)
	if c == nil {
		return false
	}
	_, ok := c.reversed[strings.ToUpper(pair)]
	return ok
}

func containsToken(tokens []common.Address, want common.Address) bool {
	for _, tk := range tokens {
		if tk == want {
			return true
		}
	}
	return false
}
