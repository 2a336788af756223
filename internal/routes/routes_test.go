package routes

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/registry"
)

// Shared fixture: one chain with every venue populated. Token and contract
// addresses are synthetic but stable across tests.

const testChain uint64 = 1

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

var (
	addrWETH  = addr(0x01)
	addrUSDC  = addr(0x02)
	addrNUSD  = addr(0x03)
	addrNEUR  = addr(0x04)
	addrNLP   = addr(0x05)
	addrTKA   = addr(0x06)
	addrUSDT  = addr(0x07)
	addrCrest = addr(0x20)

	addrAnchorModule  = addr(0x10)
	addrNovaRouter    = addr(0x11)
	addrPrismVault    = addr(0x12)
	addrCrestRouter   = addr(0x13)
	addrConvertRouter = addr(0x14)

	ethToken  = domain.Token{Address: domain.NativeAddress, Symbol: "ETH", Decimals: 18, ChainID: testChain, Roles: domain.RoleNative}
	wethToken = domain.Token{Address: addrWETH, Symbol: "WETH", Decimals: 18, ChainID: testChain, Roles: domain.RoleWrappedNative}
	usdcToken = domain.Token{Address: addrUSDC, Symbol: "USDC", Decimals: 6, ChainID: testChain, Roles: domain.RoleStable | domain.RolePeggedCollateral}
	nusdToken = domain.Token{Address: addrNUSD, Symbol: "nUSD", Decimals: 18, ChainID: testChain, Roles: domain.RoleSynthetic}
	neurToken = domain.Token{Address: addrNEUR, Symbol: "nEUR", Decimals: 18, ChainID: testChain, Roles: domain.RoleSynthetic}
	nlpToken  = domain.Token{Address: addrNLP, Symbol: "NLP", Decimals: 18, ChainID: testChain, Roles: domain.RoleLiquidity}
	tkaToken  = domain.Token{Address: addrTKA, Symbol: "TKA", Decimals: 18, ChainID: testChain}
	usdtToken = domain.Token{Address: addrUSDT, Symbol: "USDT", Decimals: 6, ChainID: testChain, Roles: domain.RoleStable}
)

// euroHours keeps the EUR market open Monday 08:00 through Friday 21:00 UTC.
var euroHours = &registry.MarketHours{OpenWeekday: 1, OpenHour: 8, CloseWeekday: 5, CloseHour: 21}

func testTables() *registry.Tables {
	return registry.NewTables(map[uint64]*registry.ChainTables{
		testChain: {
			Contracts: registry.Contracts{
				AnchorModule:  addrAnchorModule,
				NovaRouter:    addrNovaRouter,
				NovaNlp:       addrNLP,
				PrismVault:    addrPrismVault,
				CrestRouter:   addrCrestRouter,
				ConvertRouter: addrConvertRouter,
				WrappedNative: addrWETH,
			},
			PrismPools: []registry.WeightedPoolDef{
				{PoolID: "p-weth-tka", Tokens: []common.Address{addrWETH, addrTKA}},
			},
			CrestPools: []registry.StablePoolDef{
				{Pool: addrCrest, Tokens: []common.Address{addrWETH, addrUSDT}, PoolFee: 4, FeeDenominator: 10000},
			},
			NovaAssets: []registry.NovaAsset{
				{Token: addrWETH, OraclePair: "ETH/USD", SpreadBps: 10},
				{Token: addrNUSD, OraclePair: "NUSD/USD"},
				{Token: addrNEUR, OraclePair: "EUR/USD", SpreadBps: 5, Hours: euroHours},
			},
			NovaFees:   registry.NovaFees{BaseFeeBps: 20, TaxFeeBps: 50},
			AnchorPegs: []registry.AnchorPeg{{Collateral: addrUSDC, Synthetic: addrNUSD, FeeBps: 30}},
		},
	})
}

func testRegistry() *registry.TokenRegistry {
	reg := registry.NewTokenRegistry()
	for _, t := range []domain.Token{ethToken, wethToken, usdcToken, nusdToken, neurToken, nlpToken, tkaToken, usdtToken} {
		reg.Register(t)
	}
	return reg
}

// weekdayNoon is inside every configured market window.
var weekdayNoon = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) // Wednesday

// saturdayNoon is outside the EUR window.
var saturdayNoon = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

func px(v int64) *big.Int { return new(big.Int).Mul(big.NewInt(v), big.NewInt(1e8)) }

func e18(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type stubOracle struct {
	prices map[string]chain.MarketPrice
	proof  []byte
	err    error
}

func (o *stubOracle) SignedPrices(_ context.Context, pairs []string) (*chain.SignedPrices, error) {
	if o.err != nil {
		return nil, o.err
	}
	out := &chain.SignedPrices{Proof: o.proof}
	for _, p := range pairs {
		if mp, ok := o.prices[p]; ok {
			out.Prices = append(out.Prices, mp)
		}
	}
	return out, nil
}

// flatOracle quotes bid == ask for every pair, no spread.
func flatOracle() *stubOracle {
	return &stubOracle{
		proof: []byte("signed"),
		prices: map[string]chain.MarketPrice{
			"ETH/USD":  {Pair: "ETH/USD", Index: px(2000), BestBid: px(2000), BestAsk: px(2000)},
			"NUSD/USD": {Pair: "NUSD/USD", Index: px(1), BestBid: px(1), BestAsk: px(1)},
			"EUR/USD":  {Pair: "EUR/USD", Index: big.NewInt(125e6), BestBid: big.NewInt(125e6), BestAsk: big.NewInt(125e6)},
		},
	}
}

type stubNovaState struct {
	states map[common.Address]*chain.NovaPoolState
	err    error
}

func (s *stubNovaState) PoolComposition(_ context.Context, _ uint64, token common.Address) (*chain.NovaPoolState, error) {
	if s.err != nil {
		return nil, s.err
	}
	if st, ok := s.states[token]; ok {
		return st, nil
	}
	return &chain.NovaPoolState{UsdSupply: big.NewInt(0), TargetUsd: big.NewInt(0), NlpPrice: px(1)}, nil
}

type stubPoolState struct {
	state *chain.WeightedPoolState
	err   error
}

func (s *stubPoolState) WeightedPoolState(_ context.Context, _ uint64, _ string) (*chain.WeightedPoolState, error) {
	return s.state, s.err
}

type stubStableQuoter struct {
	out *big.Int
	err error
}

func (s *stubStableQuoter) AmountOut(_ context.Context, _ uint64, _, _, _ common.Address, _ *big.Int) (*big.Int, error) {
	return s.out, s.err
}

// txBuilders records the last call each venue builder received and returns a
// marker transaction.
type txBuilders struct {
	wrapCalls   []chain.WrapArgs
	unwrapCalls []chain.WrapArgs
	anchorC2S   []chain.AnchorSwapArgs
	anchorS2C   []chain.AnchorSwapArgs
	novaSwaps   []chain.NovaSwapArgs
	novaAdds    []chain.NovaLiquidityArgs
	novaRemoves []chain.NovaLiquidityArgs
	prismSwaps  []chain.PrismSwapArgs
	crestSwaps  []chain.CrestSwapArgs
	composes    []chain.ComposeArgs
}

func marker(to common.Address) *domain.TxRequest {
	return &domain.TxRequest{To: to, Data: []byte{0x01}}
}

func (b *txBuilders) Wrap(_ context.Context, a chain.WrapArgs) (*domain.TxRequest, error) {
	b.wrapCalls = append(b.wrapCalls, a)
	return marker(a.Wrapped), nil
}

func (b *txBuilders) Unwrap(_ context.Context, a chain.WrapArgs) (*domain.TxRequest, error) {
	b.unwrapCalls = append(b.unwrapCalls, a)
	return marker(a.Wrapped), nil
}

func (b *txBuilders) SwapCollateralToSynth(_ context.Context, a chain.AnchorSwapArgs) (*domain.TxRequest, error) {
	b.anchorC2S = append(b.anchorC2S, a)
	return marker(a.Module), nil
}

func (b *txBuilders) SwapSynthToCollateral(_ context.Context, a chain.AnchorSwapArgs) (*domain.TxRequest, error) {
	b.anchorS2C = append(b.anchorS2C, a)
	return marker(a.Module), nil
}

func (b *txBuilders) Swap(_ context.Context, a chain.NovaSwapArgs) (*domain.TxRequest, error) {
	b.novaSwaps = append(b.novaSwaps, a)
	return marker(a.Router), nil
}

func (b *txBuilders) AddLiquidity(_ context.Context, a chain.NovaLiquidityArgs) (*domain.TxRequest, error) {
	b.novaAdds = append(b.novaAdds, a)
	return marker(a.Router), nil
}

func (b *txBuilders) RemoveLiquidity(_ context.Context, a chain.NovaLiquidityArgs) (*domain.TxRequest, error) {
	b.novaRemoves = append(b.novaRemoves, a)
	return marker(a.Router), nil
}

// prismBuilder and crestBuilder wrap txBuilders because both venues name
// their method Swap.
type prismBuilder struct{ b *txBuilders }

func (p prismBuilder) Swap(_ context.Context, a chain.PrismSwapArgs) (*domain.TxRequest, error) {
	p.b.prismSwaps = append(p.b.prismSwaps, a)
	return marker(a.Vault), nil
}

type crestBuilder struct{ b *txBuilders }

func (c crestBuilder) Swap(_ context.Context, a chain.CrestSwapArgs) (*domain.TxRequest, error) {
	c.b.crestSwaps = append(c.b.crestSwaps, a)
	return marker(a.Router), nil
}

func (b *txBuilders) Convert(_ context.Context, a chain.ComposeArgs) (*domain.TxRequest, error) {
	b.composes = append(b.composes, a)
	return marker(a.Router), nil
}

type stubSigner struct {
	addr     common.Address
	provider domain.Provider
}

func (s stubSigner) Address() common.Address   { return s.addr }
func (s stubSigner) Provider() domain.Provider { return s.provider }

var signerAddr = addr(0xAA)

func weightInput(from, to domain.Token) *domain.WeightInput {
	return &domain.WeightInput{From: from, To: to, ChainID: testChain}
}

func quoteArgs(from, to domain.Token, sell *big.Int) *domain.QuoteArgs {
	return &domain.QuoteArgs{WeightInput: *weightInput(from, to), SellAmount: sell}
}

func txArgs(from, to domain.Token, sell *big.Int, slippageBps int64) *domain.TransactionArgs {
	return &domain.TransactionArgs{
		QuoteArgs:   *quoteArgs(from, to, sell),
		Signer:      stubSigner{addr: signerAddr},
		SlippageBps: slippageBps,
	}
}

// novaFixture wires a NovaSwapRoute against the flat oracle with a pinned
// clock.
func novaFixture(b *txBuilders) *NovaSwapRoute {
	r := NewNovaSwapRoute(testTables(), flatOracle(), &stubNovaState{}, b)
	r.now = func() time.Time { return weekdayNoon }
	return r
}
