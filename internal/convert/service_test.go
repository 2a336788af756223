package convert

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/routes"
	"github.com/hxuan190/convert-engine/internal/services/router"
)

type echoRoute struct {
	name   string
	weight routes.Weight
	quote  *domain.RawQuote
	tx     *domain.TxRequest
}

func (r *echoRoute) Name() string { return r.name }

func (r *echoRoute) Weight(context.Context, *domain.WeightInput) (routes.Weight, error) {
	return r.weight, nil
}

func (r *echoRoute) Quote(context.Context, *domain.QuoteArgs) (*domain.RawQuote, error) {
	return r.quote, nil
}

func (r *echoRoute) Transaction(context.Context, *domain.TransactionArgs) (*domain.TxRequest, error) {
	return r.tx, nil
}

type fakeProvider struct {
	chainID   uint64
	feeMarket bool

	gasPrice *big.Int
	tipCap   *big.Int
}

func (p *fakeProvider) ChainID(context.Context) (uint64, error) { return p.chainID, nil }

func (p *fakeProvider) SupportsFeeMarket(context.Context) (bool, error) { return p.feeMarket, nil }

func (p *fakeProvider) SuggestGasPrice(context.Context) (*big.Int, error) {
	return p.gasPrice, nil
}

func (p *fakeProvider) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return p.tipCap, nil
}

type fakeSigner struct {
	addr     common.Address
	provider domain.Provider
}

func (s *fakeSigner) Address() common.Address   { return s.addr }
func (s *fakeSigner) Provider() domain.Provider { return s.provider }

type fakePricer struct {
	values map[string]decimal.Decimal
}

func (p *fakePricer) UsdValue(_ context.Context, token domain.Token, _ *big.Int) (decimal.Decimal, error) {
	v, ok := p.values[token.Symbol]
	if !ok {
		return decimal.Zero, errors.New("no feed")
	}
	return v, nil
}

type fakeResolver struct {
	provider domain.Provider
	err      error
	calls    int
}

func (r *fakeResolver) Default(_ context.Context, _ uint64) (domain.Provider, error) {
	r.calls++
	return r.provider, r.err
}

func token(symbol string, chainID uint64, b byte) domain.Token {
	return domain.Token{
		Symbol:   symbol,
		ChainID:  chainID,
		Address:  common.BytesToAddress([]byte{b}),
		Decimals: 18,
	}
}

func quoteArgs(from, to domain.Token) *domain.QuoteArgs {
	return &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: from, To: to, ChainID: from.ChainID},
		SellAmount:  big.NewInt(1e18),
	}
}

func testService(route *echoRoute, usd *fakePricer, resolver *fakeResolver) *Service {
	svc := NewService(router.New(route), nil, nil)
	if usd != nil {
		svc.usd = usd
	}
	if resolver != nil {
		svc.providers = resolver
	}
	return svc
}

func TestGetQuoteRejectsCrossChainPairs(t *testing.T) {
	svc := testService(&echoRoute{name: "any", weight: 100}, nil, nil)

	_, err := svc.GetQuote(context.Background(), quoteArgs(token("AAA", 1, 0x01), token("BBB", 10, 0x02)))
	require.ErrorIs(t, err, ErrDifferentChains)
	require.Contains(t, err.Error(), "different chains")
}

func TestGetQuoteEnrichesWithUsdValues(t *testing.T) {
	raw := &domain.RawQuote{
		SellAmount: big.NewInt(1e18),
		BuyAmount:  big.NewInt(2e18),
		FeeBps:     30,
	}
	usd := &fakePricer{values: map[string]decimal.Decimal{
		"AAA": decimal.NewFromInt(2000),
		"BBB": decimal.NewFromInt(1994),
	}}
	svc := testService(&echoRoute{name: "direct", weight: 100, quote: raw}, usd, nil)

	q, err := svc.GetQuote(context.Background(), quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02)))
	require.NoError(t, err)
	require.Equal(t, "direct", q.Route)
	require.Equal(t, raw.BuyAmount, q.BuyAmount)
	require.NotNil(t, q.ValueInUsd)
	require.True(t, q.ValueInUsd.Equal(decimal.NewFromInt(2000)))
	require.NotNil(t, q.ValueOutUsd)
	require.True(t, q.ValueOutUsd.Equal(decimal.NewFromInt(1994)))
}

func TestGetQuoteToleratesValuationMisses(t *testing.T) {
	raw := &domain.RawQuote{SellAmount: big.NewInt(1e18), BuyAmount: big.NewInt(2e18)}
	usd := &fakePricer{values: map[string]decimal.Decimal{"AAA": decimal.NewFromInt(2000)}}
	svc := testService(&echoRoute{name: "direct", weight: 100, quote: raw}, usd, nil)

	q, err := svc.GetQuote(context.Background(), quoteArgs(token("AAA", 1, 0x01), token("OBSCURE", 1, 0x02)))
	require.NoError(t, err)
	require.NotNil(t, q.ValueInUsd)
	require.Nil(t, q.ValueOutUsd)
}

func TestGetQuoteResolvesDefaultProvider(t *testing.T) {
	resolver := &fakeResolver{provider: &fakeProvider{chainID: 1}}
	svc := testService(&echoRoute{name: "direct", weight: 100, quote: &domain.RawQuote{}}, nil, resolver)

	args := quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02))
	_, err := svc.GetQuote(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, 1, resolver.calls)
	require.NotNil(t, args.Provider)
}

func TestGetQuoteRejectsProviderOnWrongChain(t *testing.T) {
	svc := testService(&echoRoute{name: "direct", weight: 100, quote: &domain.RawQuote{}}, nil, nil)

	args := quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02))
	args.Provider = &fakeProvider{chainID: 10}
	_, err := svc.GetQuote(context.Background(), args)
	require.ErrorIs(t, err, ErrDifferentChains)
}

func TestGetSwapRequiresConnectedSigner(t *testing.T) {
	svc := testService(&echoRoute{name: "direct", weight: 100}, nil, nil)

	args := &domain.TransactionArgs{QuoteArgs: *quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02))}
	_, err := svc.GetSwap(context.Background(), args)
	require.ErrorIs(t, err, ErrNoProvider)

	args.Signer = &fakeSigner{addr: common.BytesToAddress([]byte{0xAA})}
	_, err = svc.GetSwap(context.Background(), args)
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestGetSwapFillsLegacyGasPrice(t *testing.T) {
	tx := &domain.TxRequest{To: common.BytesToAddress([]byte{0x14}), Gas: 180_000}
	svc := testService(&echoRoute{name: "direct", weight: 100, tx: tx}, nil, nil)

	provider := &fakeProvider{chainID: 1, feeMarket: false, gasPrice: big.NewInt(3_000_000_000)}
	args := &domain.TransactionArgs{
		QuoteArgs: *quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02)),
		Signer:    &fakeSigner{addr: common.BytesToAddress([]byte{0xAA}), provider: provider},
	}

	got, err := svc.GetSwap(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(3_000_000_000), got.GasPrice)
	require.Nil(t, got.GasTipCap)
	require.Nil(t, got.GasFeeCap)
}

func TestGetSwapFillsDynamicFeeFields(t *testing.T) {
	tx := &domain.TxRequest{To: common.BytesToAddress([]byte{0x14}), GasPrice: big.NewInt(1)}
	svc := testService(&echoRoute{name: "direct", weight: 100, tx: tx}, nil, nil)

	provider := &fakeProvider{
		chainID:   1,
		feeMarket: true,
		gasPrice:  big.NewInt(30_000_000_000),
		tipCap:    big.NewInt(1_000_000_000),
	}
	args := &domain.TransactionArgs{
		QuoteArgs: *quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02)),
		Signer:    &fakeSigner{addr: common.BytesToAddress([]byte{0xAA}), provider: provider},
	}

	got, err := svc.GetSwap(context.Background(), args)
	require.NoError(t, err)
	require.Nil(t, got.GasPrice)
	require.Equal(t, big.NewInt(1_000_000_000), got.GasTipCap)
	require.Equal(t, big.NewInt(30_000_000_000), got.GasFeeCap)
}

func TestGetSwapRejectsSignerOnWrongChain(t *testing.T) {
	svc := testService(&echoRoute{name: "direct", weight: 100, tx: &domain.TxRequest{}}, nil, nil)

	args := &domain.TransactionArgs{
		QuoteArgs: *quoteArgs(token("AAA", 1, 0x01), token("BBB", 1, 0x02)),
		Signer:    &fakeSigner{provider: &fakeProvider{chainID: 137}},
	}
	_, err := svc.GetSwap(context.Background(), args)
	require.ErrorIs(t, err, ErrDifferentChains)
}
