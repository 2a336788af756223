package routes

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func novaPrismFixture(b *txBuilders) *NovaPrismRoute {
	return NewNovaPrismRoute(novaFixture(b), prismFixture(b), testRegistry(), b)
}

func TestNovaPrismWeight(t *testing.T) {
	r := novaPrismFixture(&txBuilders{})

	w, err := r.Weight(context.Background(), weightInput(nusdToken, tkaToken))
	require.NoError(t, err)
	require.Equal(t, weightNovaPrism, w)

	w, err = r.Weight(context.Background(), weightInput(usdcToken, tkaToken))
	require.NoError(t, err)
	require.Equal(t, NotApplicable, w)
}

func TestNovaPrismQuote(t *testing.T) {
	r := novaPrismFixture(&txBuilders{})

	// 100 nUSD buys ~0.0499 WETH on Nova, which the weighted pool turns
	// into a little under 5 TKA.
	q, err := r.Quote(context.Background(), quoteArgs(nusdToken, tkaToken, e18(100)))
	require.NoError(t, err)

	low := new(big.Int).Mul(big.NewInt(49), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	require.Equal(t, 1, q.BuyAmount.Cmp(low), "got %s", q.BuyAmount)
	require.Equal(t, -1, q.BuyAmount.Cmp(e18(5)), "got %s", q.BuyAmount)

	require.EqualValues(t, 49, q.FeeBps)
	require.False(t, q.FeeChargedBeforeConvert)
	require.Equal(t, addrConvertRouter, q.AllowanceTargets[0].Spender)
}

func TestNovaPrismQuotePrismFirst(t *testing.T) {
	r := novaPrismFixture(&txBuilders{})

	q, err := r.Quote(context.Background(), quoteArgs(tkaToken, nusdToken, e18(100)))
	require.NoError(t, err)

	// Pool leg first, so its cut comes off the input.
	require.True(t, q.FeeChargedBeforeConvert)
	require.EqualValues(t, 49, q.FeeBps)
	require.Equal(t, 1, q.BuyAmount.Sign())
}

func TestNovaPrismTransactionHopOrder(t *testing.T) {
	b := &txBuilders{}
	r := novaPrismFixture(b)

	_, err := r.Transaction(context.Background(), txArgs(tkaToken, nusdToken, e18(100), 100))
	require.NoError(t, err)

	require.Len(t, b.composes, 1)
	hops := b.composes[0].Hops
	require.Len(t, hops, 2)
	require.Equal(t, "prism", hops[0].Venue)
	require.Equal(t, "p-weth-tka", hops[0].PoolID)
	require.Equal(t, "nova", hops[1].Venue)
	require.Equal(t, addrWETH, hops[1].TokenIn)
}
