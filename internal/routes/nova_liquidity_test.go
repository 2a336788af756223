package routes

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/chain"
)

// trackedState puts the WETH pool below target so deposits earn a rebate and
// withdrawals pay a tax.
func trackedState() *stubNovaState {
	return &stubNovaState{states: map[common.Address]*chain.NovaPoolState{
		addrWETH: {UsdSupply: e18(8000), TargetUsd: e18(10000), NlpPrice: px(2)},
	}}
}

func TestNovaAddLiquidityWeight(t *testing.T) {
	nova := novaFixture(&txBuilders{})
	r := NewNovaAddLiquidityRoute(nova)

	w, err := r.Weight(context.Background(), weightInput(wethToken, nlpToken))
	require.NoError(t, err)
	require.Equal(t, weightNovaAddLiq, w)

	// Only the configured NLP token mints.
	w, err = r.Weight(context.Background(), weightInput(wethToken, tkaToken))
	require.NoError(t, err)
	require.Equal(t, NotApplicable, w)

	// Unlisted deposit asset.
	w, err = r.Weight(context.Background(), weightInput(tkaToken, nlpToken))
	require.NoError(t, err)
	require.Equal(t, NotApplicable, w)
}

func TestNovaAddLiquidityQuote(t *testing.T) {
	nova := novaFixture(&txBuilders{})
	nova.state = trackedState()
	r := NewNovaAddLiquidityRoute(nova)

	// 1 WETH = 2000 USD into a pool 2000 below target: full rebate distance,
	// fee = 20 - 50*2000/10000 = 10 bps. NLP at 2 USD mints 1000 before fee.
	q, err := r.Quote(context.Background(), quoteArgs(wethToken, nlpToken, e18(1)))
	require.NoError(t, err)

	require.EqualValues(t, 10, q.FeeBps)
	want := new(big.Int).Mul(big.NewInt(999), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	require.Equal(t, 0, q.BuyAmount.Cmp(want), "got %s", q.BuyAmount)

	require.Len(t, q.AllowanceTargets, 1)
	require.Equal(t, addrNovaRouter, q.AllowanceTargets[0].Spender)
}

func TestNovaRemoveLiquidityQuote(t *testing.T) {
	nova := novaFixture(&txBuilders{})
	nova.state = trackedState()
	r := NewNovaRemoveLiquidityRoute(nova)

	// 1000 NLP at 2 USD burns 2000 USD from a pool already 2000 below
	// target: tax = 50*3000/10000 = 15, fee = 35 bps. 2000 USD buys 1 WETH.
	q, err := r.Quote(context.Background(), quoteArgs(nlpToken, wethToken, e18(1000)))
	require.NoError(t, err)

	require.EqualValues(t, 35, q.FeeBps)
	want := big.NewInt(996_500_000)
	want.Mul(want, big.NewInt(1_000_000_000))
	require.Equal(t, 0, q.BuyAmount.Cmp(want), "got %s", q.BuyAmount)
}

func TestNovaLiquidityTransactions(t *testing.T) {
	b := &txBuilders{}
	nova := novaFixture(b)
	nova.state = trackedState()

	add := NewNovaAddLiquidityRoute(nova)
	_, err := add.Transaction(context.Background(), txArgs(wethToken, nlpToken, e18(1), 100))
	require.NoError(t, err)
	require.Len(t, b.novaAdds, 1)
	require.Equal(t, addrWETH, b.novaAdds[0].Token)
	require.NotNil(t, b.novaAdds[0].MinNlpOut)
	require.Equal(t, []byte("signed"), b.novaAdds[0].PriceProof)

	rem := NewNovaRemoveLiquidityRoute(nova)
	_, err = rem.Transaction(context.Background(), txArgs(nlpToken, ethToken, e18(10), 100))
	require.NoError(t, err)
	require.Len(t, b.novaRemoves, 1)
	require.True(t, b.novaRemoves[0].Native)
	require.Equal(t, addrWETH, b.novaRemoves[0].Token)
}
