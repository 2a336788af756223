package routes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrappedNativeWeight(t *testing.T) {
	r := NewWrappedNativeRoute(testTables(), &txBuilders{})

	w, err := r.Weight(context.Background(), weightInput(ethToken, wethToken))
	require.NoError(t, err)
	require.Equal(t, weightWrappedNative, w)

	w, err = r.Weight(context.Background(), weightInput(wethToken, ethToken))
	require.NoError(t, err)
	require.Equal(t, weightWrappedNative, w)

	w, err = r.Weight(context.Background(), weightInput(ethToken, usdcToken))
	require.NoError(t, err)
	require.Equal(t, NotApplicable, w)
}

func TestWrappedNativeQuoteIsIdentity(t *testing.T) {
	r := NewWrappedNativeRoute(testTables(), &txBuilders{})

	sell := e18(5)
	q, err := r.Quote(context.Background(), quoteArgs(ethToken, wethToken, sell))
	require.NoError(t, err)

	require.Equal(t, 0, q.BuyAmount.Cmp(sell))
	require.Zero(t, q.FeeBps)
	require.Empty(t, q.AllowanceTargets)
}

func TestWrappedNativeTransactionDirection(t *testing.T) {
	b := &txBuilders{}
	r := NewWrappedNativeRoute(testTables(), b)

	_, err := r.Transaction(context.Background(), txArgs(ethToken, wethToken, e18(1), 50))
	require.NoError(t, err)
	require.Len(t, b.wrapCalls, 1)
	require.Empty(t, b.unwrapCalls)

	_, err = r.Transaction(context.Background(), txArgs(wethToken, ethToken, e18(1), 50))
	require.NoError(t, err)
	require.Len(t, b.unwrapCalls, 1)
}
