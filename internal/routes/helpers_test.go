package routes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/feemath"
)

func TestCombineLegFees(t *testing.T) {
	// Fees compound left to right: combine(30, 20) = 49, then with 4 = 52.
	fee, err := combineLegFees(30, 20, 4)
	require.NoError(t, err)
	require.EqualValues(t, 52, fee)

	fee, err = combineLegFees(25)
	require.NoError(t, err)
	require.EqualValues(t, 25, fee)

	_, err = combineLegFees(30, -1, 4)
	require.ErrorIs(t, err, feemath.ErrNegativeFee)

	_, err = combineLegFees(30, 12_000, 4)
	require.ErrorIs(t, err, feemath.ErrFeeOverDivisor)
}
