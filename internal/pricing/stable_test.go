package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripPoolFee(t *testing.T) {
	out, err := StripPoolFee(big.NewInt(1000), big.NewInt(4), big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, int64(1666), out.Int64())
}

func TestStripPoolFeeZeroFee(t *testing.T) {
	out, err := StripPoolFee(big.NewInt(1000), big.NewInt(0), big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, int64(1000), out.Int64())
}

func TestStripPoolFeeFullFeeIsConfigError(t *testing.T) {
	_, err := StripPoolFee(big.NewInt(1000), big.NewInt(10), big.NewInt(10))
	require.ErrorIs(t, err, ErrFeeEqualsDenom)

	// a fee above the denominator is just as broken
	_, err = StripPoolFee(big.NewInt(1000), big.NewInt(11), big.NewInt(10))
	require.ErrorIs(t, err, ErrFeeEqualsDenom)
}

func TestStripPoolFeeBadDenominator(t *testing.T) {
	_, err := StripPoolFee(big.NewInt(1000), big.NewInt(1), big.NewInt(0))
	require.ErrorIs(t, err, ErrBadFeeDenom)
}
