package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	baseFee = int64(30)
	taxFee  = int64(50)
)

func TestRebalanceFeeZeroTarget(t *testing.T) {
	fee := RebalanceFeeBps(big.NewInt(1000), big.NewInt(5000), big.NewInt(0), baseFee, taxFee, true)
	require.Equal(t, baseFee, fee)
	fee = RebalanceFeeBps(big.NewInt(1000), big.NewInt(5000), nil, baseFee, taxFee, true)
	require.Equal(t, baseFee, fee)
}

func TestRebalanceFeeTaxOnImbalance(t *testing.T) {
	// Pool at target; adding moves it away. initialDiff=0, nextDiff=1000,
	// avg=500, tax = 50*500/10000 = 2
	fee := RebalanceFeeBps(big.NewInt(1000), big.NewInt(10_000), big.NewInt(10_000), baseFee, taxFee, true)
	require.Equal(t, baseFee+2, fee)
}

func TestRebalanceFeeRebateOnRebalance(t *testing.T) {
	// Pool 2000 under target; adding 1000 moves it closer.
	// rebate = 50*2000/10000 = 10
	fee := RebalanceFeeBps(big.NewInt(1000), big.NewInt(8_000), big.NewInt(10_000), baseFee, taxFee, true)
	require.Equal(t, baseFee-10, fee)
}

func TestRebalanceFeeNeverNegative(t *testing.T) {
	// Enormous deviation: rebate would exceed the base fee.
	fee := RebalanceFeeBps(big.NewInt(40_000), big.NewInt(50_000), big.NewInt(10_000), baseFee, taxFee, false)
	require.GreaterOrEqual(t, fee, int64(0))
	require.Equal(t, int64(0), fee)
}

func TestRebalanceFeeExactRestoreIsMaxRebate(t *testing.T) {
	target := big.NewInt(10_000)
	delta := big.NewInt(3_000)

	// Restoring exactly to target.
	restoring := RebalanceFeeBps(delta, big.NewInt(7_000), target, baseFee, taxFee, true)

	// Any other starting point with the same flow size cannot earn a larger
	// rebate than one whose initial deviation equals the flow.
	for _, current := range []int64{7_500, 8_000, 9_000, 9_999} {
		fee := RebalanceFeeBps(delta, big.NewInt(current), target, baseFee, taxFee, true)
		require.GreaterOrEqual(t, fee, restoring, "current=%d", current)
	}
}

func TestRebalanceFeeDecrementFloorsAtZeroSupply(t *testing.T) {
	// Removing more than exists clamps next supply at zero.
	fee := RebalanceFeeBps(big.NewInt(5_000), big.NewInt(1_000), big.NewInt(10_000), baseFee, taxFee, false)
	// initialDiff=9000, nextDiff=10000 -> away from target, avg=9500
	// tax = 50*9500/10000 = 47
	require.Equal(t, baseFee+47, fee)
}

func TestRebalanceFeeTaxCappedAtTarget(t *testing.T) {
	// Deviations far beyond the target cap the taxed deviation at the target
	// itself, so the tax never exceeds taxFeeBps.
	fee := RebalanceFeeBps(big.NewInt(100_000), big.NewInt(200_000), big.NewInt(10_000), baseFee, taxFee, true)
	require.Equal(t, baseFee+taxFee, fee)
}

func TestSwapFeeTakesLargerLeg(t *testing.T) {
	target := big.NewInt(10_000)

	// In leg: at target, small tax. Out leg: far under target, removing makes
	// it worse -> bigger tax. Expect the out leg's fee.
	inFee := RebalanceFeeBps(big.NewInt(1_000), big.NewInt(10_000), target, baseFee, taxFee, true)
	outFee := RebalanceFeeBps(big.NewInt(1_000), big.NewInt(4_000), target, baseFee, taxFee, false)
	require.Greater(t, outFee, inFee)

	got := SwapFeeBps(big.NewInt(1_000), big.NewInt(10_000), target, big.NewInt(4_000), target, baseFee, taxFee)
	require.Equal(t, outFee, got)
}
