// Package feemath implements the integer fee arithmetic shared by every
// route: sequential fee composition, fixed-point decimal rescaling and
// slippage floors. Amount paths are integer-only; no floats here.
package feemath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// BpsDenom is the basis-point denominator: 10000 bps = 100%.
const BpsDenom = 10000

var (
	ErrNegativeFee    = errors.New("negative fee")
	ErrFeeOverDivisor = errors.New("fee exceeds divisor")
	ErrBadDivisor     = errors.New("divisor must be positive")
)

var (
	bpsDenomBig = big.NewInt(BpsDenom)

	u256BpsDenom = uint256.NewInt(BpsDenom)
)

// CombineFees composes two sequential percentage fees into a single
// basis-point figure: floor((1 - (1-fee1/div1)(1-fee2/div2)) * 10000).
// The fees compound (hop 1's output is hop 2's input), so the combined loss
// is smaller than the naive sum. Divisors other than 10000 (some venues use
// 1e10 precision) are normalized here; intermediates reach div1*div2*10000
// which overflows int64, hence uint256.
func CombineFees(fee1, fee2, div1, div2 int64) (int64, error) {
	if div1 <= 0 || div2 <= 0 {
		return 0, ErrBadDivisor
	}
	if fee1 < 0 || fee2 < 0 {
		return 0, ErrNegativeFee
	}
	if fee1 > div1 || fee2 > div2 {
		return 0, ErrFeeOverDivisor
	}

	d1 := uint256.NewInt(uint64(div1))
	d2 := uint256.NewInt(uint64(div2))

	// kept = (div1-fee1)*(div2-fee2), the surviving fraction scaled by d1*d2
	kept := new(uint256.Int).Mul(
		uint256.NewInt(uint64(div1-fee1)),
		uint256.NewInt(uint64(div2-fee2)),
	)

	scale := new(uint256.Int).Mul(d1, d2)

	// combined = (scale - kept) * 10000 / scale, floored
	lost := new(uint256.Int).Sub(scale, kept)
	lost.Mul(lost, u256BpsDenom)
	lost.Div(lost, scale)

	return int64(lost.Uint64()), nil
}

// CombineFeesBps composes two bps-denominated fees.
func CombineFeesBps(fee1, fee2 int64) (int64, error) {
	return CombineFees(fee1, fee2, BpsDenom, BpsDenom)
}

// TransformDecimals rescales a fixed-point amount between decimal precisions.
// Scaling up multiplies exactly; scaling down floor-truncates. The input is
// not mutated.
func TransformDecimals(amount *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if amount == nil {
		return nil
	}
	if fromDecimals == toDecimals {
		return new(big.Int).Set(amount)
	}
	if toDecimals > fromDecimals {
		return new(big.Int).Mul(amount, pow10(toDecimals-fromDecimals))
	}
	return new(big.Int).Quo(new(big.Int).Set(amount), pow10(fromDecimals-toDecimals))
}

// MinOut applies a slippage tolerance: amount * (10000 - slippageBps) / 10000,
// floored. Tolerances outside [0, 10000] clamp to the nearest bound.
func MinOut(amount *big.Int, slippageBps int64) *big.Int {
	if amount == nil {
		return nil
	}
	if slippageBps < 0 {
		slippageBps = 0
	}
	if slippageBps > BpsDenom {
		slippageBps = BpsDenom
	}
	out := new(big.Int).Mul(amount, big.NewInt(BpsDenom-slippageBps))
	return out.Quo(out, bpsDenomBig)
}

// ApplyFeeBps deducts a bps fee from an amount, floored.
func ApplyFeeBps(amount *big.Int, feeBps int64) *big.Int {
	return MinOut(amount, feeBps)
}

var pow10Table = buildPow10Table()

func buildPow10Table() [78]*big.Int {
	var t [78]*big.Int
	ten := big.NewInt(10)
	t[0] = big.NewInt(1)
	for i := 1; i < len(t); i++ {
		t[i] = new(big.Int).Mul(t[i-1], ten)
	}
	return t
}

func pow10(n uint8) *big.Int {
	if int(n) < len(pow10Table) {
		return pow10Table[n]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
