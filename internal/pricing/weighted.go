// Package pricing holds the per-venue output-amount models: Prism weighted
// pools, Crest stable pools and the Nova synthetic AMM.
package pricing

import (
	"errors"
	"math"
	"math/big"

	"github.com/hxuan190/convert-engine/internal/feemath"
)

var (
	ErrEmptyPool      = errors.New("pool has no balance")
	ErrBadWeights     = errors.New("pool weights must be positive")
	ErrBadSwapFee     = errors.New("swap fee must be in [0, 1)")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrFeeEqualsDenom = errors.New("pool fee equals fee denominator")
	ErrBadFeeDenom    = errors.New("fee denominator must be positive")
	ErrNonPositivePx  = errors.New("price must be positive")
	ErrSpreadTooLarge = errors.New("spread exceeds divisor")
)

// WeightedPool is a constant-weight pool snapshot for one trading direction,
// as returned by the pool-state collaborator.
type WeightedPool struct {
	BalanceIn   *big.Int
	BalanceOut  *big.Int
	DecimalsIn  uint8
	DecimalsOut uint8
	WeightIn    float64 // normalized
	WeightOut   float64
	SwapFee     float64 // fraction, e.g. 0.003
}

// WeightedPoolOut prices an exact-in swap against a weighted pool:
//
//	Ao = Bo * (1 - (Bi / (Bi + Ai*(1-f)))^(wi/wo))
//
// Weights are fractional so this goes through float64 (the exponent needs a
// real power routine); the result is floored back into the output token's
// fixed-point representation so the quote never overpays.
func WeightedPoolOut(p WeightedPool, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.BalanceIn == nil || p.BalanceIn.Sign() <= 0 || p.BalanceOut == nil || p.BalanceOut.Sign() <= 0 {
		return nil, ErrEmptyPool
	}
	if p.WeightIn <= 0 || p.WeightOut <= 0 {
		return nil, ErrBadWeights
	}
	if p.SwapFee < 0 || p.SwapFee >= 1 {
		return nil, ErrBadSwapFee
	}

	bi := toUnitFloat(p.BalanceIn, p.DecimalsIn)
	bo := toUnitFloat(p.BalanceOut, p.DecimalsOut)
	ai := toUnitFloat(amountIn, p.DecimalsIn)

	ratio := bi / (bi + ai*(1-p.SwapFee))
	out := bo * (1 - math.Pow(ratio, p.WeightIn/p.WeightOut))
	if out <= 0 || math.IsNaN(out) || math.IsInf(out, 0) {
		return nil, ErrInvalidAmount
	}

	res := fromUnitFloat(out, p.DecimalsOut)

	// The pool can never pay out its full balance; float rounding on extreme
	// inputs must not break that.
	if res.Cmp(p.BalanceOut) >= 0 {
		res = new(big.Int).Sub(p.BalanceOut, big.NewInt(1))
	}
	return res, nil
}

// toUnitFloat converts a fixed-point integer amount to whole-token units.
func toUnitFloat(amount *big.Int, decimals uint8) float64 {
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f / math.Pow10(int(decimals))
}

// fromUnitFloat floors a whole-token amount back into fixed point. The float
// is scaled at reduced precision first and the remaining decimals are applied
// with exact integer math, so magnitudes beyond float64's integer range stay
// well-formed.
func fromUnitFloat(units float64, decimals uint8) *big.Int {
	const floatScale = 9 // digits applied in float space
	s := int(decimals)
	if s <= floatScale {
		scaled, _ := big.NewFloat(units * math.Pow10(s)).Int(nil)
		return scaled
	}
	scaled, _ := big.NewFloat(units * math.Pow10(floatScale)).Int(nil)
	return feemath.TransformDecimals(scaled, 0, uint8(s-floatScale))
}
