package pricing

import "math/big"

var two = big.NewInt(2)

// RebalanceFeeBps computes the Nova dynamic fee for a single flow leg. Flows
// that move a pool's tracked supply toward its target earn a rebate off the
// base fee; flows that move it away pay a tax on the averaged deviation,
// capped at the target. A zero target disables the tax entirely.
//
// usdDelta is the flow size in USD units; increment selects whether the flow
// adds to or removes from the tracked supply.
func RebalanceFeeBps(usdDelta, currentSupply, targetSupply *big.Int, baseFeeBps, taxFeeBps int64, increment bool) int64 {
	if targetSupply == nil || targetSupply.Sign() == 0 {
		return baseFeeBps
	}
	current := orZero(currentSupply)
	delta := orZero(usdDelta)

	next := new(big.Int)
	if increment {
		next.Add(current, delta)
	} else {
		next.Sub(current, delta)
		if next.Sign() < 0 {
			next.SetInt64(0)
		}
	}

	initialDiff := new(big.Int).Sub(current, targetSupply)
	initialDiff.Abs(initialDiff)
	nextDiff := new(big.Int).Sub(next, targetSupply)
	nextDiff.Abs(nextDiff)

	if nextDiff.Cmp(initialDiff) < 0 {
		// Rebalancing flow: rebate proportional to how far off target the
		// pool was.
		rebate := new(big.Int).Mul(big.NewInt(taxFeeBps), initialDiff)
		rebate.Quo(rebate, targetSupply)
		fee := baseFeeBps - rebate.Int64()
		if fee < 0 {
			return 0
		}
		return fee
	}

	// Imbalancing flow: tax on the average deviation, capped at the target.
	avgDiff := new(big.Int).Add(initialDiff, nextDiff)
	avgDiff.Quo(avgDiff, two)
	if avgDiff.Cmp(targetSupply) > 0 {
		avgDiff.Set(targetSupply)
	}
	tax := new(big.Int).Mul(big.NewInt(taxFeeBps), avgDiff)
	tax.Quo(tax, targetSupply)
	return baseFeeBps + tax.Int64()
}

// SwapFeeBps computes the fee for a two-sided Nova swap. Each leg is priced
// independently (the in token's supply grows, the out token's shrinks) and
// the larger fee is charged.
func SwapFeeBps(usdDelta, inSupply, inTarget, outSupply, outTarget *big.Int, baseFeeBps, taxFeeBps int64) int64 {
	inFee := RebalanceFeeBps(usdDelta, inSupply, inTarget, baseFeeBps, taxFeeBps, true)
	outFee := RebalanceFeeBps(usdDelta, outSupply, outTarget, baseFeeBps, taxFeeBps, false)
	if outFee > inFee {
		return outFee
	}
	return inFee
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
