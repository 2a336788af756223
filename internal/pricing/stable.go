package pricing

import "math/big"

// StripPoolFee removes a stable pool's built-in fee from a pre-fee-inclusive
// amountOut: out * feeDenominator / (feeDenominator - poolFee), floored.
// The pool-state collaborator reports amountOut with the venue fee already
// deducted; the stable route derives its effective fee from the gross/net
// pair so the figure it reports matches this exact amount.
func StripPoolFee(amountOut, poolFee, feeDenominator *big.Int) (*big.Int, error) {
	if feeDenominator == nil || feeDenominator.Sign() <= 0 {
		return nil, ErrBadFeeDenom
	}
	if amountOut == nil || amountOut.Sign() < 0 || poolFee == nil || poolFee.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	rem := new(big.Int).Sub(feeDenominator, poolFee)
	if rem.Sign() <= 0 {
		// poolFee == feeDenominator is a venue misconfiguration, not a zero
		// quote.
		return nil, ErrFeeEqualsDenom
	}

	out := new(big.Int).Mul(amountOut, feeDenominator)
	return out.Quo(out, rem), nil
}
