package pricing

import "math/big"

// PricePrecision is the fixed-point scale of Nova oracle index prices.
const PricePrecision = 100_000_000 // 1e8

// SpreadDivisor scales Nova spread values (basis points).
const SpreadDivisor = 10_000

var (
	pricePrecisionBig = big.NewInt(PricePrecision)
	spreadDivisorBig  = big.NewInt(SpreadDivisor)
	// pricePrecisionSq = 1e16, numerator for price inversion
	pricePrecisionSq = new(big.Int).Mul(pricePrecisionBig, pricePrecisionBig)
)

// BestBid applies a spread below the oracle index price:
// price * (divisor - spread) / divisor.
func BestBid(indexPrice *big.Int, spreadBps int64) (*big.Int, error) {
	return applySpread(indexPrice, -spreadBps)
}

// BestAsk applies a spread above the oracle index price:
// price * (divisor + spread) / divisor.
func BestAsk(indexPrice *big.Int, spreadBps int64) (*big.Int, error) {
	return applySpread(indexPrice, spreadBps)
}

func applySpread(price *big.Int, signedSpread int64) (*big.Int, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrNonPositivePx
	}
	if signedSpread <= -SpreadDivisor || signedSpread >= SpreadDivisor {
		return nil, ErrSpreadTooLarge
	}
	out := new(big.Int).Mul(price, big.NewInt(SpreadDivisor+signedSpread))
	return out.Quo(out, spreadDivisorBig), nil
}

// InvertPrice flips a 1e8 fixed-point price for reversed pairs (quote and
// base swapped in the oracle feed): 1e16 / price.
func InvertPrice(price *big.Int) (*big.Int, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrNonPositivePx
	}
	return new(big.Int).Quo(pricePrecisionSq, price), nil
}
