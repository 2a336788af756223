package domain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is the read side of a chain connection. Implementations wrap an
// RPC client; the core only needs chain identity and fee-market hints.
type Provider interface {
	ChainID(ctx context.Context) (uint64, error)

	// SupportsFeeMarket reports whether the chain accepts dynamic-fee
	// (type-2) transactions.
	SupportsFeeMarket(ctx context.Context) (bool, error)

	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
}

// Signer is a connected account able to submit transactions. GetSwap requires
// the signer to expose a provider; a signer without one is a hard error.
type Signer interface {
	Address() common.Address
	Provider() Provider
}

// WeightInput is passed to every route's Weight. Constructed per request,
// immutable.
type WeightInput struct {
	From     Token
	To       Token
	ChainID  uint64
	Provider Provider
}

// QuoteArgs is the input to a route's Quote.
type QuoteArgs struct {
	WeightInput

	// SellAmount in the sell token's native units.
	SellAmount *big.Int
}

// TransactionArgs is the input to a route's Transaction.
type TransactionArgs struct {
	QuoteArgs

	Signer Signer

	// SlippageBps is the caller's tolerance in basis points.
	SlippageBps int64
}
