package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// AllowanceTarget is one approval the caller must grant before the swap
// transaction can execute: spender contract, token to approve, amount.
type AllowanceTarget struct {
	Spender common.Address `json:"spender"`
	Token   common.Address `json:"token"`
	Amount  *big.Int       `json:"amount"`
}

// RawQuote is the route-level quote. Built fresh per request and never
// mutated after construction; composite routes build one by merging the
// quotes of their hops.
type RawQuote struct {
	SellAmount *big.Int `json:"sellAmount"`
	BuyAmount  *big.Int `json:"buyAmount"`

	GasEstimate uint64 `json:"gasEstimate"`

	// AllowanceTargets is empty when the sell token is chain-native,
	// otherwise one entry per distinct spender in on-chain consumption order.
	AllowanceTargets []AllowanceTarget `json:"allowanceTargets"`

	FeeBps int64 `json:"feeBps"`

	// FeeChargedBeforeConvert reports whether the venue deducts its fee from
	// the sell side rather than the buy side.
	FeeChargedBeforeConvert bool `json:"feeChargedBeforeConvert"`
}

// Quote is a RawQuote enriched by the conversion facade with USD valuations.
// Either valuation may be nil when the pricing lookup fails; that is not an
// error.
type Quote struct {
	RawQuote

	Route string `json:"route"`

	ValueInUsd  *decimal.Decimal `json:"valueInUsd,omitempty"`
	ValueOutUsd *decimal.Decimal `json:"valueOutUsd,omitempty"`
}

// TxRequest is an unsigned transaction produced by a route. Exactly one of
// GasPrice (legacy) or GasTipCap/GasFeeCap (dynamic fee) is populated; the
// facade decides which based on the provider's fee market support.
type TxRequest struct {
	To    common.Address `json:"to"`
	Data  []byte         `json:"data"`
	Value *big.Int       `json:"value,omitempty"`

	Gas       uint64   `json:"gas,omitempty"`
	GasPrice  *big.Int `json:"gasPrice,omitempty"`
	GasTipCap *big.Int `json:"maxPriorityFeePerGas,omitempty"`
	GasFeeCap *big.Int `json:"maxFeePerGas,omitempty"`
}
