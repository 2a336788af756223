package routes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/feemath"
)

// combineLegFees folds per-leg fees into one effective bps figure, left to
// right in execution order.
func combineLegFees(fees ...int64) (int64, error) {
	if len(fees) == 0 {
		return 0, nil
	}
	total := fees[0]
	for _, f := range fees[1:] {
		var err error
		total, err = feemath.CombineFeesBps(total, f)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// allowancesFor returns the approvals a caller must grant before spender can
// pull the sell token. Chain-native input needs none.
func allowancesFor(token domain.Token, spender common.Address, amount *big.Int) []domain.AllowanceTarget {
	if token.IsNative() {
		return nil
	}
	return []domain.AllowanceTarget{{
		Spender: spender,
		Token:   token.Address,
		Amount:  new(big.Int).Set(amount),
	}}
}

// recipientOf picks the transaction recipient: the signer's own address.
func recipientOf(args *domain.TransactionArgs) common.Address {
	if args.Signer != nil {
		return args.Signer.Address()
	}
	return common.Address{}
}
