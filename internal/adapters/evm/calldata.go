package evm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
)

// Venue codes understood by the periphery convert router.
const (
	venueCodeAnchor uint8 = 1
	venueCodeNova   uint8 = 2
	venueCodePrism  uint8 = 3
	venueCodeCrest  uint8 = 4
)

const wethABIJson = `[
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[]},
	{"type":"function","name":"withdraw","inputs":[{"name":"amount","type":"uint256"}]}
]`

const anchorABIJson = `[
	{"type":"function","name":"swapCollateralToSynth","inputs":[
		{"name":"collateral","type":"address"},
		{"name":"synth","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"receiver","type":"address"}]},
	{"type":"function","name":"swapSynthToCollateral","inputs":[
		{"name":"synth","type":"address"},
		{"name":"collateral","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"receiver","type":"address"}]}
]`

const novaABIJson = `[
	{"type":"function","name":"swap","inputs":[
		{"name":"tokenIn","type":"address"},
		{"name":"tokenOut","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"swapNativeIn","stateMutability":"payable","inputs":[
		{"name":"tokenOut","type":"address"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"swapNativeOut","inputs":[
		{"name":"tokenIn","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"addLiquidity","inputs":[
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"minNlpOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"addLiquidityNative","stateMutability":"payable","inputs":[
		{"name":"minNlpOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"removeLiquidity","inputs":[
		{"name":"token","type":"address"},
		{"name":"nlpAmount","type":"uint256"},
		{"name":"minTokenOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]},
	{"type":"function","name":"removeLiquidityNative","inputs":[
		{"name":"nlpAmount","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]}
]`

const prismABIJson = `[
	{"type":"function","name":"swap","stateMutability":"payable","inputs":[
		{"name":"poolId","type":"bytes32"},
		{"name":"assetIn","type":"address"},
		{"name":"assetOut","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"recipient","type":"address"}]}
]`

const crestABIJson = `[
	{"type":"function","name":"exchange","inputs":[
		{"name":"pool","type":"address"},
		{"name":"tokenIn","type":"address"},
		{"name":"tokenOut","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"}]}
]`

const composerABIJson = `[
	{"type":"function","name":"convert","stateMutability":"payable","inputs":[
		{"name":"hops","type":"tuple[]","components":[
			{"name":"venue","type":"uint8"},
			{"name":"tokenIn","type":"address"},
			{"name":"tokenOut","type":"address"},
			{"name":"poolId","type":"bytes32"}]},
		{"name":"amountIn","type":"uint256"},
		{"name":"minOut","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"priceProof","type":"bytes"}]}
]`

var (
	wethABI     = mustABI(wethABIJson)
	anchorABI   = mustABI(anchorABIJson)
	novaABI     = mustABI(novaABIJson)
	prismABI    = mustABI(prismABIJson)
	crestABI    = mustABI(crestABIJson)
	composerABI = mustABI(composerABIJson)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// poolIDWord maps a registry pool ID onto the bytes32 the contracts key
// pools by: literal for 32-byte hex IDs, keccak of the symbolic name
// otherwise.
func poolIDWord(id string) [32]byte {
	if strings.HasPrefix(id, "0x") && len(id) == 66 {
		return common.HexToHash(id)
	}
	return crypto.Keccak256Hash([]byte(id))
}

// The builders are stateless calldata encoders; contract addresses arrive
// with each request from the registry tables. One type per venue because
// the venue contracts overload the same method names with different shapes.
type (
	WrappedNativeBuilder struct{}
	AnchorBuilder        struct{}
	NovaBuilder          struct{}
	PrismBuilder         struct{}
	CrestBuilder         struct{}
	ComposerBuilder      struct{}
)

var _ chain.WrappedNativeTxBuilder = (*WrappedNativeBuilder)(nil)
var _ chain.AnchorTxBuilder = (*AnchorBuilder)(nil)
var _ chain.NovaTxBuilder = (*NovaBuilder)(nil)
var _ chain.PrismTxBuilder = (*PrismBuilder)(nil)
var _ chain.CrestTxBuilder = (*CrestBuilder)(nil)
var _ chain.ComposerTxBuilder = (*ComposerBuilder)(nil)

func pack(contract abi.ABI, method string, args ...interface{}) ([]byte, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return data, nil
}

func (b *WrappedNativeBuilder) Wrap(_ context.Context, args chain.WrapArgs) (*domain.TxRequest, error) {
	data, err := pack(wethABI, "deposit")
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Wrapped, Data: data, Value: args.Amount}, nil
}

func (b *WrappedNativeBuilder) Unwrap(_ context.Context, args chain.WrapArgs) (*domain.TxRequest, error) {
	data, err := pack(wethABI, "withdraw", args.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Wrapped, Data: data}, nil
}

func (b *AnchorBuilder) SwapCollateralToSynth(_ context.Context, args chain.AnchorSwapArgs) (*domain.TxRequest, error) {
	data, err := pack(anchorABI, "swapCollateralToSynth", args.TokenIn, args.TokenOut, args.SellAmount, args.Recipient)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Module, Data: data}, nil
}

func (b *AnchorBuilder) SwapSynthToCollateral(_ context.Context, args chain.AnchorSwapArgs) (*domain.TxRequest, error) {
	data, err := pack(anchorABI, "swapSynthToCollateral", args.TokenIn, args.TokenOut, args.SellAmount, args.Recipient)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Module, Data: data}, nil
}

func (b *NovaBuilder) Swap(_ context.Context, args chain.NovaSwapArgs) (*domain.TxRequest, error) {
	switch {
	case args.NativeIn:
		data, err := pack(novaABI, "swapNativeIn", args.TokenOut, args.MinOut, args.Recipient, args.PriceProof)
		if err != nil {
			return nil, err
		}
		return &domain.TxRequest{To: args.Router, Data: data, Value: args.SellAmount}, nil
	case args.NativeOut:
		data, err := pack(novaABI, "swapNativeOut", args.TokenIn, args.SellAmount, args.MinOut, args.Recipient, args.PriceProof)
		if err != nil {
			return nil, err
		}
		return &domain.TxRequest{To: args.Router, Data: data}, nil
	default:
		data, err := pack(novaABI, "swap", args.TokenIn, args.TokenOut, args.SellAmount, args.MinOut, args.Recipient, args.PriceProof)
		if err != nil {
			return nil, err
		}
		return &domain.TxRequest{To: args.Router, Data: data}, nil
	}
}

func (b *NovaBuilder) AddLiquidity(_ context.Context, args chain.NovaLiquidityArgs) (*domain.TxRequest, error) {
	if args.Native {
		data, err := pack(novaABI, "addLiquidityNative", args.MinNlpOut, args.Recipient, args.PriceProof)
		if err != nil {
			return nil, err
		}
		return &domain.TxRequest{To: args.Router, Data: data, Value: args.Amount}, nil
	}
	data, err := pack(novaABI, "addLiquidity", args.Token, args.Amount, args.MinNlpOut, args.Recipient, args.PriceProof)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Router, Data: data}, nil
}

func (b *NovaBuilder) RemoveLiquidity(_ context.Context, args chain.NovaLiquidityArgs) (*domain.TxRequest, error) {
	if args.Native {
		data, err := pack(novaABI, "removeLiquidityNative", args.Amount, args.MinTokenOut, args.Recipient, args.PriceProof)
		if err != nil {
			return nil, err
		}
		return &domain.TxRequest{To: args.Router, Data: data}, nil
	}
	data, err := pack(novaABI, "removeLiquidity", args.Token, args.Amount, args.MinTokenOut, args.Recipient, args.PriceProof)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Router, Data: data}, nil
}

// Swap targets the Prism vault. The vault uses the zero address as the
// native asset sentinel; the route decides which side is native.
func (b *PrismBuilder) Swap(_ context.Context, args chain.PrismSwapArgs) (*domain.TxRequest, error) {
	assetIn, assetOut := args.TokenIn, args.TokenOut
	if args.NativeIn {
		assetIn = common.Address{}
	}
	if args.NativeOut {
		assetOut = common.Address{}
	}
	data, err := pack(prismABI, "swap", poolIDWord(args.PoolID), assetIn, assetOut, args.SellAmount, args.MinOut, args.Recipient)
	if err != nil {
		return nil, err
	}
	tx := &domain.TxRequest{To: args.Vault, Data: data}
	if args.NativeIn {
		tx.Value = args.SellAmount
	}
	return tx, nil
}

func (b *CrestBuilder) Swap(_ context.Context, args chain.CrestSwapArgs) (*domain.TxRequest, error) {
	data, err := pack(crestABI, "exchange", args.Pool, args.TokenIn, args.TokenOut, args.SellAmount, args.MinOut, args.Recipient)
	if err != nil {
		return nil, err
	}
	return &domain.TxRequest{To: args.Router, Data: data}, nil
}

type packedHop struct {
	Venue    uint8
	TokenIn  common.Address
	TokenOut common.Address
	PoolId   [32]byte
}

func (b *ComposerBuilder) Convert(_ context.Context, args chain.ComposeArgs) (*domain.TxRequest, error) {
	hops := make([]packedHop, 0, len(args.Hops))
	for _, hop := range args.Hops {
		code, err := venueCode(hop.Venue)
		if err != nil {
			return nil, err
		}
		var poolID [32]byte
		if hop.PoolID != "" {
			poolID = poolIDWord(hop.PoolID)
		}
		hops = append(hops, packedHop{
			Venue:    code,
			TokenIn:  hop.TokenIn,
			TokenOut: hop.TokenOut,
			PoolId:   poolID,
		})
	}

	data, err := pack(composerABI, "convert", hops, args.SellAmount, args.MinOut, args.Recipient, args.PriceProof)
	if err != nil {
		return nil, err
	}
	tx := &domain.TxRequest{To: args.Router, Data: data}
	if args.NativeIn {
		tx.Value = args.SellAmount
	}
	return tx, nil
}

func venueCode(venue string) (uint8, error) {
	switch venue {
	case "anchor":
		return venueCodeAnchor, nil
	case "nova":
		return venueCodeNova, nil
	case "prism":
		return venueCodePrism, nil
	case "crest":
		return venueCodeCrest, nil
	default:
		return 0, fmt.Errorf("unknown venue %q", venue)
	}
}
