package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAddress is the pseudo-address venues use for the chain-native asset.
// Native tokens are never pool members directly; resolvers normalize them to
// the chain's wrapped form before any membership lookup.
var NativeAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

type TokenRoles uint16

const (
	RoleNative TokenRoles = 1 << iota
	RoleWrappedNative
	RoleSynthetic // Nova-minted synthetic asset
	RoleLiquidity // Nova LP token (NLP)
	RoleStable
	RolePeggedCollateral // accepted by the Anchor peg module
)

// Token is an immutable descriptor owned by the token registry. Routes only
// read it.
type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	ChainID  uint64         `json:"chainId"`
	Roles    TokenRoles     `json:"-"`
}

func (t Token) IsNative() bool           { return t.Roles&RoleNative != 0 }
func (t Token) IsWrappedNative() bool    { return t.Roles&RoleWrappedNative != 0 }
func (t Token) IsSynthetic() bool        { return t.Roles&RoleSynthetic != 0 }
func (t Token) IsLiquidity() bool        { return t.Roles&RoleLiquidity != 0 }
func (t Token) IsStable() bool           { return t.Roles&RoleStable != 0 }
func (t Token) IsPeggedCollateral() bool { return t.Roles&RolePeggedCollateral != 0 }

func (t Token) HasRoles(mask TokenRoles) bool {
	return t.Roles&mask == mask
}

// PoolAddress returns the address used for venue membership lookups: the
// wrapped form for the native asset, the token's own address otherwise.
// Wrapped-native addresses are static per chain and supplied by the registry.
func (t Token) PoolAddress(wrappedNative common.Address) common.Address {
	if t.IsNative() {
		return wrappedNative
	}
	return t.Address
}

func (t Token) SameChain(other Token) bool {
	return t.ChainID == other.ChainID
}

// PairKey is a stable string key for (from, to, chain) lookups.
func PairKey(from, to common.Address, chainID uint64) string {
	var b strings.Builder
	b.Grow(2*42 + 22)
	b.WriteString(strings.ToLower(from.Hex()))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(to.Hex()))
	b.WriteByte('|')
	writeUint(&b, chainID)
	return b.String()
}

func writeUint(b *strings.Builder, v uint64) {
	if v >= 10 {
		writeUint(b, v/10)
	}
	b.WriteByte(byte('0' + v%10))
}
