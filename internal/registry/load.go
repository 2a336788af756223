package registry

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/domain"
)

type tokenDef struct {
	Address  string   `json:"address"`
	Symbol   string   `json:"symbol"`
	Decimals uint8    `json:"decimals"`
	ChainID  uint64   `json:"chainId"`
	Roles    []string `json:"roles"`
}

var roleNames = map[string]domain.TokenRoles{
	"native":            domain.RoleNative,
	"wrapped-native":    domain.RoleWrappedNative,
	"synthetic":         domain.RoleSynthetic,
	"liquidity":         domain.RoleLiquidity,
	"stable":            domain.RoleStable,
	"pegged-collateral": domain.RolePeggedCollateral,
}

// LoadTokens reads the token list JSON file into a fresh registry.
func LoadTokens(path string) (*TokenRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token list: %w", err)
	}
	var defs []tokenDef
	if err := sonic.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("decode token list: %w", err)
	}

	reg := NewTokenRegistry()
	for _, def := range defs {
		if !common.IsHexAddress(def.Address) {
			return nil, fmt.Errorf("token %s: malformed address %q", def.Symbol, def.Address)
		}
		t := domain.Token{
			Address:  common.HexToAddress(def.Address),
			Symbol:   def.Symbol,
			Decimals: def.Decimals,
			ChainID:  def.ChainID,
		}
		for _, role := range def.Roles {
			bit, ok := roleNames[role]
			if !ok {
				return nil, fmt.Errorf("token %s: unknown role %q", def.Symbol, role)
			}
			t.Roles |= bit
		}
		reg.Register(t)
	}
	return reg, nil
}
