// Package registry owns the process-lifetime static state the routing core
// reads: the token registry and the venue membership tables. Everything here
// is loaded once at startup and treated as immutable afterwards.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/convert-engine/internal/domain"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenRegistry resolves token descriptors by address or symbol per chain.
// Registration happens during startup only; lookups afterwards are
// lock-cheap reads.
type TokenRegistry struct {
	mu        sync.RWMutex
	byAddress map[uint64]map[common.Address]domain.Token
	bySymbol  map[uint64]map[string]domain.Token
}

func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		byAddress: make(map[uint64]map[common.Address]domain.Token),
		bySymbol:  make(map[uint64]map[string]domain.Token),
	}
}

func (r *TokenRegistry) Register(t domain.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byAddress[t.ChainID] == nil {
		r.byAddress[t.ChainID] = make(map[common.Address]domain.Token)
		r.bySymbol[t.ChainID] = make(map[string]domain.Token)
	}
	r.byAddress[t.ChainID][t.Address] = t
	r.bySymbol[t.ChainID][strings.ToUpper(t.Symbol)] = t
}

func (r *TokenRegistry) ByAddress(addr common.Address, chainID uint64) (domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.byAddress[chainID][addr]; ok {
		return t, nil
	}
	return domain.Token{}, fmt.Errorf("%w: %s on chain %d", ErrTokenNotFound, addr.Hex(), chainID)
}

func (r *TokenRegistry) BySymbol(symbol string, chainID uint64) (domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.bySymbol[chainID][strings.ToUpper(symbol)]; ok {
		return t, nil
	}
	return domain.Token{}, fmt.Errorf("%w: %s on chain %d", ErrTokenNotFound, symbol, chainID)
}

// Resolve accepts either a hex address or a symbol.
func (r *TokenRegistry) Resolve(ref string, chainID uint64) (domain.Token, error) {
	if common.IsHexAddress(ref) {
		return r.ByAddress(common.HexToAddress(ref), chainID)
	}
	return r.BySymbol(ref, chainID)
}

// Search returns tokens on a chain whose symbol contains the query,
// case-insensitive. An empty query returns every registered token.
func (r *TokenRegistry) Search(query string, chainID uint64) []domain.Token {
	q := strings.ToUpper(query)
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Token, 0, 16)
	for sym, t := range r.bySymbol[chainID] {
		if q == "" || strings.Contains(sym, q) {
			out = append(out, t)
		}
	}
	return out
}
