// Package evm implements the chain-facing collaborators over go-ethereum:
// RPC providers and the venue calldata builders.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
)

// Provider wraps an RPC client. The chain identity and fee-market support
// never change for a live endpoint, so both are probed once and memoized.
type Provider struct {
	client *ethclient.Client

	mu        sync.Mutex
	chainID   *uint64
	feeMarket *bool
}

var _ domain.Provider = (*Provider)(nil)

func Dial(url string) (*Provider, error) {
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Provider{client: client}, nil
}

func NewProvider(client *ethclient.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) ChainID(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chainID != nil {
		return *p.chainID, nil
	}
	id, err := p.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("chain id: %w", err)
	}
	v := id.Uint64()
	p.chainID = &v
	return v, nil
}

// SupportsFeeMarket probes the latest header once: a base fee means the
// chain runs a dynamic fee market.
func (p *Provider) SupportsFeeMarket(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.feeMarket != nil {
		return *p.feeMarket, nil
	}
	head, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("latest header: %w", err)
	}
	v := head.BaseFee != nil
	p.feeMarket = &v
	return v, nil
}

func (p *Provider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return p.client.SuggestGasPrice(ctx)
}

func (p *Provider) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return p.client.SuggestGasTipCap(ctx)
}

// Resolver hands out the configured provider for a chain. Providers are
// created at startup; an unknown chain is a request error, not a dial.
type Resolver struct {
	providers map[uint64]*Provider
}

var _ chain.ProviderResolver = (*Resolver)(nil)

func NewResolver(providers map[uint64]*Provider) *Resolver {
	return &Resolver{providers: providers}
}

func (r *Resolver) Default(_ context.Context, chainID uint64) (domain.Provider, error) {
	p, ok := r.providers[chainID]
	if !ok {
		return nil, fmt.Errorf("no provider configured for chain %d", chainID)
	}
	return p, nil
}
