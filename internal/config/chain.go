package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ChainConfig is the RPC endpoint for one supported chain. Multiple chains
// come from a comma-separated CHAIN_RPC_URLS list of chainID=url pairs.
type ChainConfig struct {
	ChainID uint64
	RPCUrl  string
}

type ChainsConfig struct {
	Chains []ChainConfig
}

func (c *ChainsConfig) Load() error {
	raw := os.Getenv("CHAIN_RPC_URLS")
	if raw == "" {
		return errors.New("CHAIN_RPC_URLS is not set")
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, url, found := strings.Cut(entry, "=")
		if !found {
			return fmt.Errorf("malformed chain entry %q, want chainID=url", entry)
		}
		chainID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return fmt.Errorf("malformed chain id in %q: %w", entry, err)
		}
		c.Chains = append(c.Chains, ChainConfig{ChainID: chainID, RPCUrl: strings.TrimSpace(url)})
	}
	return c.Validate()
}

func (c *ChainsConfig) Validate() error {
	if len(c.Chains) == 0 {
		return errors.New("no chains configured")
	}
	seen := make(map[uint64]struct{}, len(c.Chains))
	for _, chain := range c.Chains {
		if chain.RPCUrl == "" {
			return fmt.Errorf("chain %d has an empty rpc url", chain.ChainID)
		}
		if _, dup := seen[chain.ChainID]; dup {
			return fmt.Errorf("chain %d configured twice", chain.ChainID)
		}
		seen[chain.ChainID] = struct{}{}
	}
	return nil
}
