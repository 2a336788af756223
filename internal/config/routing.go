package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hxuan190/convert-engine/internal/common"
)

// RoutingConfig covers the routing core and its off-chain collaborators: the
// venue membership tables, the signed price oracle, the Relay aggregator and
// the USD price feed.
type RoutingConfig struct {
	TablesPath string
	TokensPath string

	OracleUrl   string
	StateApiUrl string
	RelayUrl    string
	UsdPriceUrl string

	DefaultSlippageBps int64
	PoolStateTTL       time.Duration
	UsdPriceTTL        time.Duration
}

func (rc *RoutingConfig) Load() error {
	rc.TablesPath = common.GetEnvOrDefault("TABLES_PATH", "tables.json")
	rc.TokensPath = common.GetEnvOrDefault("TOKENS_PATH", "tokens.json")
	rc.OracleUrl = os.Getenv("ORACLE_URL")
	rc.StateApiUrl = os.Getenv("STATE_API_URL")
	rc.RelayUrl = os.Getenv("RELAY_URL")
	rc.UsdPriceUrl = os.Getenv("USD_PRICE_URL")

	slippage := common.GetEnvOrDefault("DEFAULT_SLIPPAGE_BPS", strconv.Itoa(common.DefaultSlippageBps))
	bps, err := strconv.ParseInt(slippage, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed DEFAULT_SLIPPAGE_BPS: %w", err)
	}
	rc.DefaultSlippageBps = bps

	rc.PoolStateTTL, err = parseTTL("POOL_STATE_TTL", 3*time.Second)
	if err != nil {
		return err
	}
	rc.UsdPriceTTL, err = parseTTL("USD_PRICE_TTL", 30*time.Second)
	if err != nil {
		return err
	}
	return rc.Validate()
}

func (rc *RoutingConfig) Validate() error {
	if rc.TablesPath == "" {
		return errors.New("TABLES_PATH is required")
	}
	if rc.DefaultSlippageBps <= 0 || rc.DefaultSlippageBps > common.MaxSlippageBps {
		return fmt.Errorf("DEFAULT_SLIPPAGE_BPS %d out of range", rc.DefaultSlippageBps)
	}
	if rc.OracleUrl == "" {
		return errors.New("ORACLE_URL is required")
	}
	if rc.StateApiUrl == "" {
		return errors.New("STATE_API_URL is required")
	}
	return nil
}

func parseTTL(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("malformed %s: %w", key, err)
	}
	return d, nil
}
