package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/convert-engine/internal/adapters/evm"
	"github.com/hxuan190/convert-engine/internal/adapters/oracle"
	"github.com/hxuan190/convert-engine/internal/adapters/pricer"
	"github.com/hxuan190/convert-engine/internal/adapters/relay"
	"github.com/hxuan190/convert-engine/internal/adapters/stateapi"
	"github.com/hxuan190/convert-engine/internal/common"
	"github.com/hxuan190/convert-engine/internal/config"
	"github.com/hxuan190/convert-engine/internal/convert"
	"github.com/hxuan190/convert-engine/internal/http"
	"github.com/hxuan190/convert-engine/internal/registry"
	"github.com/hxuan190/convert-engine/internal/routes"
	"github.com/hxuan190/convert-engine/internal/services/router"
)

// @title Convert Engine API
// @version 1.0
// @description Multi-venue conversion router. Quotes and builds unsigned
// @description transactions across the pegged-asset module (Anchor), the
// @description synthetic AMM (Nova), weighted pools (Prism), stable pools
// @description (Crest) and an external aggregator fallback (Relay).
// @BasePath /
// @schemes https http
// @tag.name quote
// @tag.description Price a conversion across all registered routes
// @tag.name swap
// @tag.description Build unsigned conversion transactions
// @tag.name tokens
// @tag.description Search registered token metadata
func main() {
	common.InitRuntime()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using process environment")
	}

	general := &config.GeneralConfig{}
	chains := &config.ChainsConfig{}
	routing := &config.RoutingConfig{}
	for _, c := range []interface{ Load() error }{general, chains, routing} {
		if err := c.Load(); err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	setLogLevel(general.LogLevel)

	tables, err := registry.LoadTables(routing.TablesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load venue tables")
	}
	tokens, err := registry.LoadTokens(routing.TokensPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load token list")
	}

	providers := make(map[uint64]*evm.Provider, len(chains.Chains))
	chainIDs := make([]uint64, 0, len(chains.Chains))
	for _, c := range chains.Chains {
		p, err := evm.Dial(c.RPCUrl)
		if err != nil {
			log.Fatal().Err(err).Uint64("chain", c.ChainID).Msg("failed to dial rpc")
		}
		providers[c.ChainID] = p
		chainIDs = append(chainIDs, c.ChainID)
	}
	resolver := evm.NewResolver(providers)

	state := stateapi.NewClient(routing.StateApiUrl, routing.PoolStateTTL)
	prices := oracle.NewClient(routing.OracleUrl)

	anchorRoute := routes.NewAnchorSwapRoute(tables, tokens, &evm.AnchorBuilder{})
	novaRoute := routes.NewNovaSwapRoute(tables, prices, state, &evm.NovaBuilder{})
	prismRoute := routes.NewPrismSwapRoute(tables, state, &evm.PrismBuilder{})
	crestRoute := routes.NewCrestSwapRoute(tables, state, &evm.CrestBuilder{})
	composer := &evm.ComposerBuilder{}

	// Registration order is the tie-break order; keep it aligned with the
	// weight table in internal/routes.
	all := []routes.Route{
		routes.NewWrappedNativeRoute(tables, &evm.WrappedNativeBuilder{}),
		anchorRoute,
		routes.NewNovaAddLiquidityRoute(novaRoute),
		routes.NewNovaRemoveLiquidityRoute(novaRoute),
		novaRoute,
		routes.NewAnchorNovaRoute(anchorRoute, novaRoute, tokens, composer),
		routes.NewAnchorNovaPrismRoute(anchorRoute, novaRoute, prismRoute, tokens, composer),
		routes.NewAnchorNovaCrestRoute(anchorRoute, novaRoute, crestRoute, tokens, composer),
		routes.NewNovaPrismRoute(novaRoute, prismRoute, tokens, composer),
		prismRoute,
		crestRoute,
	}
	if routing.RelayUrl != "" {
		all = append(all, routes.NewRelayRoute(relay.NewClient(routing.RelayUrl, chainIDs)))
	} else {
		log.Warn().Msg("RELAY_URL not set, aggregator fallback disabled")
	}

	rt := router.New(all...)

	var usd *pricer.Client
	if routing.UsdPriceUrl != "" {
		usd = pricer.NewClient(routing.UsdPriceUrl, routing.UsdPriceTTL)
	} else {
		log.Warn().Msg("USD_PRICE_URL not set, quotes will carry no usd valuations")
	}

	var convertSvc *convert.Service
	if usd != nil {
		convertSvc = convert.NewService(rt, usd, resolver)
	} else {
		convertSvc = convert.NewService(rt, nil, resolver)
	}

	httpSvc := http.NewHTTPService(general, routing, convertSvc, tokens, resolver)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSvc.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := httpSvc.Stop(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
	log.Info().Msg("shutdown complete")
}

func setLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
