// Package convert is the service facade over the router: request
// validation, provider resolution, USD enrichment and transaction fee-field
// shaping live here, keeping the routes pure.
package convert

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/metrics"
	"github.com/hxuan190/convert-engine/internal/services"
	"github.com/hxuan190/convert-engine/internal/services/router"
)

var (
	ErrDifferentChains = errors.New("tokens are on different chains")
	ErrNoProvider      = errors.New("signer has no connected provider")
)

type Service struct {
	router    *router.Router
	usd       chain.UsdPricer
	providers chain.ProviderResolver
	log       *services.ServiceLogger
}

func NewService(rt *router.Router, usd chain.UsdPricer, providers chain.ProviderResolver) *Service {
	s := &Service{router: rt, usd: usd, providers: providers}
	s.log = services.NewServiceLogger(s)
	return s
}

func (s *Service) ID() string { return "convert" }

// GetQuote validates the pair, selects a route and enriches the raw quote
// with USD valuations. A failed valuation lookup degrades to a nil value,
// never to an error.
func (s *Service) GetQuote(ctx context.Context, args *domain.QuoteArgs) (*domain.Quote, error) {
	start := time.Now()

	if err := s.prepare(ctx, args); err != nil {
		metrics.QuoteRequests.WithLabelValues("", "rejected").Inc()
		return nil, err
	}

	raw, route, err := s.router.Quote(ctx, args)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(route, "error").Inc()
		return nil, err
	}

	q := &domain.Quote{RawQuote: *raw, Route: route}
	q.ValueInUsd = s.usdValue(ctx, args.From, raw.SellAmount, "in")
	q.ValueOutUsd = s.usdValue(ctx, args.To, raw.BuyAmount, "out")

	metrics.QuoteRequests.WithLabelValues(route, "ok").Inc()
	metrics.QuoteDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	s.log.Pair(args.From.Symbol, args.To.Symbol).Debug().
		Str("route", route).Msg("quote served")
	return q, nil
}

// GetSwap validates the pair against the signer's chain and returns the
// selected route's unsigned transaction with its fee fields populated for
// the chain's fee market.
func (s *Service) GetSwap(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, error) {
	start := time.Now()

	if args.Signer == nil || args.Signer.Provider() == nil {
		metrics.SwapRequests.WithLabelValues("", "rejected").Inc()
		return nil, ErrNoProvider
	}
	provider := args.Signer.Provider()
	args.Provider = provider

	if err := s.prepare(ctx, &args.QuoteArgs); err != nil {
		metrics.SwapRequests.WithLabelValues("", "rejected").Inc()
		return nil, err
	}

	tx, route, err := s.router.Transaction(ctx, args)
	if err != nil {
		metrics.SwapRequests.WithLabelValues(route, "error").Inc()
		return nil, err
	}

	if err := s.applyFeeFields(ctx, provider, tx); err != nil {
		metrics.SwapRequests.WithLabelValues(route, "error").Inc()
		return nil, err
	}

	metrics.SwapRequests.WithLabelValues(route, "ok").Inc()
	metrics.SwapDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	s.log.Pair(args.From.Symbol, args.To.Symbol).Info().
		Str("route", route).Msg("swap transaction built")
	return tx, nil
}

// prepare runs the shared request validation: both tokens on one chain, the
// provider (given or resolved) on that same chain.
func (s *Service) prepare(ctx context.Context, args *domain.QuoteArgs) error {
	if !args.From.SameChain(args.To) {
		return fmt.Errorf("%w: %s on %d, %s on %d", ErrDifferentChains,
			args.From.Symbol, args.From.ChainID, args.To.Symbol, args.To.ChainID)
	}
	args.ChainID = args.From.ChainID

	if args.Provider == nil && s.providers != nil {
		p, err := s.providers.Default(ctx, args.ChainID)
		if err != nil {
			return fmt.Errorf("resolve default provider: %w", err)
		}
		args.Provider = p
	}
	if args.Provider != nil {
		chainID, err := args.Provider.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("provider chain id: %w", err)
		}
		if chainID != args.ChainID {
			return fmt.Errorf("%w: provider on %d, tokens on %d", ErrDifferentChains, chainID, args.ChainID)
		}
	}
	return nil
}

// usdValue is best-effort: a pricer miss is logged and counted, never
// surfaced to the caller.
func (s *Service) usdValue(ctx context.Context, token domain.Token, amount *big.Int, side string) *decimal.Decimal {
	if s.usd == nil || amount == nil {
		return nil
	}
	v, err := s.usd.UsdValue(ctx, token, amount)
	if err != nil {
		metrics.UsdLookupFailures.WithLabelValues(side).Inc()
		s.log.Warn().Err(err).Str("token", token.Symbol).Msg("usd valuation unavailable")
		return nil
	}
	return &v
}

// applyFeeFields fills the unset gas price fields for the provider's fee
// market and clears the fields of the other transaction type.
func (s *Service) applyFeeFields(ctx context.Context, provider domain.Provider, tx *domain.TxRequest) error {
	feeMarket, err := provider.SupportsFeeMarket(ctx)
	if err != nil {
		return fmt.Errorf("fee market probe: %w", err)
	}

	if feeMarket {
		tx.GasPrice = nil
		if tx.GasTipCap == nil {
			tip, err := provider.SuggestGasTipCap(ctx)
			if err != nil {
				return fmt.Errorf("suggest tip cap: %w", err)
			}
			tx.GasTipCap = tip
		}
		if tx.GasFeeCap == nil {
			cap, err := provider.SuggestGasPrice(ctx)
			if err != nil {
				return fmt.Errorf("suggest fee cap: %w", err)
			}
			tx.GasFeeCap = cap
		}
		return nil
	}

	tx.GasTipCap = nil
	tx.GasFeeCap = nil
	if tx.GasPrice == nil {
		price, err := provider.SuggestGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("suggest gas price: %w", err)
		}
		tx.GasPrice = price
	}
	return nil
}
