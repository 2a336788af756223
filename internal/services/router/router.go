// Package router selects the venue route serving a conversion request.
// Every registered route's weight is evaluated concurrently; the strictly
// highest weight wins, and ties keep the first route in registration order,
// so the registration list is routing configuration.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/metrics"
	"github.com/hxuan190/convert-engine/internal/routes"
	"github.com/hxuan190/convert-engine/internal/services"
)

// NoRouteError reports that no venue can serve a pair. The message names the
// token symbols so callers can surface it directly.
type NoRouteError struct {
	From string
	To   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("No route found for %s and %s", e.From, e.To)
}

type Router struct {
	routes []routes.Route
	log    *services.ServiceLogger
}

func New(rs ...routes.Route) *Router {
	r := &Router{routes: rs}
	r.log = services.NewServiceLogger(r)
	return r
}

func (r *Router) ID() string { return "router" }

// Routes returns the registration list, in order.
func (r *Router) Routes() []routes.Route { return r.routes }

// Select runs the weight fan-out and picks the winning route. A weight call
// that errors or panics is downgraded to not-applicable so one misbehaving
// adapter cannot block selection; the failure is logged and counted instead.
func (r *Router) Select(ctx context.Context, in *domain.WeightInput) (routes.Route, error) {
	start := time.Now()

	weights := make([]routes.Weight, len(r.routes))
	var wg sync.WaitGroup
	for i, rt := range r.routes {
		wg.Add(1)
		go func(idx int, rt routes.Route) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					weights[idx] = routes.NotApplicable
					metrics.WeightFailures.WithLabelValues(rt.Name()).Inc()
					r.log.Error().Str("route", rt.Name()).Interface("panic", rec).Msg("weight evaluation panicked")
				}
			}()

			w, err := rt.Weight(ctx, in)
			if err != nil {
				metrics.WeightFailures.WithLabelValues(rt.Name()).Inc()
				r.log.Warn().Err(err).Str("route", rt.Name()).Msg("weight evaluation failed")
				return
			}
			weights[idx] = w
		}(i, rt)
	}
	wg.Wait()

	metrics.SelectionDuration.Observe(time.Since(start).Seconds())

	best := -1
	bestWeight := routes.NotApplicable
	for i, w := range weights {
		if w > bestWeight {
			best, bestWeight = i, w
		}
	}
	if best < 0 {
		metrics.NoRouteFound.Inc()
		return nil, &NoRouteError{From: in.From.Symbol, To: in.To.Symbol}
	}

	selected := r.routes[best]
	metrics.RouteSelections.WithLabelValues(selected.Name()).Inc()
	return selected, nil
}

// Quote selects and delegates. Selection and execution are independent: a
// failure in the selected route's quote propagates, with no retry against
// lower-weighted routes.
func (r *Router) Quote(ctx context.Context, args *domain.QuoteArgs) (*domain.RawQuote, string, error) {
	rt, err := r.Select(ctx, &args.WeightInput)
	if err != nil {
		return nil, "", err
	}
	q, err := rt.Quote(ctx, args)
	if err != nil {
		return nil, rt.Name(), fmt.Errorf("route %s: %w", rt.Name(), err)
	}
	return q, rt.Name(), nil
}

// Transaction mirrors Quote for the transaction operation.
func (r *Router) Transaction(ctx context.Context, args *domain.TransactionArgs) (*domain.TxRequest, string, error) {
	rt, err := r.Select(ctx, &args.WeightInput)
	if err != nil {
		return nil, "", err
	}
	tx, err := rt.Transaction(ctx, args)
	if err != nil {
		return nil, rt.Name(), fmt.Errorf("route %s: %w", rt.Name(), err)
	}
	return tx, rt.Name(), nil
}
