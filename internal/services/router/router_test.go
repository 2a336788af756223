package router

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/routes"
)

// fakeRoute scripts the three operations for selection tests.
type fakeRoute struct {
	name      string
	weight    routes.Weight
	weightErr error
	panics    bool

	quote    *domain.RawQuote
	quoteErr error
}

func (f *fakeRoute) Name() string { return f.name }

func (f *fakeRoute) Weight(context.Context, *domain.WeightInput) (routes.Weight, error) {
	if f.panics {
		panic("scripted panic")
	}
	return f.weight, f.weightErr
}

func (f *fakeRoute) Quote(context.Context, *domain.QuoteArgs) (*domain.RawQuote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeRoute) Transaction(context.Context, *domain.TransactionArgs) (*domain.TxRequest, error) {
	return &domain.TxRequest{}, nil
}

func input() *domain.WeightInput {
	return &domain.WeightInput{
		From: domain.Token{Symbol: "FOO", ChainID: 1},
		To:   domain.Token{Symbol: "BAR", ChainID: 1},
	}
}

func TestSelectPicksHighestWeight(t *testing.T) {
	r := New(
		&fakeRoute{name: "low", weight: 100},
		&fakeRoute{name: "high", weight: 500},
		&fakeRoute{name: "mid", weight: 300},
	)

	rt, err := r.Select(context.Background(), input())
	require.NoError(t, err)
	require.Equal(t, "high", rt.Name())
}

func TestSelectTieKeepsRegistrationOrder(t *testing.T) {
	r := New(
		&fakeRoute{name: "first", weight: 400},
		&fakeRoute{name: "second", weight: 400},
		&fakeRoute{name: "third", weight: 400},
	)

	// Registration order is the documented tie-break.
	for i := 0; i < 50; i++ {
		rt, err := r.Select(context.Background(), input())
		require.NoError(t, err)
		require.Equal(t, "first", rt.Name())
	}
}

func TestSelectDowngradesFailuresToZero(t *testing.T) {
	r := New(
		&fakeRoute{name: "broken", weight: 900, weightErr: errors.New("boom")},
		&fakeRoute{name: "panicky", panics: true},
		&fakeRoute{name: "ok", weight: 100},
	)

	rt, err := r.Select(context.Background(), input())
	require.NoError(t, err)
	require.Equal(t, "ok", rt.Name())
}

func TestSelectNoRoute(t *testing.T) {
	r := New(
		&fakeRoute{name: "a", weight: 0},
		&fakeRoute{name: "b", weightErr: errors.New("boom")},
	)

	_, err := r.Select(context.Background(), input())
	var noRoute *NoRouteError
	require.ErrorAs(t, err, &noRoute)
	require.EqualError(t, err, "No route found for FOO and BAR")
}

func TestQuoteDoesNotRetryAcrossRoutes(t *testing.T) {
	quoteErr := errors.New("state unavailable")
	r := New(
		&fakeRoute{name: "winner", weight: 500, quoteErr: quoteErr},
		&fakeRoute{name: "fallback", weight: 100, quote: &domain.RawQuote{BuyAmount: big.NewInt(1)}},
	)

	_, name, err := r.Quote(context.Background(), &domain.QuoteArgs{WeightInput: *input(), SellAmount: big.NewInt(1)})
	require.Equal(t, "winner", name)
	require.ErrorIs(t, err, quoteErr)
}

func TestSelectIsDeterministic(t *testing.T) {
	r := New(
		&fakeRoute{name: "r1", weight: 180},
		&fakeRoute{name: "r2", weight: 320},
		&fakeRoute{name: "r3", weight: 320},
		&fakeRoute{name: "r4", weight: 200},
	)

	for i := 0; i < 100; i++ {
		rt, err := r.Select(context.Background(), input())
		require.NoError(t, err)
		require.Equal(t, "r2", rt.Name())
	}
}
