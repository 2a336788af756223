package http

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/convert-engine/internal/convert"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/registry"
	"github.com/hxuan190/convert-engine/internal/routes"
	"github.com/hxuan190/convert-engine/internal/services/router"
)

type stubRoute struct {
	name   string
	weight routes.Weight
	quote  *domain.RawQuote
}

func (r *stubRoute) Name() string { return r.name }

func (r *stubRoute) Weight(context.Context, *domain.WeightInput) (routes.Weight, error) {
	return r.weight, nil
}

func (r *stubRoute) Quote(context.Context, *domain.QuoteArgs) (*domain.RawQuote, error) {
	return r.quote, nil
}

func (r *stubRoute) Transaction(context.Context, *domain.TransactionArgs) (*domain.TxRequest, error) {
	return &domain.TxRequest{}, nil
}

func testRegistry(t *testing.T) *registry.TokenRegistry {
	t.Helper()
	reg := registry.NewTokenRegistry()
	reg.Register(domain.Token{
		Address: common.BytesToAddress([]byte{0x02}), Symbol: "USDC", Decimals: 6, ChainID: 1,
		Roles: domain.RoleStable | domain.RolePeggedCollateral,
	})
	reg.Register(domain.Token{
		Address: common.BytesToAddress([]byte{0x03}), Symbol: "nUSD", Decimals: 18, ChainID: 1,
		Roles: domain.RoleSynthetic,
	})
	return reg
}

func quoteRouter(t *testing.T, route routes.Route) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := convert.NewService(router.New(route), nil, nil)
	h := NewQuoteHandler(svc, testRegistry(t))

	r := gin.New()
	h.SetRoutes(r.Group("/api/v1" + h.Root()))
	return r
}

func TestGetQuoteHappyPath(t *testing.T) {
	route := &stubRoute{
		name:   "anchor-swap",
		weight: 500,
		quote: &domain.RawQuote{
			SellAmount:  big.NewInt(100_000_000),
			BuyAmount:   new(big.Int).Mul(big.NewInt(997), big.NewInt(1e17)),
			FeeBps:      30,
			GasEstimate: 180_000,
			AllowanceTargets: []domain.AllowanceTarget{{
				Spender: common.BytesToAddress([]byte{0x10}),
				Token:   common.BytesToAddress([]byte{0x02}),
				Amount:  big.NewInt(100_000_000),
			}},
		},
	}
	r := quoteRouter(t, route)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/quote?from=USDC&to=nUSD&chainId=1&amount=100000000", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var body struct {
		Success bool          `json:"success"`
		Data    QuoteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "anchor-swap", body.Data.Route)
	require.Equal(t, "99700000000000000000", body.Data.BuyAmount)
	require.Equal(t, int64(30), body.Data.FeeBps)
	require.Len(t, body.Data.Allowances, 1)
	require.Equal(t, "100000000", body.Data.Allowances[0].Amount)
}

func TestGetQuoteNoRouteIs404(t *testing.T) {
	r := quoteRouter(t, &stubRoute{name: "anchor-swap", weight: 0})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/quote?from=USDC&to=nUSD&chainId=1&amount=1", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, 404, rec.Code)
	require.Contains(t, rec.Body.String(), "No route found for USDC and nUSD")
}

func TestGetQuoteUnknownTokenIs400(t *testing.T) {
	r := quoteRouter(t, &stubRoute{name: "anchor-swap", weight: 500})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/quote?from=DOGE&to=nUSD&chainId=1&amount=1", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, 400, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown sell token")
}

func TestGetQuoteRejectsNonPositiveAmount(t *testing.T) {
	r := quoteRouter(t, &stubRoute{name: "anchor-swap", weight: 500})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/quote?from=USDC&to=nUSD&chainId=1&amount=-5", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, 400, rec.Code)
}

func TestListTokensFiltersBySymbol(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTokenHandler(testRegistry(t))

	r := gin.New()
	h.SetRoutes(r.Group("/api/v1" + h.Root()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/tokens?query=USD&chainId=1", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var body struct {
		Data []TokenInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
}
