package http

import (
	"errors"
	"math/big"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/convert-engine/internal/convert"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/http/httputil"
	"github.com/hxuan190/convert-engine/internal/registry"
	"github.com/hxuan190/convert-engine/internal/routes"
	"github.com/hxuan190/convert-engine/internal/services/router"
)

type QuoteHandler struct {
	convertSvc *convert.Service
	tokens     *registry.TokenRegistry
}

func NewQuoteHandler(convertSvc *convert.Service, tokens *registry.TokenRegistry) *QuoteHandler {
	return &QuoteHandler{convertSvc: convertSvc, tokens: tokens}
}

func (h *QuoteHandler) Root() string { return "/quote" }

func (h *QuoteHandler) SetRoutes(g *gin.RouterGroup) {
	g.GET("", h.getQuote)
}

// QuoteRequest holds the query parameters for a conversion quote
type QuoteRequest struct {
	// Sell token: checksummed address or registered symbol
	From string `form:"from" binding:"required" example:"USDC"`

	// Buy token: checksummed address or registered symbol
	To string `form:"to" binding:"required" example:"nUSD"`

	// Chain ID both tokens live on
	ChainID uint64 `form:"chainId" binding:"required" example:"1"`

	// Sell amount in the sell token's smallest units
	Amount string `form:"amount" binding:"required" example:"100000000"`
}

// AllowanceInfo is one approval the wallet must grant before converting
type AllowanceInfo struct {
	Spender string `json:"spender" example:"0x9f0c..."`
	Token   string `json:"token" example:"0xa0b8..."`
	Amount  string `json:"amount" example:"100000000"`
}

// QuoteResponse is the priced conversion
type QuoteResponse struct {
	// Winning route name, e.g. "anchor-swap" or "anchor-nova-prism"
	Route string `json:"route" example:"anchor-swap"`

	SellAmount string `json:"sellAmount" example:"100000000"`
	BuyAmount  string `json:"buyAmount" example:"99700000000000000000"`

	// Combined venue fee in basis points
	FeeBps int64 `json:"feeBps" example:"30"`

	// Whether the fee is taken from the sell side
	FeeChargedBeforeConvert bool `json:"feeChargedBeforeConvert" example:"false"`

	GasEstimate uint64 `json:"gasEstimate" example:"180000"`

	Allowances []AllowanceInfo `json:"allowances"`

	// USD valuations; omitted when the price feed has no quote
	ValueInUsd  string `json:"valueInUsd,omitempty" example:"100.00"`
	ValueOutUsd string `json:"valueOutUsd,omitempty" example:"99.70"`
}

// @Summary Get conversion quote
// @Description Price a conversion between two tokens. The engine weighs all
// @Description registered routes (pegged swap, synthetic AMM, weighted and
// @Description stable pools, composites, aggregator fallback) and quotes the
// @Description highest-priority applicable one.
// @Tags quote
// @Produce json
// @Param from query string true "Sell token address or symbol" example("USDC")
// @Param to query string true "Buy token address or symbol" example("nUSD")
// @Param chainId query int true "Chain ID" example(1)
// @Param amount query string true "Sell amount in smallest units" example("100000000")
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	args, ok := h.parseQuote(c)
	if !ok {
		return
	}

	quote, err := h.convertSvc.GetQuote(c.Request.Context(), args)
	if err != nil {
		renderConvertError(c, err)
		return
	}

	httputil.Success(c, buildQuoteResponse(quote))
}

func (h *QuoteHandler) parseQuote(c *gin.Context) (*domain.QuoteArgs, bool) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return nil, false
	}

	from, err := h.tokens.Resolve(req.From, req.ChainID)
	if err != nil {
		httputil.BadRequest(c, "unknown sell token: "+req.From)
		return nil, false
	}
	to, err := h.tokens.Resolve(req.To, req.ChainID)
	if err != nil {
		httputil.BadRequest(c, "unknown buy token: "+req.To)
		return nil, false
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		httputil.BadRequest(c, "invalid amount: must be a positive integer")
		return nil, false
	}

	return &domain.QuoteArgs{
		WeightInput: domain.WeightInput{From: from, To: to, ChainID: req.ChainID},
		SellAmount:  amount,
	}, true
}

func buildQuoteResponse(q *domain.Quote) QuoteResponse {
	allowances := make([]AllowanceInfo, 0, len(q.AllowanceTargets))
	for _, a := range q.AllowanceTargets {
		allowances = append(allowances, AllowanceInfo{
			Spender: a.Spender.Hex(),
			Token:   a.Token.Hex(),
			Amount:  a.Amount.String(),
		})
	}

	res := QuoteResponse{
		Route:                   q.Route,
		SellAmount:              q.SellAmount.String(),
		BuyAmount:               q.BuyAmount.String(),
		FeeBps:                  q.FeeBps,
		FeeChargedBeforeConvert: q.FeeChargedBeforeConvert,
		GasEstimate:             q.GasEstimate,
		Allowances:              allowances,
	}
	if q.ValueInUsd != nil {
		res.ValueInUsd = q.ValueInUsd.StringFixed(2)
	}
	if q.ValueOutUsd != nil {
		res.ValueOutUsd = q.ValueOutUsd.StringFixed(2)
	}
	return res
}

// renderConvertError maps facade and route errors onto the HTTP taxonomy.
func renderConvertError(c *gin.Context, err error) {
	var noRoute *router.NoRouteError
	switch {
	case errors.As(err, &noRoute), errors.Is(err, routes.ErrNoPath):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, convert.ErrDifferentChains),
		errors.Is(err, convert.ErrNoProvider),
		errors.Is(err, routes.ErrUnknownChain):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, routes.ErrFeeExceedsSlippage):
		httputil.Unprocessable(c, err.Error())
	default:
		httputil.InternalError(c, err.Error())
	}
}
