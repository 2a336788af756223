package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/convert-engine/internal/http/httputil"
	"github.com/hxuan190/convert-engine/internal/registry"
)

type TokenHandler struct {
	tokens *registry.TokenRegistry
}

func NewTokenHandler(tokens *registry.TokenRegistry) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

func (h *TokenHandler) Root() string { return "/tokens" }

func (h *TokenHandler) SetRoutes(g *gin.RouterGroup) {
	g.GET("", h.listTokens)
}

type TokenListRequest struct {
	// Substring match on symbol; empty lists everything on the chain
	Query string `form:"query" example:"USD"`

	ChainID uint64 `form:"chainId" binding:"required" example:"1"`
}

type TokenInfo struct {
	Address  string `json:"address" example:"0xa0b8..."`
	Symbol   string `json:"symbol" example:"USDC"`
	Decimals uint8  `json:"decimals" example:"6"`
	ChainID  uint64 `json:"chainId" example:"1"`
}

// @Summary List convertible tokens
// @Description Search the token registry by symbol substring.
// @Tags tokens
// @Produce json
// @Param query query string false "Symbol substring" example("USD")
// @Param chainId query int true "Chain ID" example(1)
// @Success 200 {array} TokenInfo
// @Failure 400 {object} httputil.Response
// @Router /api/v1/tokens [get]
func (h *TokenHandler) listTokens(c *gin.Context) {
	var req TokenListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	matches := h.tokens.Search(req.Query, req.ChainID)
	out := make([]TokenInfo, 0, len(matches))
	for _, t := range matches {
		out = append(out, TokenInfo{
			Address:  t.Address.Hex(),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			ChainID:  t.ChainID,
		})
	}
	httputil.Success(c, out)
}
