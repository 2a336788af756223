package http

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/convert-engine/internal/chain"
	gocommon "github.com/hxuan190/convert-engine/internal/common"
	"github.com/hxuan190/convert-engine/internal/convert"
	"github.com/hxuan190/convert-engine/internal/domain"
	"github.com/hxuan190/convert-engine/internal/http/httputil"
	"github.com/hxuan190/convert-engine/internal/registry"
)

type SwapHandler struct {
	convertSvc      *convert.Service
	tokens          *registry.TokenRegistry
	providers       chain.ProviderResolver
	defaultSlippage int64
}

func NewSwapHandler(
	convertSvc *convert.Service,
	tokens *registry.TokenRegistry,
	providers chain.ProviderResolver,
	defaultSlippage int64,
) *SwapHandler {
	return &SwapHandler{
		convertSvc:      convertSvc,
		tokens:          tokens,
		providers:       providers,
		defaultSlippage: defaultSlippage,
	}
}

func (h *SwapHandler) Root() string { return "/swap" }

func (h *SwapHandler) SetRoutes(g *gin.RouterGroup) {
	g.POST("", h.buildSwap)
}

// walletSigner is the HTTP-facing signer: the API builds unsigned
// transactions for a wallet address, execution happens client side.
type walletSigner struct {
	addr     common.Address
	provider domain.Provider
}

func (s *walletSigner) Address() common.Address   { return s.addr }
func (s *walletSigner) Provider() domain.Provider { return s.provider }

// SwapRequest holds the body for building a conversion transaction
type SwapRequest struct {
	// Wallet that will sign and submit the transaction
	Wallet string `json:"wallet" binding:"required" example:"0xAb58..."`

	// Sell token: checksummed address or registered symbol
	From string `json:"from" binding:"required" example:"USDC"`

	// Buy token: checksummed address or registered symbol
	To string `json:"to" binding:"required" example:"nUSD"`

	// Chain ID both tokens live on
	ChainID uint64 `json:"chainId" binding:"required" example:"1"`

	// Sell amount in the sell token's smallest units
	Amount string `json:"amount" binding:"required" example:"100000000"`

	// Slippage tolerance in basis points; defaults to the configured value
	SlippageBps int64 `json:"slippageBps" example:"50"`
}

// SwapResponse carries the unsigned transaction
type SwapResponse struct {
	To    string `json:"to" example:"0x9f0c..."`
	Data  string `json:"data" example:"0x12aa..."`
	Value string `json:"value,omitempty" example:"0"`

	Gas uint64 `json:"gas,omitempty" example:"180000"`

	// Exactly one fee shape is populated, matching the chain's fee market
	GasPrice  string `json:"gasPrice,omitempty" example:"3000000000"`
	GasTipCap string `json:"maxPriorityFeePerGas,omitempty" example:"1000000000"`
	GasFeeCap string `json:"maxFeePerGas,omitempty" example:"30000000000"`
}

// @Summary Build conversion transaction
// @Description Build the unsigned transaction for the best route between two
// @Description tokens. The wallet signs and submits it client side; required
// @Description token approvals are listed by the quote endpoint.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapRequest true "Conversion request"
// @Success 200 {object} SwapResponse
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/swap [post]
func (h *SwapHandler) buildSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if !common.IsHexAddress(req.Wallet) {
		httputil.BadRequest(c, "invalid wallet address")
		return
	}

	from, err := h.tokens.Resolve(req.From, req.ChainID)
	if err != nil {
		httputil.BadRequest(c, "unknown sell token: "+req.From)
		return
	}
	to, err := h.tokens.Resolve(req.To, req.ChainID)
	if err != nil {
		httputil.BadRequest(c, "unknown buy token: "+req.To)
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		httputil.BadRequest(c, "invalid amount: must be a positive integer")
		return
	}

	slippage := req.SlippageBps
	if slippage == 0 {
		slippage = h.defaultSlippage
	}
	if slippage < 0 || slippage > gocommon.MaxSlippageBps {
		httputil.BadRequest(c, "slippageBps out of range")
		return
	}

	provider, err := h.providers.Default(c.Request.Context(), req.ChainID)
	if err != nil {
		httputil.BadRequest(c, "unsupported chain: "+err.Error())
		return
	}

	args := &domain.TransactionArgs{
		QuoteArgs: domain.QuoteArgs{
			WeightInput: domain.WeightInput{From: from, To: to, ChainID: req.ChainID},
			SellAmount:  amount,
		},
		Signer:      &walletSigner{addr: common.HexToAddress(req.Wallet), provider: provider},
		SlippageBps: slippage,
	}

	tx, err := h.convertSvc.GetSwap(c.Request.Context(), args)
	if err != nil {
		renderConvertError(c, err)
		return
	}

	res := SwapResponse{
		To:   tx.To.Hex(),
		Data: "0x" + common.Bytes2Hex(tx.Data),
		Gas:  tx.Gas,
	}
	if tx.Value != nil {
		res.Value = tx.Value.String()
	}
	if tx.GasPrice != nil {
		res.GasPrice = tx.GasPrice.String()
	}
	if tx.GasTipCap != nil {
		res.GasTipCap = tx.GasTipCap.String()
	}
	if tx.GasFeeCap != nil {
		res.GasFeeCap = tx.GasFeeCap.String()
	}
	httputil.Success(c, res)
}
