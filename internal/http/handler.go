package http

import (
	"context"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hxuan190/convert-engine/internal/chain"
	"github.com/hxuan190/convert-engine/internal/config"
	"github.com/hxuan190/convert-engine/internal/convert"
	"github.com/hxuan190/convert-engine/internal/http/httputil"
	"github.com/hxuan190/convert-engine/internal/http/middlewares"
	"github.com/hxuan190/convert-engine/internal/registry"
)

const API_VERSION = "v1"

type HTTPService struct {
	convertSvc  *convert.Service
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func NewHTTPService(
	conf *config.GeneralConfig,
	routing *config.RoutingConfig,
	convertSvc *convert.Service,
	tokens *registry.TokenRegistry,
	providers chain.ProviderResolver,
) *HTTPService {
	return &HTTPService{
		convertSvc:  convertSvc,
		rateLimiter: middlewares.NewRateLimiter(10, 20),
		conf:        conf,
		handlers: []httputil.IHttpHandler{
			NewQuoteHandler(convertSvc, tokens),
			NewSwapHandler(convertSvc, tokens, providers, routing.DefaultSlippageBps),
			NewTokenHandler(tokens),
		},
	}
}

func (svc *HTTPService) Start() error {
	r := gin.Default()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowCredentials = true
	corsConf.AddAllowHeaders("Authorization", "X-Wallet-Address")
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	for _, h := range svc.handlers {
		h.SetRoutes(pub.Group(h.Root()))
	}

	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: r,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}
