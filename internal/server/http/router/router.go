package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cryptopay/internal/server/http/handlers"
	"github.com/polkiloo/cryptopay/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware. Webhook and
// health routes are public; everything under the auth group needs a token.
func Setup(facade handlers.PaymentFacade, logger *slog.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	purchaseHandler := handlers.NewPurchaseHandler(facade)
	accountHandler := handlers.NewAccountHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.POST("/payments/webhook", webhookHandler.Notify)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.GET("/user/account", accountHandler.Account)
	authed.GET("/user/ledger", accountHandler.Ledger)
	authed.GET("/packages", purchaseHandler.Packages)
	authed.POST("/orders", purchaseHandler.Create)
	authed.GET("/orders", purchaseHandler.List)
	authed.GET("/orders/:id", purchaseHandler.Get)
	authed.POST("/orders/:id/refresh", purchaseHandler.Refresh)

	return engine
}
