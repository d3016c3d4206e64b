package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newEngine)

type engineParams struct {
	fx.In

	Facade handlers.PaymentFacade
	Config *config.Config
	Logger *slog.Logger
}

func newEngine(p engineParams) *gin.Engine {
	if p.Config.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return Setup(p.Facade, p.Logger)
}
