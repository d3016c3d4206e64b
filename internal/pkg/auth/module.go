package auth

import (
	"github.com/polkiloo/cryptopay/internal/config"
	"go.uber.org/fx"
)

// Module provides password hashing and the configured token strategy.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	switch p.Config.TokenStrategy {
	case config.TokenStrategyJWT:
		return NewJWTStrategy(p.Config.JWTSecret, Options{})
	default:
		return NewHMACStrategy(p.Config.JWTSecret, Options{})
	}
}
