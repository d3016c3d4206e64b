package messaging

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/config"
)

// Module provides the event Publisher.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) Publisher {
	if p.Config.AMQPURL == "" {
		p.Logger.Info("no AMQP broker configured, events are logged")
		return NewLogPublisher(p.Logger)
	}
	publisher := NewRabbitPublisher(p.Config.AMQPURL, p.Config.AMQPExchange)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
