package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/repository"
	"github.com/polkiloo/cryptopay/internal/pkg/lock"
)

const (
	baseRetryDelay = time.Second
	maxRetryDelay  = time.Minute
)

// EventPublisher delivers one event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}

// OutboxRelay moves committed outbox events to the message broker.
type OutboxRelay struct {
	periodic
	outbox    repository.OutboxRepository
	publisher EventPublisher
	batchSize int
	now       func() time.Time
}

// NewOutboxRelay constructs the relay.
func NewOutboxRelay(outbox repository.OutboxRepository, publisher EventPublisher, locker lock.Locker, interval, lockTTL time.Duration, batchSize int, logger *slog.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	r := &OutboxRelay{outbox: outbox, publisher: publisher, batchSize: batchSize, now: time.Now}
	r.periodic = periodic{
		name:     "outbox-relay",
		interval: interval,
		locker:   locker,
		lockTTL:  lockTTL,
		logger:   logger,
		tick: func(ctx context.Context) error {
			_, err := r.relay(ctx)
			return err
		},
	}
	return r
}

// Start launches the relay loop.
func (r *OutboxRelay) Start(ctx context.Context) { r.start(ctx) }

// Stop stops the loop and waits for a running batch.
func (r *OutboxRelay) Stop() { r.stop() }

// RunOnce relays one batch and reports how many events were published.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	var sent int
	_, err := lock.Run(ctx, r.locker, r.name, r.lockTTL, func(ctx context.Context) error {
		n, err := r.relay(ctx)
		sent = n
		return err
	})
	return sent, err
}

func (r *OutboxRelay) relay(ctx context.Context) (int, error) {
	lease := r.lockTTL
	if lease <= 0 {
		lease = maxRetryDelay
	}
	events, err := r.outbox.Lock(ctx, r.batchSize, lease)
	if err != nil {
		return 0, err
	}

	var sent int
	for _, event := range events {
		if err := r.publisher.Publish(ctx, event.EventType, event.Payload); err != nil {
			next := r.now().Add(retryDelay(event.Attempts + 1))
			r.logger.Warn("publish event failed",
				slog.Int64("event_id", event.ID),
				slog.Int("attempt", event.Attempts+1),
				slog.String("error", err.Error()),
			)
			if markErr := r.outbox.MarkFailed(ctx, event.ID, next); markErr != nil {
				r.logger.Error("mark event failed", slog.Int64("event_id", event.ID), slog.String("error", markErr.Error()))
			}
			continue
		}
		if err := r.outbox.MarkSent(ctx, event.ID); err != nil {
			r.logger.Error("mark event sent", slog.Int64("event_id", event.ID), slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	return sent, nil
}

// retryDelay doubles from one second per attempt and caps at one minute.
func retryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return baseRetryDelay
	}
	delay := baseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
