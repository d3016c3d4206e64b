package repository

import (
	"context"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// OutboxRepository hands out pending events to the relay.
type OutboxRepository interface {
	Lock(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, nextRetry time.Time) error
}
