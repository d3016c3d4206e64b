package postgres

import (
	"context"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

type outboxRepository struct {
	storage *Storage
	now     func() time.Time
}

func (r *outboxRepository) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Lock leases up to limit due events. Leased rows stay invisible to other
// relays until the lease runs out.
func (r *outboxRepository) Lock(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxEvent, error) {
	const query = `UPDATE outbox_events SET next_retry=$2, updated_at=NOW()
                   WHERE id IN (
                       SELECT id FROM outbox_events
                       WHERE status='pending' AND next_retry <= $3
                       ORDER BY id
                       LIMIT $1
                       FOR UPDATE SKIP LOCKED)
                   RETURNING id, event_type, payload, attempts, created_at`
	now := r.clock()
	rows, err := r.storage.pool.Query(ctx, query, limit, now.Add(lease), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	const query = `UPDATE outbox_events SET status='sent', updated_at=NOW() WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, nextRetry time.Time) error {
	const query = `UPDATE outbox_events SET attempts=attempts+1, next_retry=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id, nextRetry)
	return err
}
