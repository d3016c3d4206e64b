package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// ReconcileFacadeStub mimics worker interactions with the reconciliation use case.
type ReconcileFacadeStub struct {
	Orders     [][]model.Order
	OrdersFn   func(context.Context, int) ([]model.Order, error)
	CompleteFn func(context.Context, model.Order) error
	Completed  []string
	mu         sync.Mutex
	calls      int32
}

// Lock exposes internal mutex for external synchronization.
func (s *ReconcileFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *ReconcileFacadeStub) Unlock() { s.mu.Unlock() }

// PendingFulfillment returns batches from configured queue.
func (s *ReconcileFacadeStub) PendingFulfillment(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	return nil, nil
}

// Complete records completed order ids.
func (s *ReconcileFacadeStub) Complete(ctx context.Context, order model.Order) error {
	if s.CompleteFn != nil {
		if err := s.CompleteFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completed = append(s.Completed, order.OrderID)
	return nil
}

// CompletedCount returns the number of completed orders.
func (s *ReconcileFacadeStub) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Completed)
}

// SweepFacadeStub counts sweeps and answers with configured ids.
type SweepFacadeStub struct {
	IDs   []string
	Err   error
	calls int32
	last  atomic.Value
}

// ExpireStale records the call and returns configured data.
func (s *SweepFacadeStub) ExpireStale(_ context.Context, now time.Time) ([]string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.last.Store(now)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.IDs, nil
}

// Calls returns how many sweeps were executed.
func (s *SweepFacadeStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

// PublisherStub records published events.
type PublisherStub struct {
	PublishFn func(context.Context, string, []byte) error
	Published []string
	Closed    bool
	mu        sync.Mutex
}

// Publish stores the routing key unless the override fails.
func (p *PublisherStub) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if p.PublishFn != nil {
		if err := p.PublishFn(ctx, routingKey, payload); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, routingKey)
	return nil
}

// Close marks the publisher closed.
func (p *PublisherStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Count returns the number of published events.
func (p *PublisherStub) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}
