package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/cryptopay/internal/pkg/lock"
)

// periodic runs tick every interval under a named job lock.
type periodic struct {
	name     string
	interval time.Duration
	locker   lock.Locker
	lockTTL  time.Duration
	logger   *slog.Logger
	tick     func(ctx context.Context) error

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func (p *periodic) start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.runTick(runCtx)
			}
		}
	}()
}

func (p *periodic) stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *periodic) runTick(ctx context.Context) {
	ran, err := lock.Run(ctx, p.locker, p.name, p.lockTTL, p.tick)
	if err != nil {
		p.logger.Error("job tick failed", slog.String("job", p.name), slog.String("error", err.Error()))
		return
	}
	if !ran {
		p.logger.Debug("job tick skipped, lock busy", slog.String("job", p.name))
	}
}
