package services

import (
	"context"
	"sync"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
)

type ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time    { return t.t.C }
func (t timeTicker) Reset(d time.Duration) { t.t.Reset(d) }
func (t timeTicker) Stop()                 { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Poller runs fn once on Start and then on every tick until Stop. The interval
// can be changed while running. fn receives a context that is cancelled by
// Stop, so in-flight requests are aborted rather than left to finish.
type Poller struct {
	name   string
	fn     func(ctx context.Context)
	logger *logging.Logger

	newTicker func(time.Duration) ticker

	mu       sync.Mutex
	interval time.Duration
	tick     ticker
	cancel   context.CancelFunc
	done     chan struct{}
	trigger  chan struct{}
}

func NewPoller(name string, interval time.Duration, fn func(ctx context.Context), logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.Default
	}
	return &Poller{
		name:      name,
		fn:        fn,
		logger:    logger,
		interval:  interval,
		newTicker: newTimeTicker,
	}
}

// Start launches the loop. It is a no-op when already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.tick = p.newTicker(p.interval)
	p.done = make(chan struct{})
	p.trigger = make(chan struct{}, 1)

	p.logger.Debug("Poller started", map[string]interface{}{"poller": p.name, "interval": p.interval.String()})
	go p.loop(loopCtx, p.tick, p.trigger, p.done)
}

func (p *Poller) loop(ctx context.Context, t ticker, trigger <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	p.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
		case <-trigger:
		}
		if ctx.Err() != nil {
			return
		}
		p.fn(ctx)
	}
}

// SetInterval changes the period; a running loop picks it up on its next tick.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == p.interval {
		return
	}
	p.interval = d
	if p.tick != nil {
		p.tick.Reset(d)
	}
	p.logger.Debug("Poller interval changed", map[string]interface{}{"poller": p.name, "interval": d.String()})
}

func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Trigger asks a running loop for an extra run. Extra triggers coalesce.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger == nil {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Stop cancels the loop and waits for it to exit. After Stop returns fn is
// not called again until the next Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.tick.Stop()
	done := p.done
	p.cancel = nil
	p.tick = nil
	p.trigger = nil
	p.mu.Unlock()

	<-done
	p.logger.Debug("Poller stopped", map[string]interface{}{"poller": p.name})
}
