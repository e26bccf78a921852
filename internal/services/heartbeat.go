package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
)

// Heartbeat tells the backend the user is active: once on start, then on a
// fixed interval, plus on user interaction no more often than the throttle.
type Heartbeat struct {
	userID  string
	api     ActivityRecorder
	logger  *logging.Logger
	poller  *Poller
	limiter *rate.Limiter
	now     func() time.Time

	mu  sync.RWMutex
	ctx context.Context
}

func NewHeartbeat(userID string, api ActivityRecorder, interval, throttle time.Duration, logger *logging.Logger) *Heartbeat {
	if logger == nil {
		logger = logging.Default
	}
	h := &Heartbeat{
		userID:  userID,
		api:     api,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(throttle), 1),
		now:     time.Now,
	}
	h.poller = NewPoller("heartbeat", interval, h.beat, logger)
	return h
}

func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()
	h.poller.Start(ctx)
}

// Stop waits for any in-flight interaction beat before returning.
func (h *Heartbeat) Stop() {
	h.poller.Stop()
	h.mu.Lock()
	h.ctx = nil
	h.mu.Unlock()
}

// Interaction records activity if the throttle allows it and reports whether
// a beat was sent.
func (h *Heartbeat) Interaction() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.ctx == nil || h.ctx.Err() != nil {
		return false
	}
	if !h.limiter.AllowN(h.now(), 1) {
		return false
	}
	h.beat(h.ctx)
	return true
}

func (h *Heartbeat) beat(ctx context.Context) {
	if err := h.api.RecordActivity(ctx, h.userID); err != nil {
		h.logger.Debug("Activity heartbeat failed", map[string]interface{}{
			"user_id": h.userID,
			"error":   err.Error(),
		})
	}
}
