package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the scheduler runs the policy.
const DefaultInterval = 6 * time.Hour

// Scheduler runs a Policy on a fixed interval. A failed run is logged and
// retried at the next tick.
type Scheduler struct {
	mu       sync.RWMutex
	policy   *Policy
	interval time.Duration
	onPurge  func(Result)
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a scheduler. onPurge, if set, is called after runs that
// deleted at least one task.
func NewScheduler(policy *Policy, interval time.Duration, onPurge func(Result), logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		policy:   policy,
		interval: interval,
		onPurge:  onPurge,
		logger:   logger,
	}
}

// Start runs the policy once immediately, then on every tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	res, err := s.policy.Run()
	if err != nil {
		s.logger.Error("retention run failed", "error", err)
		return
	}
	if res.Deleted > 0 && s.onPurge != nil {
		s.onPurge(res)
	}
}
