package negotiation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often stale proposals are expired.
const DefaultSweepInterval = time.Hour

// Sweeper periodically expires proposals whose response deadline passed.
type Sweeper struct {
	service  Service
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSweeper creates a sweeper over the given negotiation service.
func NewSweeper(service Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   slog.Default().With("component", "proposal-sweeper"),
	}
}

// Start launches the background loop. Calling Start on a running sweeper is
// a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	go s.run(ctx, s.stopChan, s.doneChan)
	s.logger.Info("proposal sweeper started", slog.Duration("interval", s.interval))
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()

	<-done
	s.logger.Info("proposal sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) {
	expired, err := s.service.ExpireStale(ctx, time.Now())
	if err != nil {
		s.logger.Error("proposal sweep failed", slog.Any("error", err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired stale proposals", slog.Int("count", expired))
	}
}
