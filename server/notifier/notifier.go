// Package notifier delivers best-effort notifications to users. Delivery is
// fire-and-forget: failures are logged and never propagate to the caller.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Sender is the transport behind the notifier. Implementations push to
// whatever channel reaches the user (chat bot, webhook, email).
type Sender interface {
	Send(ctx context.Context, userID int32, message string) error
}

// Notifier fans notifications out through a Sender with a per-user rate
// limit so a noisy negotiation cannot flood anyone.
type Notifier struct {
	sender  Sender
	limit   rate.Limit
	burst   int
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	limiters map[int32]*rate.Limiter
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithRateLimit overrides the default per-user limit of one notification
// per second with a burst of five.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(n *Notifier) {
		n.limit = limit
		n.burst = burst
	}
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(timeout time.Duration) Option {
	return func(n *Notifier) {
		n.timeout = timeout
	}
}

// New creates a Notifier over the given sender.
func New(sender Sender, options ...Option) *Notifier {
	n := &Notifier{
		sender:   sender,
		limit:    rate.Every(time.Second),
		burst:    5,
		timeout:  5 * time.Second,
		logger:   slog.Default().With("component", "notifier"),
		limiters: map[int32]*rate.Limiter{},
	}
	for _, option := range options {
		option(n)
	}
	return n
}

// Notify sends message to userID. It returns whether delivery was attempted
// and succeeded; callers must not branch on the result beyond logging.
func (n *Notifier) Notify(ctx context.Context, userID int32, message string) bool {
	if !n.limiterFor(userID).Allow() {
		n.logger.Warn("notification dropped by rate limit", slog.Int("user", int(userID)))
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, userID, message); err != nil {
		n.logger.Warn("notification delivery failed",
			slog.Int("user", int(userID)), slog.Any("error", err))
		return false
	}
	return true
}

func (n *Notifier) limiterFor(userID int32) *rate.Limiter {
	n.mu.Lock()
	defer n.mu.Unlock()
	limiter, ok := n.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(n.limit, n.burst)
		n.limiters[userID] = limiter
	}
	return limiter
}

// LogSender is a Sender that only records deliveries in the log. It is the
// default when no external channel is configured.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, userID int32, message string) error {
	slog.Info("notification", slog.Int("user", int(userID)), slog.String("message", message))
	return nil
}
