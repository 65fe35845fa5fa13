package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrQuotaExceeded is returned when the provider reports an exhausted quota.
var ErrQuotaExceeded = errors.New("daily AI quota exceeded: you have reached your plan's request limit, " +
	"please try again tomorrow or upgrade your provider plan")

const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultRateLimitFloor = 5 * time.Second
)

// Controller runs a single generation call with bounded retries.
// It holds no state between calls and is safe for concurrent use.
type Controller struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	RateLimitFloor time.Duration
	Classify       Classifier
	Logger         *zap.Logger

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewController returns a controller with the default policy.
func NewController(logger *zap.Logger) *Controller {
	return &Controller{
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		RateLimitFloor: DefaultRateLimitFloor,
		Classify:       ClassifyText,
		Logger:         logger,
	}
}

// Delay returns the wait before the retry that follows attempt (zero-based).
func (c *Controller) Delay(attempt int, rateLimited bool) time.Duration {
	delay := c.baseDelay() << uint(attempt)
	if rateLimited && delay < c.rateLimitFloor() {
		delay = c.rateLimitFloor()
	}
	return delay
}

// Do invokes action until it succeeds, fails with a non-retryable error,
// or the attempt budget is spent.
func Do[T any](ctx context.Context, c *Controller, action func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		c = NewController(nil)
	}
	maxAttempts := c.maxAttempts()
	classify := c.Classify
	if classify == nil {
		classify = ClassifyText
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		value, err := action(ctx)
		if err == nil {
			return value, nil
		}

		result := classify(SignalFromError(err))
		switch result.Class {
		case TerminalQuota:
			logger.Warn("generation quota exhausted", zap.Int("attempt", attempt+1), zap.Error(err))
			return zero, fmt.Errorf("%w (%v)", ErrQuotaExceeded, err)
		case Fatal:
			return zero, err
		}

		if attempt == maxAttempts-1 {
			return zero, err
		}

		delay := c.Delay(attempt, result.RateLimited)
		logger.Info("retrying generation call",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Bool("rate_limited", result.RateLimited),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("generation call failed")
}

func (c *Controller) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

func (c *Controller) baseDelay() time.Duration {
	if c.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return c.BaseDelay
}

func (c *Controller) rateLimitFloor() time.Duration {
	if c.RateLimitFloor <= 0 {
		return DefaultRateLimitFloor
	}
	return c.RateLimitFloor
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
