package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Target is what the poller refreshes.
type Target interface {
	RefreshAll(ctx context.Context) error
}

// calculateBackoff doubles the interval for each consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// StartPoller launches a background goroutine that refreshes target at a
// fixed cadence, backing off while refreshes fail. It returns immediately.
func StartPoller(ctx context.Context, target Target, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "poller")
	go func() {
		failures := 0
		for {
			if err := target.RefreshAll(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				log.Warn("refresh failed", "failures", failures, "error", err)
			} else {
				if failures > 0 {
					log.Info("refresh recovered", "after_failures", failures)
				}
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}
