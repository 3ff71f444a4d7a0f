package service

import (
	"context"
	"log/slog"
	"time"
)

type expiredEntryCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

// IdempotencyJanitor purges expired idempotency cache entries on an interval.
type IdempotencyJanitor struct {
	cache    expiredEntryCleaner
	logger   *slog.Logger
	interval time.Duration
}

func NewIdempotencyJanitor(cache expiredEntryCleaner, logger *slog.Logger, interval time.Duration) *IdempotencyJanitor {
	return &IdempotencyJanitor{cache: cache, logger: logger, interval: interval}
}

func (j *IdempotencyJanitor) Start(ctx context.Context) {
	j.logger.Info("idempotency janitor started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idempotency janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	n, err := j.cache.CleanExpired(ctx)
	if err != nil {
		j.logger.Error("failed to purge idempotency entries", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("purged idempotency entries", "count", n)
	}
}
