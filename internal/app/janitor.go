package app

import (
	"context"
	"log/slog"
	"time"
)

type expiredCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// runJanitor deletes expired URLs every interval until ctx is done.
func runJanitor(ctx context.Context, cleaner expiredCleaner, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cleaner.CleanupExpired(ctx)
			if err != nil {
				logger.Error("failed to clean up expired urls", slog.Any("err", err))
				continue
			}
			if n > 0 {
				logger.Info("expired urls removed", slog.Int("count", n))
			}
		}
	}
}
