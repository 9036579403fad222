package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/anchor/item"
)

// Logging returns middleware that logs item start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, it *item.Item, next Handler) error {
		logger.Debug("item started",
			slog.String("item_id", it.ID.String()),
			slog.String("kind", string(it.Kind)),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("item failed",
				slog.String("item_id", it.ID.String()),
				slog.String("kind", string(it.Kind)),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("item completed",
				slog.String("item_id", it.ID.String()),
				slog.String("kind", string(it.Kind)),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
