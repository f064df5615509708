package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs the start and outcome of each
// handled self-call. Failures are logged here because the dispatching
// caller fired and forgot — this log line may be the only place an
// execution failure surfaces.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, info Info, next Handler) error {
		logger.Info("self-call started",
			slog.String("identifier", info.Identifier),
			slog.String("job", info.Job),
			slog.String("mode", info.Mode),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("self-call failed",
				slog.String("identifier", info.Identifier),
				slog.String("job", info.Job),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("self-call completed",
				slog.String("identifier", info.Identifier),
				slog.String("job", info.Job),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
