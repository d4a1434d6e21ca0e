package relationship

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/socialdoc/flock/internal/metrics"
)

// step is one independent write of a multi-document cascade.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runCascade executes steps in order and stops at the first failure. The
// store has no transactions; earlier steps stay applied, which is safe
// because every step is idempotent and the caller can retry the whole
// operation.
func runCascade(ctx context.Context, cascade string, steps []step) error {
	for i, s := range steps {
		if err := s.run(ctx); err != nil {
			metrics.CascadeStepsTotal.WithLabelValues(cascade, "error").Inc()
			slog.ErrorContext(ctx, "cascade step failed",
				"cascade", cascade,
				"step", s.name,
				"index", i,
				"total", len(steps),
				"error", err)
			return fmt.Errorf("cascade %s, step %q: %w", cascade, s.name, err)
		}
		metrics.CascadeStepsTotal.WithLabelValues(cascade, "ok").Inc()
	}
	return nil
}
