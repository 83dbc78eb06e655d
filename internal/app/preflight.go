package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/juju/clock"

	"github.com/five82/ams/internal/api"
)

const (
	preflightPath   = "/api/"
	preflightBudget = 3 * time.Second
	preflightMaxGap = time.Second
)

// preflight waits for the API to answer. Any HTTP response counts: the server
// is reachable even when the root route is not served. Transport failures
// are retried with exponential backoff until budget is spent.
func preflight(ctx context.Context, f api.Fetcher, clk clock.Clock, budget time.Duration, logger *slog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = preflightMaxGap
	b.RandomizationFactor = 0
	b.Reset()

	deadline := clk.Now().Add(budget)
	for attempt := 1; ; attempt++ {
		var raw any
		err := f.Get(ctx, preflightPath, &raw)
		var httpErr *api.HTTPError
		if err == nil || errors.As(err, &httpErr) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop || !clk.Now().Add(wait).Before(deadline) {
			return fmt.Errorf("api unreachable after %d attempts: %w", attempt, err)
		}
		logger.Debug("api not reachable yet", "attempt", attempt, "retry_in", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(wait):
		}
	}
}
