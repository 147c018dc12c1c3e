// Package search finds a location's tide page through the site's search
// box. The site throttles repeated searches, so each query is retried with
// growing pauses until the hinted result shows up or the attempt budget runs
// out.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/spencer-p/hightides/pkg/backoff"
	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/metrics"
	"github.com/spencer-p/hightides/pkg/page"
	"github.com/spencer-p/hightides/pkg/tideschart"
)

const (
	DefaultMaxAttempts = 10
	DefaultQuickWait   = 5 * time.Second
	DefaultLongWait    = 30 * time.Second
)

// ErrRetryBudgetExceeded is returned when no attempt confirmed a result.
var ErrRetryBudgetExceeded = errors.New("search retry budget exceeded")

// State records what happened during one Resolve call.
type State struct {
	Attempts  int
	Timeouts  int
	Throttles int
	// Slept holds every pause taken between attempts.
	Slept []time.Duration
}

// Engine resolves search locations. An Engine holds no per-search state and
// may be shared by concurrent workers, each with its own driver.
type Engine struct {
	MaxAttempts int
	// QuickWait bounds the wait for search results and for the throttle
	// banner.
	QuickWait time.Duration
	// LongWait bounds the wait for the search box to load.
	LongWait time.Duration
	// Limiter, when set, paces search submissions across all users of the
	// engine.
	Limiter *rate.Limiter
	// Sleep pauses between attempts. Defaults to a timer that honors ctx.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// Resolve searches for loc.Query and returns the result link whose search
// item contains loc.Hint, ready to be clicked. The returned State is valid
// on failure too.
func (e *Engine) Resolve(ctx context.Context, loc locations.Search, drv page.Driver) (page.Element, State, error) {
	var (
		state   State
		pauses  backoff.Sequence
		budget  = e.maxAttempts()
		result  = tideschart.SearchResult(loc.Hint)
		logger  = e.logger().With("query", loc.Query, "hint", loc.Hint)
		lastErr error
	)

	for state.Attempts < budget {
		if state.Attempts > 0 {
			pause := pauses.Next()
			logger.Debug("pausing before next search", "pause", pause, "attempt", state.Attempts)
			if err := e.sleep(ctx, pause); err != nil {
				return nil, state, err
			}
			state.Slept = append(state.Slept, pause)
		}

		state.Attempts++
		metrics.ObserveSearchAttempt()
		elem, err := e.attempt(ctx, loc, drv, result, &state)
		if err == nil {
			logger.Info("search confirmed", "attempts", state.Attempts, "timeouts", state.Timeouts, "throttles", state.Throttles)
			return elem, state, nil
		}
		if ctx.Err() != nil {
			return nil, state, ctx.Err()
		}
		lastErr = err
		logger.Warn("search attempt failed", "attempt", state.Attempts, "error", err)
	}

	logger.Error("search gave up", "attempts", state.Attempts, "timeouts", state.Timeouts, "throttles", state.Throttles)
	return nil, state, fmt.Errorf("%w: %q after %d attempts (%d timeouts, %d throttled): %v",
		ErrRetryBudgetExceeded, loc.Query, state.Attempts, state.Timeouts, state.Throttles, lastErr)
}

// attempt runs one search and waits for the hinted result.
func (e *Engine) attempt(ctx context.Context, loc locations.Search, drv page.Driver, result page.Selector, state *State) (page.Element, error) {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := drv.Navigate(ctx, tideschart.BaseURL); err != nil {
		return nil, err
	}
	if _, err := drv.WaitFor(ctx, tideschart.SearchBox, e.longWait()); err != nil {
		return nil, fmt.Errorf("search box: %w", err)
	}
	if err := drv.SubmitText(ctx, tideschart.SearchBox, loc.Query); err != nil {
		return nil, err
	}

	elem, err := drv.WaitFor(ctx, result, e.quickWait())
	if err == nil {
		return elem, nil
	}
	if !errors.Is(err, page.ErrTimeout) {
		return nil, err
	}

	state.Timeouts++
	metrics.ObserveSearchTimeout()
	// Throttling and a plain miss are retried alike; the count is only
	// reported.
	if _, perr := drv.WaitFor(ctx, tideschart.Throttled, e.quickWait()); perr == nil {
		state.Throttles++
		metrics.ObserveSearchThrottle()
		return nil, fmt.Errorf("throttled: %w", err)
	}
	return nil, err
}

func (e *Engine) maxAttempts() int {
	if e.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return e.MaxAttempts
}

func (e *Engine) quickWait() time.Duration {
	if e.QuickWait <= 0 {
		return DefaultQuickWait
	}
	return e.QuickWait
}

func (e *Engine) longWait() time.Duration {
	if e.LongWait <= 0 {
		return DefaultLongWait
	}
	return e.LongWait
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
