// Package tides fetches the weekly high tides of a set of locations. Every
// location gets a result: either its high tides or the error that stopped
// it. One location failing never stops the others.
package tides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/metrics"
	"github.com/spencer-p/hightides/pkg/page"
	"github.com/spencer-p/hightides/pkg/search"
	"github.com/spencer-p/hightides/pkg/tideschart"
	"github.com/spencer-p/hightides/pkg/timetricks"
)

// ErrLayout is returned when a tide page does not have the weekly table the
// parser expects.
var ErrLayout = errors.New("unexpected page layout")

// Result is the outcome for one location.
type Result struct {
	Location locations.Location
	// HighTides holds one or two times per day, in table order.
	HighTides []time.Time
	// Rows is the parsed weekly table, low tides and sun times included.
	Rows []tideschart.Row
	// Search is set for search locations, on failure too.
	Search *search.State
	// Fetched is when the location was processed.
	Fetched time.Time
	Err     error
}

// Results maps location keys to their outcome.
type Results map[string]Result

// Failed returns the keys of locations that did not produce high tides.
func (rs Results) Failed() []string {
	var keys []string
	for k, r := range rs {
		if r.Err != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// Store persists successful results.
type Store interface {
	Save(ctx context.Context, r Result) error
}

// Runner fetches a set of locations with a pool of page sessions.
type Runner struct {
	// Open starts a page session. Each worker opens its own session the
	// first time it has work.
	Open page.Opener
	// Search resolves search locations. A zero Engine is used when nil.
	Search *search.Engine
	// Workers is the number of concurrent sessions. Defaults to one.
	Workers int
	// LongWait bounds the wait for the weekly table.
	LongWait time.Duration
	// Now returns the current time. Day numbers in the tables are resolved
	// against it.
	Now func() time.Time
	// Store, if set, receives every successful result.
	Store  Store
	Logger *slog.Logger
}

// Run processes every location in set and returns a result for each. The
// only error is for a set that is not well formed.
func (r *Runner) Run(ctx context.Context, set locations.Set) (Results, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	var (
		results = make(Results, len(set.Locations))
		mu      sync.Mutex
		jobs    = make(chan locations.Location)
		g       errgroup.Group
	)
	record := func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		results[res.Location.Key()] = res
	}

	workers := min(r.workers(), max(len(set.Locations), 1))
	for id := range workers {
		g.Go(func() error {
			r.work(ctx, id, jobs, record)
			return nil
		})
	}
	for _, loc := range set.Locations {
		jobs <- loc
	}
	close(jobs)
	_ = g.Wait()

	r.logger().Info("run finished", "mode", set.Mode, "locations", len(set.Locations), "failed", len(results.Failed()))
	return results, nil
}

// work drains jobs with one page session.
func (r *Runner) work(ctx context.Context, id int, jobs <-chan locations.Location, record func(Result)) {
	logger := r.logger().With("worker", id)

	var (
		sess    page.Session
		openErr error
	)
	defer func() {
		if sess != nil {
			if err := sess.Close(); err != nil {
				logger.Warn("closing page session", "error", err)
			}
		}
	}()

	for loc := range jobs {
		if sess == nil && openErr == nil {
			sess, openErr = r.Open(ctx)
			if openErr != nil {
				logger.Error("opening page session", "error", openErr)
			}
		}
		if openErr != nil {
			res := Result{Location: loc, Fetched: r.now(), Err: fmt.Errorf("open page session: %w", openErr)}
			metrics.ObserveLocation(Outcome(res.Err), 0)
			record(res)
			continue
		}
		record(r.fetch(ctx, sess, loc, logger))
	}
}

// fetch processes one location and never panics on bad input; all failures
// land in the result.
func (r *Runner) fetch(ctx context.Context, drv page.Driver, loc locations.Location, logger *slog.Logger) Result {
	start := time.Now()
	today := r.now()
	res := Result{Location: loc, Fetched: today}
	logger = logger.With("location", loc.Key())

	switch loc := loc.(type) {
	case locations.URL:
		if err := drv.Navigate(ctx, loc.URL); err != nil {
			res.Err = err
		}
	case locations.Search:
		elem, state, err := r.engine().Resolve(ctx, loc, drv)
		res.Search = &state
		if err == nil {
			err = elem.Click(ctx)
		}
		res.Err = err
	default:
		res.Err = fmt.Errorf("location type %T: %w", loc, ErrLayout)
	}

	if res.Err == nil {
		res.Rows, res.Err = r.readWeek(ctx, drv, today, logger)
	}
	if res.Err == nil {
		for _, row := range res.Rows {
			res.HighTides = append(res.HighTides, row.HighTides()...)
		}
	}

	elapsed := time.Since(start)
	metrics.ObserveLocation(Outcome(res.Err), elapsed)
	if res.Err != nil {
		logger.Error("location failed", "error", res.Err, "elapsed", elapsed)
		return res
	}
	logger.Info("location fetched", "high_tides", len(res.HighTides), "elapsed", elapsed)

	if r.Store != nil {
		if err := r.Store.Save(ctx, res); err != nil {
			logger.Warn("saving result", "error", err)
		}
	}
	return res
}

// readWeek parses the weekly table of the current page.
func (r *Runner) readWeek(ctx context.Context, drv page.Driver, today time.Time, logger *slog.Logger) ([]tideschart.Row, error) {
	if _, err := drv.WaitFor(ctx, tideschart.WeeklyRows, r.longWait()); err != nil {
		return nil, fmt.Errorf("%w: weekly table: %w", ErrLayout, err)
	}
	elems, err := drv.FindAll(ctx, tideschart.WeeklyRows)
	if err != nil {
		return nil, fmt.Errorf("%w: weekly table: %w", ErrLayout, err)
	}
	if len(elems) != tideschart.DaysPerTable {
		return nil, fmt.Errorf("%w: weekly table has %d rows, want %d", ErrLayout, len(elems), tideschart.DaysPerTable)
	}

	rows := make([]tideschart.Row, 0, len(elems))
	for _, elem := range elems {
		row, err := tideschart.ParseDay(elem.Text(), today)
		if err != nil {
			return nil, err
		}
		if !row.WeekdayMatches() {
			logger.Warn("weekday does not match resolved date", "weekday", row.Weekday, "date", row.Date.Format(time.DateOnly))
		}
		if !timetricks.WithinWeekOf(row.Date, today) {
			logger.Warn("row is outside the coming week", "date", row.Date.Format(time.DateOnly))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Outcome classifies err for metrics and reports.
func Outcome(err error) string {
	var navErr *page.NavigationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tideschart.ErrParse):
		return "parse"
	case errors.Is(err, ErrLayout):
		return "layout"
	case errors.Is(err, search.ErrRetryBudgetExceeded):
		return "search"
	case errors.As(err, &navErr):
		return "navigation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, page.ErrTimeout):
		return "timeout"
	default:
		return "other"
	}
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return 1
	}
	return r.Workers
}

func (r *Runner) engine() *search.Engine {
	if r.Search == nil {
		return &search.Engine{Logger: r.Logger}
	}
	return r.Search
}

func (r *Runner) longWait() time.Duration {
	if r.LongWait <= 0 {
		return search.DefaultLongWait
	}
	return r.LongWait
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
