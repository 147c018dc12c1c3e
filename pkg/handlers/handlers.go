package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/spencer-p/hightides/pkg/cache"
	"github.com/spencer-p/hightides/pkg/data"
	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/report"
	"github.com/spencer-p/hightides/pkg/tides"
	"github.com/spencer-p/hightides/pkg/timetricks"
)

const (
	// cache for slightly less than one day so daily clients don't see stale
	// data
	defaultTTL = 23 * time.Hour
	// runs with failed locations are retried sooner
	partialTTL = 15 * time.Minute

	resultsKey = "results"
)

// Runner fetches a set of locations.
type Runner interface {
	Run(ctx context.Context, set locations.Set) (tides.Results, error)
}

// Archive looks up high tides stored by earlier runs.
type Archive interface {
	HighTides(ctx context.Context, location string, from, to time.Time) ([]data.Tide, error)
}

// HighTides serves the high tides of a fixed set of locations. Runs are
// cached and concurrent misses share one run. Locations that failed are
// answered from the archive, if there is one.
type HighTides struct {
	runner  Runner
	set     locations.Set
	archive Archive
	logger  *slog.Logger
	now     func() time.Time

	cache      *cache.Timed[tides.Results]
	partialTTL time.Duration
	group      singleflight.Group
}

// NewHighTides serves set. The archive may be nil.
func NewHighTides(runner Runner, set locations.Set, archive Archive, ttl time.Duration, logger *slog.Logger) *HighTides {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HighTides{
		runner:     runner,
		set:        set,
		archive:    archive,
		logger:     logger,
		now:        time.Now,
		cache:      cache.NewTimed[tides.Results](ttl),
		partialTTL: partialTTL,
	}
}

func Register(r *mux.Router, h *HighTides) {
	r.HandleFunc("/", h.serveIndex)
	r.HandleFunc("/api/v1/hightides", h.serveHighTides)
	r.Handle("/metrics", promhttp.Handler())
}

func (h *HighTides) results(ctx context.Context) (tides.Results, error) {
	if cached, ok := h.cache.Get(resultsKey); ok {
		return cached, nil
	}
	v, err, _ := h.group.Do(resultsKey, func() (any, error) {
		h.logger.Info("no cached results, running")
		// One client going away must not cancel a run others wait on.
		results, err := h.runner.Run(context.WithoutCancel(ctx), h.set)
		if err != nil {
			return nil, err
		}
		if failed := results.Failed(); len(failed) > 0 {
			h.logger.Info("caching partial results", "failed", len(failed), "ttl", h.partialTTL)
			h.cache.SetTTL(resultsKey, results, h.partialTTL)
		} else {
			h.cache.Set(resultsKey, results)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(tides.Results), nil
}

func (h *HighTides) serveHighTides(w http.ResponseWriter, r *http.Request) {
	results, err := h.results(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Failed to get data: %+v", err)
		h.logger.Error("failed to get data", "error", err)
		return
	}

	entries := report.Entries(h.set.Keys(), results)
	h.fillArchived(r.Context(), entries)
	if r.FormValue("o") == "json" {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			h.logger.Warn("failed to encode JSON result", "error", err)
		}
		return
	}
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if err := report.WriteEntries(w, entries); err != nil {
		h.logger.Warn("failed to write result", "error", err)
	}
}

// fillArchived gives failed entries the stored high tides of the coming week.
func (h *HighTides) fillArchived(ctx context.Context, entries []report.Entry) {
	if h.archive == nil {
		return
	}
	from := timetricks.TrimClock(h.now())
	to := from.AddDate(0, 0, 7)
	for i := range entries {
		e := &entries[i]
		if e.Error == "" {
			continue
		}
		stored, err := h.archive.HighTides(ctx, e.Location, from, to)
		if err != nil {
			h.logger.Warn("reading archive", "location", e.Location, "error", err)
			continue
		}
		for _, t := range stored {
			e.Archived = append(e.Archived, t.Time)
		}
	}
}

func (h *HighTides) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain")
	fmt.Fprintf(w, "hightides: %d locations by %s\n", len(h.set.Locations), h.set.Mode)
	for _, k := range h.set.Keys() {
		fmt.Fprintf(w, "  %s\n", k)
	}
}
