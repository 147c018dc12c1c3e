package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "hightides",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0, 64.0, 128.0},
		},
		[]string{"verb", "path", "code"},
	)

	searchAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "search_attempts_total",
		Subsystem: "hightides",
		Help:      "Searches submitted to the tide site.",
	})
	searchTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "search_timeouts_total",
		Subsystem: "hightides",
		Help:      "Searches whose hinted result never appeared.",
	})
	searchThrottles = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "search_throttles_total",
		Subsystem: "hightides",
		Help:      "Searches refused with the site's throttling banner.",
	})

	locationResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "location_results_total",
			Subsystem: "hightides",
			Help:      "Locations processed, by outcome.",
		},
		[]string{"outcome"},
	)
	locationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "location_seconds",
		Subsystem: "hightides",
		Help:      "Time spent fetching one location, retries included.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		searchAttempts,
		searchTimeouts,
		searchThrottles,
		locationResults,
		locationLatency,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

func ObserveSearchAttempt()  { searchAttempts.Inc() }
func ObserveSearchTimeout()  { searchTimeouts.Inc() }
func ObserveSearchThrottle() { searchThrottles.Inc() }

// ObserveLocation records one processed location. outcome is "ok" or an
// error class such as "parse" or "layout".
func ObserveLocation(outcome string, elapsed time.Duration) {
	locationResults.With(prometheus.Labels{"outcome": outcome}).Inc()
	locationLatency.Observe(elapsed.Seconds())
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
