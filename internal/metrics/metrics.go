package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bidmonitor/internal/models"
)

const namespace = "bid_monitor"

// Metrics holds the job's collectors on a private registry. A nil *Metrics
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	runs          *prometheus.CounterVec
	offers        *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	matches       prometheus.Counter
	updates       *prometheus.CounterVec
	historySaved  prometheus.Counter
	lastMatchRate prometheus.Gauge
	lastSuccess   prometheus.Gauge
	runDuration   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Monitor runs by final status.",
		}, []string{"status"}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_fetched_total",
			Help:      "Offers returned by the marketplace API.",
		}, []string{"category"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Category fetches that failed and were skipped.",
		}, []string{"category"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Offers matched to a known listing.",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "base_updates_total",
			Help:      "Base table point updates by result.",
		}, []string{"result"}),
		historySaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_rows_saved_total",
			Help:      "Rows written to the bid history table.",
		}),
		lastMatchRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_match_rate",
			Help:      "Matched records over reference items in the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that loaded the reference set.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a monitor run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	m.Registry.MustRegister(
		m.runs,
		m.offers,
		m.fetchErrors,
		m.matches,
		m.updates,
		m.historySaved,
		m.lastMatchRate,
		m.lastSuccess,
		m.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(category string, offers int, failed bool) {
	if m == nil {
		return
	}
	m.offers.WithLabelValues(category).Add(float64(offers))
	if failed {
		m.fetchErrors.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) ObserveMatches(n int) {
	if m == nil {
		return
	}
	m.matches.Add(float64(n))
}

func (m *Metrics) ObserveUpdates(ok, failed int) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues("ok").Add(float64(ok))
	m.updates.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ObserveHistorySaved(n int64) {
	if m == nil {
		return
	}
	m.historySaved.Add(float64(n))
}

// ObserveRun closes out a run. matchRate is only recorded for runs that had
// reference items to match against.
func (m *Metrics) ObserveRun(status string, started, finished time.Time, matchRate *float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(finished.Sub(started).Seconds())
	if matchRate != nil {
		m.lastMatchRate.Set(*matchRate)
	}
	if status != models.RunStatusFailed {
		m.lastSuccess.Set(float64(finished.Unix()))
	}
}
