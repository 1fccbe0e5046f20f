package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the garden collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "garden",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ledgerCredits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "ledger",
			Name:      "credits_total",
			Help:      "Ledger award outcomes by source.",
		},
		[]string{"source", "outcome"},
	)

	ledgerNCTR = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "ledger",
			Name:      "nctr_credited_total",
			Help:      "NCTR credited by source.",
		},
		[]string{"source"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Webhook deliveries by provider and result.",
		},
		[]string{"provider", "result"},
	)

	lockEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "locks",
			Name:      "events_total",
			Help:      "Lock commits, upgrades and releases.",
		},
		[]string{"action"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "garden",
			Subsystem: "jobs",
			Name:      "run_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"job"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		ledgerCredits,
		ledgerNCTR,
		webhookEvents,
		lockEvents,
		jobRuns,
		jobDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func RecordCredit(source, outcome string, amount float64) {
	ledgerCredits.WithLabelValues(source, outcome).Inc()
	if amount > 0 {
		ledgerNCTR.WithLabelValues(source).Add(amount)
	}
}

func RecordWebhook(provider, result string) {
	webhookEvents.WithLabelValues(provider, result).Inc()
}

func RecordLock(action string, n int) {
	if n <= 0 {
		return
	}
	lockEvents.WithLabelValues(action).Add(float64(n))
}

func RecordJob(job string, success bool, d time.Duration) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
