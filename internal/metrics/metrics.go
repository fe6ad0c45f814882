// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineRunsTotal          *prometheus.CounterVec
	pipelineStageSeconds       *prometheus.HistogramVec
	productsTotal              *prometheus.CounterVec
	summarizerCallsTotal       *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pipeline_runs_total",
				Help: "Total number of pipeline runs, labeled by outcome (ok or error kind).",
			},
			[]string{"outcome"},
		)

		pipelineStageSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_pipeline_stage_duration_seconds",
				Help:    "Histogram of pipeline stage durations, labeled by stage.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		)

		productsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_products_total",
				Help: "Total number of products processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		summarizerCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_summarizer_calls_total",
				Help: "Total number of summarizer calls, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObservePipelineRun counts a finished run. outcome is "ok" or an error kind.
func ObservePipelineRun(outcome string) {
	Init()
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, duration time.Duration) {
	Init()
	pipelineStageSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveProduct counts a processed product for the site of productURL.
func ObserveProduct(productURL, status string) {
	Init()
	productsTotal.WithLabelValues(SanitizeSite(productURL), status).Inc()
}

// ObserveSummarizerCall counts a summarizer call.
func ObserveSummarizerCall(status string) {
	Init()
	summarizerCallsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
