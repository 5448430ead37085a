package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Recorder abstracts metrics recording so handlers and services never
// depend on Prometheus directly
type Recorder interface {
	// Authentication flow
	RecordLoginInitiated()
	RecordCallback(outcome string) // success, rejected, provider_error
	RecordLogout()
	RecordAccountProvisioned(role string) // admin, user
	RecordProviderCall(operation string, success bool)

	// Security
	RecordRateLimitExceeded(path string)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authentication flow
	LoginInitiatedTotal      prometheus.Counter
	CallbackTotal            *prometheus.CounterVec
	LogoutTotal              prometheus.Counter
	AccountsProvisionedTotal *prometheus.CounterVec
	ProviderCallTotal        *prometheus.CounterVec

	// Security
	RateLimitExceededTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		LoginInitiatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "twingo_login_initiated_total",
			Help: "Total number of login handshakes started",
		}),
		CallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "twingo_callback_total",
			Help: "Total number of provider callbacks by outcome",
		}, []string{"outcome"}),
		LogoutTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "twingo_logout_total",
			Help: "Total number of logouts",
		}),
		AccountsProvisionedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "twingo_accounts_provisioned_total",
			Help: "Total number of accounts created on first login, by role",
		}, []string{"role"}),
		ProviderCallTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "twingo_provider_call_total",
			Help: "Total number of Twitter API round trips by operation and result",
		}, []string{"operation", "result"}),
		RateLimitExceededTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "twingo_rate_limit_exceeded_total",
			Help: "Total number of rate limited requests by path",
		}, []string{"path"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "twingo_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twingo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "twingo_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) RecordLoginInitiated() {
	m.LoginInitiatedTotal.Inc()
}

func (m *Metrics) RecordCallback(outcome string) {
	m.CallbackTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLogout() {
	m.LogoutTotal.Inc()
}

func (m *Metrics) RecordAccountProvisioned(role string) {
	m.AccountsProvisionedTotal.WithLabelValues(role).Inc()
}

func (m *Metrics) RecordProviderCall(operation string, success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.ProviderCallTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) RecordRateLimitExceeded(path string) {
	m.RateLimitExceededTotal.WithLabelValues(path).Inc()
}
