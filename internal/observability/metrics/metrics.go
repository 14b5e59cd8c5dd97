package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                     sync.Once
	metricsRouter            *chi.Mux
	currencyClientLatency    *prometheus.HistogramVec
	shareLedgerClientLatency *prometheus.HistogramVec
	queueSendErrorCounter    prometheus.Counter
	pollerDurationHistogram  *prometheus.HistogramVec
	vaultOperationDuration   *prometheus.HistogramVec
	staleSubjectsGauge       prometheus.Gauge
	pendingOperationsGauge   prometheus.Gauge
	totalAssetsGauge         prometheus.Gauge
	totalSharesGauge         prometheus.Gauge
	accumulatedFeesGauge     prometheus.Gauge
	dbLatency                *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	currencyClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "currency_client_latency_seconds",
			Help:    "Histogram of currency ledger client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	shareLedgerClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "share_ledger_client_latency_seconds",
			Help:    "Histogram of share ledger client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	vaultOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_operation_duration_seconds",
			Help:    "Vault operation duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)

	staleSubjectsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stale_price_subjects_count",
			Help: "Number of oracle subjects whose price update is currently due",
		},
	)

	pendingOperationsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_async_operations_count",
			Help: "Number of initiated async operations awaiting completion",
		},
	)

	totalAssetsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_total_assets",
			Help: "Last value of the vault asset pool in base units",
		},
	)

	totalSharesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_total_shares",
			Help: "Last value of the vault share supply in base units",
		},
	)

	accumulatedFeesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_accumulated_fees",
			Help: "Fees accrued and not yet collected, in base units",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		currencyClientLatency,
		shareLedgerClientLatency,
		queueSendErrorCounter,
		pollerDurationHistogram,
		vaultOperationDuration,
		staleSubjectsGauge,
		pendingOperationsGauge,
		totalAssetsGauge,
		totalSharesGauge,
		accumulatedFeesGauge,
		dbLatency,
	)
}

func RecordCurrencyClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	currencyClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordShareLedgerClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	shareLedgerClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordPollerDuration(d time.Duration, pollerType string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	pollerDurationHistogram.WithLabelValues(pollerType, status.String()).Observe(d.Seconds())
}

func RecordVaultOperationDuration(d time.Duration, operation string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	vaultOperationDuration.WithLabelValues(operation, status.String()).Observe(d.Seconds())
}

func RecordStaleSubjectsCount(count int) {
	staleSubjectsGauge.Set(float64(count))
}

func RecordPendingOperationsCount(count int) {
	pendingOperationsGauge.Set(float64(count))
}

func RecordPoolTotals(totalAssets, totalShares, accumulatedFees float64) {
	totalAssetsGauge.Set(totalAssets)
	totalSharesGauge.Set(totalShares)
	accumulatedFeesGauge.Set(accumulatedFees)
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
