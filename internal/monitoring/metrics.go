package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxbot_backtests_total",
			Help: "Total number of backtest runs executed",
		},
		[]string{"mode"},
	)

	tradesSimulated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxbot_trades_simulated_total",
			Help: "Total number of simulated trades across all runs",
		},
	)

	comboDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fxbot_optimizer_combo_duration_seconds",
			Help:    "Time spent evaluating one grid-search combination",
			Buckets: prometheus.DefBuckets,
		},
	)

	combosEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxbot_optimizer_combos_total",
			Help: "Total number of grid-search combinations evaluated",
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxbot_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(tradesSimulated)
	prometheus.MustRegister(comboDuration)
	prometheus.MustRegister(combosEvaluated)
	prometheus.MustRegister(errorsTotal)
}

// RecordBacktest counts one completed engine run for the given mode
// (backtest, optimize, walkforward, paper) along with its trade count.
func RecordBacktest(mode string, trades int) {
	backtestsTotal.WithLabelValues(mode).Inc()
	tradesSimulated.Add(float64(trades))
}

// RecordComboEvaluated counts one evaluated grid combination.
func RecordComboEvaluated(d time.Duration) {
	combosEvaluated.Inc()
	comboDuration.Observe(d.Seconds())
}

// RecordError counts an error by type.
func RecordError(errType string) {
	errorsTotal.WithLabelValues(errType).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr in the background. Intended for long-lived
// sessions like paper replay; errors are delivered on the returned channel.
func Serve(addr string) <-chan error {
	errc := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		errc <- http.ListenAndServe(addr, mux)
	}()
	return errc
}
