// Package metrics exposes Prometheus metrics for the HTTP API and the
// analytics engine, plus request logging middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tradejournal"

// Calculation kinds.
const (
	KindPerformance = "performance"
	KindScore       = "score"
	KindGrade       = "grade"
	KindRisk        = "risk"
	KindKelly       = "kelly"
	KindReport      = "report"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	traderScore         prometheus.Gauge
	setupGrades         *prometheus.CounterVec
	riskRuleStatus      *prometheus.GaugeVec
	alertsFired         *prometheus.CounterVec
	tradesStored        prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total number of analytics calculations",
		},
		[]string{"kind"},
	)
	r.calculationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Analytics calculation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"kind"},
	)
	r.traderScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trader_score",
			Help:      "Most recent composite trader score (0-100)",
		},
	)
	r.setupGrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "setup_grades_total",
			Help:      "Total number of graded setups by grade",
		},
		[]string{"grade"},
	)
	r.riskRuleStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_rule_status",
			Help:      "Risk rule status: 0 ok, 1 warning, 2 violated",
		},
		[]string{"rule"},
	)
	r.alertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Total number of risk alerts fired",
		},
		[]string{"rule", "status"},
	)
	r.tradesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trades_stored",
			Help:      "Number of trades in the journal store",
		},
	)

	reg.MustRegister(r.calculations)
	reg.MustRegister(r.calculationDuration)
	reg.MustRegister(r.traderScore)
	reg.MustRegister(r.setupGrades)
	reg.MustRegister(r.riskRuleStatus)
	reg.MustRegister(r.alertsFired)
	reg.MustRegister(r.tradesStored)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordCalculation records one analytics calculation of the given kind.
func (r *Registry) RecordCalculation(kind string, duration float64) {
	r.calculations.WithLabelValues(kind).Inc()
	r.calculationDuration.WithLabelValues(kind).Observe(duration)
}

// SetTraderScore sets the latest composite score.
func (r *Registry) SetTraderScore(score float64) {
	r.traderScore.Set(score)
}

// RecordGrade counts a graded setup.
func (r *Registry) RecordGrade(grade string) {
	r.setupGrades.WithLabelValues(grade).Inc()
}

// SetRiskRuleStatus sets a rule's status level.
func (r *Registry) SetRiskRuleStatus(rule string, level int) {
	r.riskRuleStatus.WithLabelValues(rule).Set(float64(level))
}

// RecordAlert counts a fired risk alert.
func (r *Registry) RecordAlert(rule, status string) {
	r.alertsFired.WithLabelValues(rule, status).Inc()
}

// SetTradesStored sets the journal size.
func (r *Registry) SetTradesStored(n int) {
	r.tradesStored.Set(float64(n))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
