package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successful requests.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels requests rejected at validation.
	OutcomeInvalid = "invalid"
	// OutcomeError labels requests that failed inside the engine or a dependency.
	OutcomeError = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_twin",
			Name:      "requests_total",
			Help:      "Total number of engine requests handled, partitioned by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirador_twin",
			Name:      "request_seconds",
			Help:      "Engine request latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"method"},
	)

	diagnosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_twin",
			Name:      "diagnoses_total",
			Help:      "DGA diagnoses partitioned by fault type and severity.",
		},
		[]string{"fault_type", "severity"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_twin",
			Name:      "cache_lookups_total",
			Help:      "Simulation cache lookups partitioned by result.",
		},
		[]string{"result"},
	)
)

// Register attaches mirador-twin collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		requestDurationSeconds,
		diagnosesTotal,
		cacheLookupsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records a request duration and outcome label for method.
func ObserveRequest(method string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError && label != OutcomeInvalid {
		label = OutcomeSuccess
	}
	requestsTotal.WithLabelValues(method, label).Inc()
	if duration < 0 {
		duration = 0
	}
	requestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveDiagnosis counts one diagnosis verdict.
func ObserveDiagnosis(faultType, severity string) {
	diagnosesTotal.WithLabelValues(faultType, severity).Inc()
}

// ObserveCacheLookup counts a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}
