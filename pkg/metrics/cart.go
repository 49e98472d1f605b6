package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records calls against the commerce platform.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_call_duration_seconds",
		Help:    "Duration of commerce platform calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_call_success",
		Help: "Successful commerce platform calls.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_call_failure",
		Help: "Failed commerce platform calls.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, success, failure)
	return &GatewayMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named operation.
func (g *GatewayMetrics) ObserveDuration(operation string, duration time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	g.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (g *GatewayMetrics) IncSuccess(operation string) {
	if g == nil || g.success == nil {
		return
	}
	g.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (g *GatewayMetrics) IncFailure(operation, code string) {
	if g == nil || g.failure == nil {
		return
	}
	g.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// StoreMetrics records cart store activity.
type StoreMetrics struct {
	mutations  *prometheus.CounterVec
	coalesced  prometheus.Counter
	recoveries prometheus.Counter
}

// NewStoreMetrics registers the cart store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and result.",
	}, []string{"operation", "result"})
	coalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_mutations_coalesced_total",
		Help: "Quantity updates absorbed into an already pending dispatch.",
	})
	recoveries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stale_recoveries_total",
		Help: "Silent recoveries from a stale persisted cart id.",
	})
	reg.MustRegister(mutations, coalesced, recoveries)
	return &StoreMetrics{
		mutations:  mutations,
		coalesced:  coalesced,
		recoveries: recoveries,
	}
}

// IncMutation counts a settled cart mutation.
func (s *StoreMetrics) IncMutation(operation, result string) {
	if s == nil || s.mutations == nil {
		return
	}
	s.mutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncCoalesced counts a quantity update merged into a pending dispatch.
func (s *StoreMetrics) IncCoalesced() {
	if s == nil || s.coalesced == nil {
		return
	}
	s.coalesced.Inc()
}

// IncRecovery counts a transparent stale-cart recovery.
func (s *StoreMetrics) IncRecovery() {
	if s == nil || s.recoveries == nil {
		return
	}
	s.recoveries.Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
