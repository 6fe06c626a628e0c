// Package metrics exposes Prometheus instrumentation for the retry pipeline
// and provider calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/olegiv/contentgen-ai-go/internal/retry"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentgen_retry_attempts_total",
		Help: "Failed attempts observed by the retry executor, by operation and error category",
	}, []string{"operation", "category"})

	successTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentgen_operations_success_total",
		Help: "Operations that eventually succeeded, by operation",
	}, []string{"operation"})

	exhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentgen_retry_exhausted_total",
		Help: "Operations that failed after exhausting all retry attempts, by operation",
	}, []string{"operation"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contentgen_operation_duration_seconds",
		Help:    "End to end operation duration including retries and backoff",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"operation", "outcome"})

	providerTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentgen_provider_tokens_total",
		Help: "Tokens consumed by provider calls, by provider and direction",
	}, []string{"provider", "direction"})

	providerCostUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentgen_provider_cost_usd_total",
		Help: "Estimated provider spend in US dollars",
	}, []string{"provider"})
)

// Recorder feeds retry executor callbacks into Prometheus. It implements
// retry.Observer and can be combined with other observers via retry.Observers.
type Recorder struct{}

// NewRecorder returns a Recorder. Metric registration happens at package
// init, so multiple Recorders share the same series.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OnAttempt(rec retry.AttemptRecord) {
	attemptsTotal.WithLabelValues(rec.Operation, string(rec.Category)).Inc()
}

func (r *Recorder) OnSuccess(op retry.OperationContext, attempt int, elapsed time.Duration) {
	successTotal.WithLabelValues(op.Name).Inc()
	operationDuration.WithLabelValues(op.Name, "success").Observe(elapsed.Seconds())
}

func (r *Recorder) OnExhausted(op retry.OperationContext, attempts int, elapsed time.Duration, err error) {
	exhaustedTotal.WithLabelValues(op.Name).Inc()
	operationDuration.WithLabelValues(op.Name, "exhausted").Observe(elapsed.Seconds())
}

// RecordProviderUsage records token and cost counters from one provider call.
func RecordProviderUsage(provider string, inputTokens, outputTokens int, costUSD float64) {
	providerTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	providerTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	if costUSD > 0 {
		providerCostUSD.WithLabelValues(provider).Add(costUSD)
	}
}
