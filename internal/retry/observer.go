package retry

import (
	"time"

	"github.com/rs/zerolog"
)

// AttemptRecord captures one failed attempt for observers. Delay is zero on
// the final attempt, when no retry follows.
type AttemptRecord struct {
	Operation string
	Attempt   int
	Elapsed   time.Duration
	Err       error
	Category  Category
	Delay     time.Duration
}

// Observer receives attempt-boundary events. Implementations must not block;
// the executor calls them synchronously between attempts. Observers are
// purely observational and never affect control flow.
type Observer interface {
	// OnAttempt is called after every failed attempt, terminal or not.
	OnAttempt(rec AttemptRecord)
	// OnSuccess is called when the operation succeeds after at least one retry.
	OnSuccess(op OperationContext, attempt int, elapsed time.Duration)
	// OnExhausted is called when the attempt budget runs out on retryable failures.
	OnExhausted(op OperationContext, attempts int, elapsed time.Duration, err error)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnAttempt(AttemptRecord)                                 {}
func (NopObserver) OnSuccess(OperationContext, int, time.Duration)          {}
func (NopObserver) OnExhausted(OperationContext, int, time.Duration, error) {}

// Observers fans events out to multiple observers in order.
type Observers []Observer

func (os Observers) OnAttempt(rec AttemptRecord) {
	for _, o := range os {
		o.OnAttempt(rec)
	}
}

func (os Observers) OnSuccess(op OperationContext, attempt int, elapsed time.Duration) {
	for _, o := range os {
		o.OnSuccess(op, attempt, elapsed)
	}
}

func (os Observers) OnExhausted(op OperationContext, attempts int, elapsed time.Duration, err error) {
	for _, o := range os {
		o.OnExhausted(op, attempts, elapsed, err)
	}
}

// LogObserver emits structured zerolog events at attempt boundaries. The
// executor only invokes it when the effective policy enables logging.
type LogObserver struct {
	Log zerolog.Logger
}

func (l LogObserver) OnAttempt(rec AttemptRecord) {
	evt := l.Log.Warn().
		Str("operation", rec.Operation).
		Int("attempt", rec.Attempt).
		Str("category", string(rec.Category)).
		Float64("elapsed_s", rec.Elapsed.Seconds()).
		Err(rec.Err)
	if rec.Delay > 0 {
		evt.Dur("retry_in", rec.Delay).Msg("Attempt failed, retrying")
		return
	}
	evt.Msg("Final attempt failed")
}

func (l LogObserver) OnSuccess(op OperationContext, attempt int, elapsed time.Duration) {
	l.Log.Info().
		Str("operation", op.Name).
		Int("attempt", attempt).
		Float64("elapsed_s", elapsed.Seconds()).
		Msg("Operation recovered after retry")
}

func (l LogObserver) OnExhausted(op OperationContext, attempts int, elapsed time.Duration, err error) {
	l.Log.Error().
		Str("operation", op.Name).
		Int("attempts", attempts).
		Float64("elapsed_s", elapsed.Seconds()).
		Err(err).
		Msg("All retry attempts exhausted")
}
