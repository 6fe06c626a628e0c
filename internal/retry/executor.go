package retry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Executor runs operations under a retry policy. The policy is guarded by a
// mutex for runtime inspection and replacement; everything else is fixed at
// construction, so a single Executor safely serves concurrent calls. Each
// invocation keeps its own attempt counter and timer.
type Executor struct {
	mu       sync.RWMutex
	policy   Policy
	observer Observer
	logObs   *LogObserver // only consulted when the effective policy enables logging
	randFunc func() float64
	sleep    func(context.Context, time.Duration) error
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithObserver installs the observer notified at attempt boundaries.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithLogger attaches a structured logger for attempt-boundary events. The
// logger is silenced when the effective policy disables logging, so control
// logic can be tested without capturing output.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Executor) { e.logObs = &LogObserver{Log: log} }
}

// WithRand replaces the jitter randomness source. The function must return
// values in [0.0, 1.0).
func WithRand(f func() float64) Option {
	return func(e *Executor) { e.randFunc = f }
}

// WithSleep replaces the inter-attempt wait. Tests use this to observe
// computed delays without actually waiting.
func WithSleep(f func(context.Context, time.Duration) error) Option {
	return func(e *Executor) { e.sleep = f }
}

// NewExecutor creates an executor with the given base policy. An invalid
// policy is replaced with the default.
func NewExecutor(policy Policy, opts ...Option) *Executor {
	if policy.Validate() != nil {
		policy = DefaultPolicy()
	}

	e := &Executor{
		policy:   policy,
		observer: NopObserver{},
		randFunc: rand.Float64,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the current base policy.
func (e *Executor) Config() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// SetConfig merges the override into the base policy, replacing it for all
// subsequent calls. In-flight calls keep the policy they started with.
func (e *Executor) SetConfig(o *Override) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	merged := e.policy.Merge(o)
	if err := merged.Validate(); err != nil {
		return err
	}
	e.policy = merged
	return nil
}

// jitter scales a computed delay by a uniform factor in [0.5, 1.0] when the
// policy enables it. The result never exceeds the computed ceiling.
func (e *Executor) jitter(p Policy, delay time.Duration) time.Duration {
	if !p.Jitter || delay <= 0 {
		return delay
	}
	factor := 0.5 + e.randFunc()*0.5
	return time.Duration(float64(delay) * factor)
}

func (e *Executor) notifyAttempt(p Policy, rec AttemptRecord) {
	e.observer.OnAttempt(rec)
	if p.Logging && e.logObs != nil {
		e.logObs.OnAttempt(rec)
	}
}

func (e *Executor) notifySuccess(p Policy, op OperationContext, attempt int, elapsed time.Duration) {
	e.observer.OnSuccess(op, attempt, elapsed)
	if p.Logging && e.logObs != nil {
		e.logObs.OnSuccess(op, attempt, elapsed)
	}
}

func (e *Executor) notifyExhausted(p Policy, op OperationContext, attempts int, elapsed time.Duration, err error) {
	e.observer.OnExhausted(op, attempts, elapsed, err)
	if p.Logging && e.logObs != nil {
		e.logObs.OnExhausted(op, attempts, elapsed, err)
	}
}

// sleepContext waits for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op under the executor's base policy. See DoWithOverride.
func Do[T any](ctx context.Context, e *Executor, op OperationContext, fn func(context.Context) (T, error)) (T, error) {
	return DoWithOverride(ctx, e, op, nil, fn)
}

// DoWithOverride invokes fn up to the attempt budget of the merged policy.
// Success returns immediately. Terminal failures (auth, validation, generic
// non-retryable) raise an *EnrichedError without consuming further attempts.
// Retryable failures wait min(MaxDelay, BaseDelay*ExponentialBase^(n-1)*mult)
// (jittered) and loop; when the budget runs out an *ExhaustedError escapes.
// A context cancellation, during fn or during a wait, is terminal.
func DoWithOverride[T any](ctx context.Context, e *Executor, op OperationContext, override *Override, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	policy := e.Config().Merge(override)
	if err := policy.Validate(); err != nil {
		return zero, newEnriched(op, CategoryNonRetryable, err)
	}

	start := time.Now()
	var lastErr error
	var lastCat Category

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				e.notifySuccess(policy, op, attempt, time.Since(start))
			}
			return result, nil
		}

		// Cancellation is not a provider failure; never classify or retry it.
		if ctx.Err() != nil {
			return zero, newEnriched(op, CategoryNonRetryable, ctx.Err())
		}

		desc := Describe(err)
		lastErr = err
		lastCat = desc.Category

		if !desc.Retryable {
			rec := AttemptRecord{
				Operation: op.Name,
				Attempt:   attempt,
				Elapsed:   time.Since(start),
				Err:       err,
				Category:  desc.Category,
			}
			e.notifyAttempt(policy, rec)
			return zero, newEnriched(op, desc.Category, err)
		}

		rec := AttemptRecord{
			Operation: op.Name,
			Attempt:   attempt,
			Elapsed:   time.Since(start),
			Err:       err,
			Category:  desc.Category,
		}

		if attempt < policy.MaxAttempts {
			rec.Delay = e.jitter(policy, policy.Delay(attempt, desc.Multiplier))
			e.notifyAttempt(policy, rec)
			if err := e.sleep(ctx, rec.Delay); err != nil {
				return zero, newEnriched(op, CategoryNonRetryable, err)
			}
			continue
		}

		// Last attempt: record the failure, exit the loop to the exhaustion path.
		e.notifyAttempt(policy, rec)
	}

	elapsed := time.Since(start)
	e.notifyExhausted(policy, op, policy.MaxAttempts, elapsed, lastErr)
	return zero, &ExhaustedError{
		Op:       op,
		Attempts: policy.MaxAttempts,
		Elapsed:  elapsed,
		Category: lastCat,
		Err:      lastErr,
	}
}
