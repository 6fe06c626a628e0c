package retry

import (
	"fmt"
	"math"
	"time"
)

// Default policy values, used when no configuration is supplied.
const (
	defaultMaxAttempts     = 3
	defaultBaseDelay       = 1 * time.Second
	defaultMaxDelay        = 30 * time.Second
	defaultExponentialBase = 2.0
)

// Policy is the immutable retry configuration for an Executor. Overrides
// never mutate a policy in place; Merge produces a new value.
type Policy struct {
	MaxAttempts     int           // total attempts including the first (>= 1)
	BaseDelay       time.Duration // delay before the first retry, pre-multiplier
	MaxDelay        time.Duration // ceiling for any single computed delay
	ExponentialBase float64       // backoff growth factor (> 1)
	Jitter          bool          // scale delays by a uniform factor in [0.5, 1.0]
	Logging         bool          // emit structured log events at attempt boundaries
}

// DefaultPolicy returns the policy used when callers do not configure one.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     defaultMaxAttempts,
		BaseDelay:       defaultBaseDelay,
		MaxDelay:        defaultMaxDelay,
		ExponentialBase: defaultExponentialBase,
		Jitter:          true,
		Logging:         true,
	}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("base delay must not be negative, got %s", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max delay %s must not be below base delay %s", p.MaxDelay, p.BaseDelay)
	}
	if p.ExponentialBase <= 1 {
		return fmt.Errorf("exponential base must be greater than 1, got %g", p.ExponentialBase)
	}
	return nil
}

// Override carries per-call policy adjustments. Nil fields inherit from the
// base policy.
type Override struct {
	MaxAttempts     *int
	BaseDelay       *time.Duration
	MaxDelay        *time.Duration
	ExponentialBase *float64
	Jitter          *bool
	Logging         *bool
}

// Merge returns a new policy with override fields applied on top of p.
// A nil override returns p unchanged.
func (p Policy) Merge(o *Override) Policy {
	if o == nil {
		return p
	}
	merged := p
	if o.MaxAttempts != nil {
		merged.MaxAttempts = *o.MaxAttempts
	}
	if o.BaseDelay != nil {
		merged.BaseDelay = *o.BaseDelay
	}
	if o.MaxDelay != nil {
		merged.MaxDelay = *o.MaxDelay
	}
	if o.ExponentialBase != nil {
		merged.ExponentialBase = *o.ExponentialBase
	}
	if o.Jitter != nil {
		merged.Jitter = *o.Jitter
	}
	if o.Logging != nil {
		merged.Logging = *o.Logging
	}
	return merged
}

// Delay computes the pre-jitter backoff before the retry that follows the
// given attempt: min(MaxDelay, BaseDelay * ExponentialBase^(attempt-1) * multiplier).
func (p Policy) Delay(attempt int, multiplier float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	scaled := float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt-1)) * multiplier
	if scaled > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(scaled)
}
