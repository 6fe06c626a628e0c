package retry

import (
	"testing"
	"time"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		expectErr bool
	}{
		{
			name:      "default policy is valid",
			policy:    DefaultPolicy(),
			expectErr: false,
		},
		{
			name: "zero attempts",
			policy: Policy{
				MaxAttempts:     0,
				BaseDelay:       time.Second,
				MaxDelay:        time.Minute,
				ExponentialBase: 2,
			},
			expectErr: true,
		},
		{
			name: "exponential base of 1",
			policy: Policy{
				MaxAttempts:     3,
				BaseDelay:       time.Second,
				MaxDelay:        time.Minute,
				ExponentialBase: 1,
			},
			expectErr: true,
		},
		{
			name: "max delay below base delay",
			policy: Policy{
				MaxAttempts:     3,
				BaseDelay:       time.Minute,
				MaxDelay:        time.Second,
				ExponentialBase: 2,
			},
			expectErr: true,
		},
		{
			name: "negative base delay",
			policy: Policy{
				MaxAttempts:     3,
				BaseDelay:       -time.Second,
				MaxDelay:        time.Minute,
				ExponentialBase: 2,
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPolicyMerge(t *testing.T) {
	base := Policy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2,
		Jitter:          true,
		Logging:         true,
	}

	attempts := 5
	jitter := false
	merged := base.Merge(&Override{MaxAttempts: &attempts, Jitter: &jitter})

	if merged.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", merged.MaxAttempts)
	}
	if merged.Jitter {
		t.Error("Jitter should be overridden to false")
	}
	if merged.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want unchanged %v", merged.BaseDelay, time.Second)
	}
	if merged.Logging != true {
		t.Error("Logging should inherit from base")
	}

	// Base policy must be untouched.
	if base.MaxAttempts != 3 || !base.Jitter {
		t.Error("Merge mutated the base policy")
	}
}

func TestPolicyMergeNil(t *testing.T) {
	base := DefaultPolicy()
	if base.Merge(nil) != base {
		t.Error("Merge(nil) should return the base policy unchanged")
	}
}

func TestPolicyDelay(t *testing.T) {
	policy := Policy{
		MaxAttempts:     5,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2,
	}

	tests := []struct {
		name       string
		attempt    int
		multiplier float64
		want       time.Duration
	}{
		{"first retry", 1, 1, time.Second},
		{"second retry doubles", 2, 1, 2 * time.Second},
		{"third retry", 3, 1, 4 * time.Second},
		{"rate limit multiplier", 1, 3, 3 * time.Second},
		{"timeout multiplier compounds", 3, 2, 8 * time.Second},
		{"parsing multiplier shrinks", 1, 0.5, 500 * time.Millisecond},
		{"capped at max delay", 10, 1, 30 * time.Second},
		{"multiplier cannot exceed cap", 5, 3, 30 * time.Second},
		{"attempt below 1 clamps", 0, 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Delay(tt.attempt, tt.multiplier)
			if got != tt.want {
				t.Errorf("Delay(%d, %g) = %v, want %v", tt.attempt, tt.multiplier, got, tt.want)
			}
		})
	}
}

func TestPolicyDelayMonotonicUntilCap(t *testing.T) {
	policy := DefaultPolicy()

	prev := time.Duration(0)
	for attempt := 1; attempt <= 10; attempt++ {
		d := policy.Delay(attempt, 1)
		if d < prev {
			t.Errorf("delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		if d > policy.MaxDelay {
			t.Errorf("delay %v exceeds max %v at attempt %d", d, policy.MaxDelay, attempt)
		}
		prev = d
	}
}
