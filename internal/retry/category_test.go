package retry

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{
			name: "nil error defaults to retryable",
			err:  nil,
			want: CategoryRetryable,
		},
		{
			name: "invalid api key",
			err:  errors.New("Invalid API key provided"),
			want: CategoryAuth,
		},
		{
			name: "unauthorized",
			err:  errors.New("401 Unauthorized"),
			want: CategoryAuth,
		},
		{
			name: "expired token",
			err:  errors.New("request rejected: expired token"),
			want: CategoryAuth,
		},
		{
			name: "schema violation",
			err:  errors.New("response does not match the expected schema"),
			want: CategoryValidation,
		},
		{
			name: "required field",
			err:  errors.New("required field 'topic' is missing"),
			want: CategoryValidation,
		},
		{
			name: "rate limit",
			err:  errors.New("rate limit exceeded for organization"),
			want: CategoryRateLimit,
		},
		{
			name: "too many requests",
			err:  errors.New("429 Too Many Requests"),
			want: CategoryRateLimit,
		},
		{
			name: "quota",
			err:  errors.New("monthly quota exceeded"),
			want: CategoryRateLimit,
		},
		{
			name: "timeout",
			err:  errors.New("request timeout after 120s"),
			want: CategoryTimeout,
		},
		{
			name: "deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			want: CategoryTimeout,
		},
		{
			name: "network timeout matches timeout group",
			err:  errors.New("network timeout"),
			want: CategoryTimeout,
		},
		{
			name: "json parsing",
			err:  errors.New("unexpected token at position 42"),
			want: CategoryParsing,
		},
		{
			name: "invalid json",
			err:  errors.New("invalid json in model response"),
			want: CategoryParsing,
		},
		{
			name: "plain network error falls through to retryable",
			err:  errors.New("connection refused"),
			want: CategoryRetryable,
		},
		{
			name: "unknown error defaults to retryable",
			err:  errors.New("something unexpected happened"),
			want: CategoryRetryable,
		},
		{
			name: "auth wins over validation",
			err:  errors.New("unauthorized: invalid format in credentials"),
			want: CategoryAuth,
		},
		{
			name: "validation wins over rate limit",
			err:  errors.New("validation failed: rate limit header missing"),
			want: CategoryValidation,
		},
		{
			name: "malformed response matches validation before parsing",
			err:  errors.New("malformed response from upstream"),
			want: CategoryValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	err := errors.New("rate limit exceeded")
	first := Classify(err)
	second := Classify(err)
	if first != second {
		t.Errorf("Classify() not idempotent: %v then %v", first, second)
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		cat  Category
		want bool
	}{
		{CategoryAuth, true},
		{CategoryValidation, true},
		{CategoryNonRetryable, true},
		{CategoryRateLimit, false},
		{CategoryNetwork, false},
		{CategoryTimeout, false},
		{CategoryParsing, false},
		{CategoryRetryable, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			if got := IsTerminal(tt.cat); got != tt.want {
				t.Errorf("IsTerminal(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		cat  Category
		want float64
	}{
		{CategoryRateLimit, 3},
		{CategoryNetwork, 1.5},
		{CategoryTimeout, 2},
		{CategoryParsing, 0.5},
		{CategoryAuth, 1},
		{CategoryValidation, 1},
		{CategoryRetryable, 1},
		{CategoryNonRetryable, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			if got := Multiplier(tt.cat); got != tt.want {
				t.Errorf("Multiplier(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	desc := Describe(errors.New("rate limit exceeded"))

	if desc.Category != CategoryRateLimit {
		t.Errorf("Category = %v, want %v", desc.Category, CategoryRateLimit)
	}
	if !desc.Retryable {
		t.Error("rate limit errors should be retryable")
	}
	if desc.Multiplier != 3 {
		t.Errorf("Multiplier = %v, want 3", desc.Multiplier)
	}
	if desc.Suggestion == "" {
		t.Error("expected a remediation suggestion")
	}
}

func TestDescribeTerminal(t *testing.T) {
	desc := Describe(errors.New("authentication failed"))

	if desc.Category != CategoryAuth {
		t.Errorf("Category = %v, want %v", desc.Category, CategoryAuth)
	}
	if desc.Retryable {
		t.Error("auth errors must not be retryable")
	}
	if desc.Suggestion != "Check your API key configuration" {
		t.Errorf("unexpected suggestion: %q", desc.Suggestion)
	}
}

func TestEverySuggestionPresent(t *testing.T) {
	cats := []Category{
		CategoryAuth, CategoryValidation, CategoryRateLimit, CategoryNetwork,
		CategoryTimeout, CategoryParsing, CategoryRetryable, CategoryNonRetryable,
	}
	for _, cat := range cats {
		if Suggestion(cat) == "" {
			t.Errorf("missing suggestion for category %v", cat)
		}
	}
}
