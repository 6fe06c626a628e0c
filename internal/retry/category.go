// Package retry wraps outbound LLM provider calls with classification-aware
// retry logic: failures are assigned to a fixed set of categories, terminal
// categories fail fast, and transient categories are retried with exponential
// backoff, jitter and per-category delay multipliers.
package retry

import "strings"

// Category identifies the failure class assigned to an error.
type Category string

// The closed set of failure categories. Exactly one is assigned per error.
const (
	CategoryAuth         Category = "auth"
	CategoryValidation   Category = "validation"
	CategoryRateLimit    Category = "rate_limit"
	CategoryNetwork      Category = "network"
	CategoryTimeout      Category = "timeout"
	CategoryParsing      Category = "parsing"
	CategoryRetryable    Category = "retryable"
	CategoryNonRetryable Category = "non_retryable"
)

// patternGroup binds a category to the message substrings that select it.
type patternGroup struct {
	category Category
	patterns []string
}

// classificationOrder is evaluated top to bottom; the first group with a
// matching pattern wins. Auth is checked before validation so that messages
// containing both (e.g. "unauthorized: invalid format") classify as auth.
//
// Network-style messages ("connection refused", "dns lookup failed", ...)
// intentionally have no group here and fall through to the generic retryable
// default. CategoryNetwork keeps its own multiplier and suggestion so callers
// constructing errors by hand can still use it.
var classificationOrder = []patternGroup{
	{CategoryAuth, []string{
		"invalid api key",
		"unauthorized",
		"forbidden",
		"authentication failed",
		"access denied",
		"invalid token",
		"expired token",
	}},
	{CategoryValidation, []string{
		"validation",
		"exceeds",
		"invalid format",
		"schema",
		"required field",
		"malformed",
		"invalid input",
		"constraint violation",
	}},
	{CategoryRateLimit, []string{
		"rate limit",
		"too many requests",
		"quota exceeded",
		"throttled",
		"rate exceeded",
		"requests per",
		"limit reached",
	}},
	{CategoryTimeout, []string{
		"timeout",
		"timed out",
		"request timeout",
		"response timeout",
		"deadline exceeded",
	}},
	{CategoryParsing, []string{
		"json",
		"parse",
		"syntax error",
		"unexpected token",
		"malformed response",
		"invalid json",
	}},
}

// terminalCategories are failure classes where retrying cannot help:
// bad credentials and bad input never self-heal.
var terminalCategories = map[Category]bool{
	CategoryAuth:         true,
	CategoryValidation:   true,
	CategoryNonRetryable: true,
}

// delayMultipliers scales the computed backoff per category. Rate-limited
// calls need longer backoff to clear server-side windows; parsing failures
// are often deterministic truncation glitches that clear quickly.
var delayMultipliers = map[Category]float64{
	CategoryRateLimit: 3,
	CategoryNetwork:   1.5,
	CategoryTimeout:   2,
	CategoryParsing:   0.5,
}

// suggestions maps each category to a remediation hint surfaced in errors.
var suggestions = map[Category]string{
	CategoryAuth:         "Check your API key configuration",
	CategoryValidation:   "Review the request parameters and retry with valid input",
	CategoryRateLimit:    "Wait for the provider rate limit window to reset",
	CategoryNetwork:      "Check network connectivity and provider availability",
	CategoryTimeout:      "Increase the request timeout or reduce the requested output size",
	CategoryParsing:      "The model returned malformed output; retrying usually succeeds",
	CategoryRetryable:    "Transient provider failure; retrying usually succeeds",
	CategoryNonRetryable: "Inspect the underlying error before trying again",
}

// Classify assigns exactly one category to an error by case-insensitive
// substring matching against the ordered pattern groups. Unmatched errors
// default to the generic transient category.
func Classify(err error) Category {
	if err == nil {
		return CategoryRetryable
	}

	message := strings.ToLower(err.Error())
	for _, group := range classificationOrder {
		for _, pattern := range group.patterns {
			if strings.Contains(message, pattern) {
				return group.category
			}
		}
	}

	return CategoryRetryable
}

// IsTerminal reports whether retrying an error of the given category is
// pointless.
func IsTerminal(cat Category) bool {
	return terminalCategories[cat]
}

// Multiplier returns the backoff scaling factor for the given category.
func Multiplier(cat Category) float64 {
	if m, ok := delayMultipliers[cat]; ok {
		return m
	}
	return 1
}

// Suggestion returns the remediation hint for the given category.
func Suggestion(cat Category) string {
	return suggestions[cat]
}

// Description is the composed classification result for a single failure.
type Description struct {
	Category   Category
	Retryable  bool
	Multiplier float64
	Suggestion string
}

// Describe composes Classify, IsTerminal, Multiplier and Suggestion into
// the single entry point the executor consults after each failed attempt.
func Describe(err error) Description {
	cat := Classify(err)
	return Description{
		Category:   cat,
		Retryable:  !IsTerminal(cat),
		Multiplier: Multiplier(cat),
		Suggestion: Suggestion(cat),
	}
}
