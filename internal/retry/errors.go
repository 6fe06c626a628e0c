package retry

import (
	"encoding/json"
	"fmt"
	"time"

	internalerrors "github.com/olegiv/contentgen-ai-go/internal/errors"
)

// OperationContext identifies the wrapped operation for diagnostics. Metadata
// is caller-supplied and used only for logging and error enrichment, never
// for control decisions.
type OperationContext struct {
	Name     string
	Metadata map[string]any
}

// serialize renders the metadata as JSON with credentials redacted. Returns
// an empty string when there is nothing useful to attach.
func (oc OperationContext) serialize() string {
	if len(oc.Metadata) == 0 {
		return ""
	}
	raw, err := json.Marshal(oc.Metadata)
	if err != nil {
		return ""
	}
	return internalerrors.SanitizeString(string(raw))
}

// EnrichedError wraps a terminal failure with its category, a remediation
// suggestion and the serialized operation context. It is raised immediately,
// without consuming the remaining attempt budget.
type EnrichedError struct {
	Op         OperationContext
	Category   Category
	Suggestion string
	Context    string
	Err        error
}

func (e *EnrichedError) Error() string {
	msg := fmt.Sprintf("%s failed (%s): %v. %s", e.Op.Name, e.Category, e.Err, e.Suggestion)
	if e.Context != "" {
		msg += " [context: " + e.Context + "]"
	}
	return msg
}

func (e *EnrichedError) Unwrap() error {
	return e.Err
}

// ExhaustedError is raised when every permitted attempt failed with a
// retryable error. It summarizes the whole run; intermediate failures are
// only observable through logging and observers.
type ExhaustedError struct {
	Op       OperationContext
	Attempts int
	Elapsed  time.Duration
	Category Category
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts in %s (%s): %v",
		e.Op.Name, e.Attempts, e.Elapsed.Round(time.Millisecond), e.Category, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func newEnriched(op OperationContext, cat Category, err error) *EnrichedError {
	return &EnrichedError{
		Op:         op,
		Category:   cat,
		Suggestion: Suggestion(cat),
		Context:    op.serialize(),
		Err:        internalerrors.SanitizeError(err),
	}
}
