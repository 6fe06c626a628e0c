// Package logging layers credential redaction over the base logger. API keys
// and bot tokens travel through config, provider errors, and alert text; every
// string that reaches a log line passes through the sanitizer first.
package logging

import (
	"github.com/rs/zerolog"

	internalerrors "github.com/olegiv/contentgen-ai-go/internal/errors"
	"github.com/olegiv/contentgen-ai-go/pkg/logger"
)

// SecureLogger wraps a logger.Logger so that string fields, messages, and
// error values are sanitized before emission.
type SecureLogger struct {
	log *logger.Logger
}

// NewSecure wraps the given logger with credential sanitization.
func NewSecure(log *logger.Logger) *SecureLogger {
	return &SecureLogger{log: log}
}

// SecureEvent is a zerolog event whose string-carrying methods redact
// credentials.
type SecureEvent struct {
	event *zerolog.Event
}

// Info starts a sanitized info-level event.
func (s *SecureLogger) Info() *SecureEvent {
	return &SecureEvent{event: s.log.Info()}
}

// Debug starts a sanitized debug-level event.
func (s *SecureLogger) Debug() *SecureEvent {
	return &SecureEvent{event: s.log.Debug()}
}

// Warn starts a sanitized warn-level event.
func (s *SecureLogger) Warn() *SecureEvent {
	return &SecureEvent{event: s.log.Warn()}
}

// Error starts a sanitized error-level event.
func (s *SecureLogger) Error() *SecureEvent {
	return &SecureEvent{event: s.log.Error()}
}

// Close closes the underlying logger.
func (s *SecureLogger) Close() error {
	return s.log.Close()
}

// Str adds a string field with credentials redacted.
func (e *SecureEvent) Str(key, val string) *SecureEvent {
	e.event.Str(key, internalerrors.SanitizeString(val))
	return e
}

// Int adds an integer field.
func (e *SecureEvent) Int(key string, val int) *SecureEvent {
	e.event.Int(key, val)
	return e
}

// Int64 adds an int64 field.
func (e *SecureEvent) Int64(key string, val int64) *SecureEvent {
	e.event.Int64(key, val)
	return e
}

// Float64 adds a float64 field.
func (e *SecureEvent) Float64(key string, val float64) *SecureEvent {
	e.event.Float64(key, val)
	return e
}

// Bool adds a boolean field.
func (e *SecureEvent) Bool(key string, val bool) *SecureEvent {
	e.event.Bool(key, val)
	return e
}

// Err adds an error field with credentials in the message redacted.
func (e *SecureEvent) Err(err error) *SecureEvent {
	if err != nil {
		e.event.Err(internalerrors.SanitizeError(err))
	}
	return e
}

// Msg sends the event with a sanitized message.
func (e *SecureEvent) Msg(msg string) {
	e.event.Msg(internalerrors.SanitizeString(msg))
}

// Msgf sends a formatted event. String and error arguments are sanitized;
// other argument types pass through unchanged.
func (e *SecureEvent) Msgf(format string, v ...interface{}) {
	args := make([]interface{}, len(v))
	for i, arg := range v {
		switch a := arg.(type) {
		case string:
			args[i] = internalerrors.SanitizeString(a)
		case error:
			args[i] = internalerrors.SanitizeError(a)
		default:
			args[i] = arg
		}
	}
	e.event.Msgf(format, args...)
}

// Interface adds an arbitrary field. Plain string values are sanitized;
// structured values are logged as-is, so prefer Str for anything that may
// carry a credential.
func (e *SecureEvent) Interface(key string, val interface{}) *SecureEvent {
	if s, ok := val.(string); ok {
		e.event.Str(key, internalerrors.SanitizeString(s))
	} else {
		e.event.Interface(key, val)
	}
	return e
}
