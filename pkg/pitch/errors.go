package pitch

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

func (e *PitchError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// PitchError represents a caller-visible failure of the phase search.
// None of these conditions are transient.
type PitchError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Fields  logging.Fields `json:"fields,omitempty"`
	Cause   error          `json:"-"`
}

func (e *PitchError) Unwrap() error {
	return e.Cause
}

// Is matches any PitchError carrying the same code, so callers can test
// errors.Is(err, pitch.ErrOutOfRange).
func (e *PitchError) Is(target error) bool {
	t, ok := target.(*PitchError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	ErrCodeInvalidRange  = "INVALID_RANGE"
	ErrCodeOutOfRange    = "OUT_OF_RANGE"
	ErrCodeEmptyInput    = "EMPTY_INPUT"
	ErrCodeDivideByZero  = "DIVIDE_BY_ZERO"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
)

// Sentinels for errors.Is
var (
	ErrInvalidRange  = &PitchError{Code: ErrCodeInvalidRange, Message: "invalid phase range"}
	ErrOutOfRange    = &PitchError{Code: ErrCodeOutOfRange, Message: "window exceeds buffer bounds"}
	ErrEmptyInput    = &PitchError{Code: ErrCodeEmptyInput, Message: "no offsets supplied"}
	ErrDivideByZero  = &PitchError{Code: ErrCodeDivideByZero, Message: "phase must be non-zero"}
	ErrInvalidConfig = &PitchError{Code: ErrCodeInvalidConfig, Message: "invalid pitch configuration"}
)

// NewPitchError creates a new pitch error
func NewPitchError(code, message string, cause error) *PitchError {
	return &PitchError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func newPitchErrorWithFields(code, message string, cause error, fields logging.Fields) *PitchError {
	return &PitchError{
		Code:    code,
		Message: message,
		Fields:  fields,
		Cause:   cause,
	}
}
