package source

import "errors"

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// SourceError represents a failure to locate or decode samples
type SourceError struct {
	Type     SourceType `json:"type"`
	Location string     `json:"location"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Cause    error      `json:"-"`
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeUnsupported     = "UNSUPPORTED_SOURCE"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeReadFailed      = "READ_FAILED"
	ErrCodeInvalidLocation = "INVALID_LOCATION"
	ErrCodeWriteFailed     = "WRITE_FAILED"
)

// NewSourceError creates a new source error
func NewSourceError(sourceType SourceType, location, code, message string, cause error) *SourceError {
	return &SourceError{
		Type:     sourceType,
		Location: location,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// IsCode reports whether err is a SourceError with the given code
func IsCode(err error, code string) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Code == code
}
