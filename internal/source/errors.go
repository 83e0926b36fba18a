package source

import (
	"errors"
	"fmt"
)

// LoadError reports a record set that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

// Error code constants.
const (
	ErrCodeUnknownFormat = "UNKNOWN_FORMAT"
	ErrCodeRead          = "READ_FAILED"
	ErrCodeDecode        = "DECODE_FAILED"
	ErrCodeShape         = "BAD_SHAPE"
	ErrCodeQuery         = "QUERY_FAILED"
	ErrCodeFilter        = "BAD_FILTER"
)

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the LoadError code carried by err, or "".
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func newLoadError(code, path, message string, err error) *LoadError {
	return &LoadError{Code: code, Path: path, Message: message, Err: err}
}
