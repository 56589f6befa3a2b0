package enhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrNotConfigured       = errors.New("OpenAI API key not configured")
	ErrUpstream            = errors.New("AI service request failed")
	ErrEmptyResponse       = errors.New("AI service returned no content")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidConfig       = errors.New("invalid AI client configuration")
)

// StatusError is a non-2xx reply from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (%d): %s", ErrUpstream, e.Code, e.Body)
}

// Is makes errors.Is(err, ErrUpstream) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

// IsRetryable reports whether a failed call may succeed when repeated.
// Rate limiting, server errors and transport failures are retryable;
// configuration errors, client errors and cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrUnsupportedLanguage) || errors.Is(err, ErrInvalidConfig) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	return true
}
