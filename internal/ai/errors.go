package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ExternalServiceError wraps a failed embedding or judgment call.
type ExternalServiceError struct {
	Provider   string
	Op         string
	StatusCode int
	// Retryable reports whether repeating the same call may succeed.
	Retryable bool
	// RetryAfter is the delay suggested by the service, if any.
	RetryAfter time.Duration
	Err        error
}

func (e *ExternalServiceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Provider, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a retryable ExternalServiceError.
func IsRetryable(err error) bool {
	var ext *ExternalServiceError
	return errors.As(err, &ext) && ext.Retryable
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// NewStatusError classifies a failure by its HTTP status code and message.
func NewStatusError(provider, op string, code int, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{
		Provider:   provider,
		Op:         op,
		StatusCode: code,
		Retryable:  RetryableStatus(code),
		RetryAfter: RetryAfterFromMessage(message),
		Err:        err,
	}
}

// NewTransportError classifies a failure that happened before any HTTP status
// was received. Network errors are retryable; context errors are not.
func NewTransportError(provider, op string, err error) *ExternalServiceError {
	var netErr net.Error
	retryable := errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		retryable = false
	}
	return &ExternalServiceError{
		Provider:  provider,
		Op:        op,
		Retryable: retryable,
		Err:       err,
	}
}

var retryHint = regexp.MustCompile(`(?i)retry (?:after|in)\s+(\d+(?:\.\d+)?)\s*(ms|milliseconds?|s|sec|seconds?|m|min|minutes?)?`)

// RetryAfterFromMessage extracts hints such as "retry after 60 seconds" or
// "Please retry in 12.5s" from an error message. Zero means no hint.
func RetryAfterFromMessage(message string) time.Duration {
	m := retryHint.FindStringSubmatch(message)
	if m == nil {
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	unit := time.Second
	switch strings.ToLower(m[2]) {
	case "ms", "millisecond", "milliseconds":
		unit = time.Millisecond
	case "m", "min", "minute", "minutes":
		unit = time.Minute
	}

	return time.Duration(value * float64(unit))
}
