package collector

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest is returned by BuildRequest for an empty series id or inverted dates.
	ErrInvalidRequest = errors.New("invalid series request")
	// ErrRequestFailed matches every *RequestFailedError via errors.Is.
	ErrRequestFailed = errors.New("series request failed")
	// ErrMalformedResponse means a 200 body had no observation list.
	ErrMalformedResponse = errors.New("malformed series response")
	// ErrMalformedDate matches every *MalformedDateError via errors.Is.
	ErrMalformedDate = errors.New("malformed observation date")
)

// RequestFailedError reports a non-200 response or a transport failure.
// StatusCode is 0 when no response was received.
type RequestFailedError struct {
	StatusCode int
	Message    string // upstream error_message, if any
	Err        error  // transport error, if any
}

func (e *RequestFailedError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("series request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("series request failed: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("series request failed: status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// Timeout reports whether the request was cut off by a deadline.
func (e *RequestFailedError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// MalformedDateError identifies the first observation whose date failed to parse.
type MalformedDateError struct {
	Index int
	Date  string
	Err   error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed observation date %q at index %d", e.Date, e.Index)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

func (e *MalformedDateError) Is(target error) bool { return target == ErrMalformedDate }
