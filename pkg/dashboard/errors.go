package dashboard

import (
	"errors"
	"fmt"
)

var ErrNullBody = errors.New("response body is null")

type FailureKind string

const (
	FailureTransport  FailureKind = "transport"
	FailureHttpStatus FailureKind = "http_status"
	FailureDecode     FailureKind = "decode"
)

// FetchError is implemented only by TransportError, HttpStatusError and DecodeError.
type FetchError interface {
	error
	Kind() FailureKind
	fetchError()
}

// TransportError means the request never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dashboard request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error     { return e.Err }
func (e *TransportError) Kind() FailureKind { return FailureTransport }
func (e *TransportError) fetchError()       {}

// HttpStatusError means the backend answered outside the 2xx range.
type HttpStatusError struct {
	URL    string
	Status int
}

func (e *HttpStatusError) Error() string {
	return fmt.Sprintf("dashboard backend returned non-OK status: %d", e.Status)
}

func (e *HttpStatusError) Kind() FailureKind { return FailureHttpStatus }
func (e *HttpStatusError) fetchError()       {}

// DecodeError means the body was not a DashboardData document.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode dashboard response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error     { return e.Err }
func (e *DecodeError) Kind() FailureKind { return FailureDecode }
func (e *DecodeError) fetchError()       {}
