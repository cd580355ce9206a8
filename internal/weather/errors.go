package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEncoding is returned when the location query cannot be percent-encoded.
	ErrEncoding = errors.New("location query could not be encoded")
	// ErrTransport is returned when no HTTP response was obtained.
	ErrTransport = errors.New("weather api transport failure")
	// ErrUnauthorized is returned for a 401 response.
	ErrUnauthorized = errors.New("weather api rejected credentials")
	// ErrUnexpectedStatus is returned for any status other than 200 and 401.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrDecode is returned when the response body does not match the expected shape.
	ErrDecode = errors.New("weather api response could not be decoded")
)

// StatusError carries the numeric status of an unexpected response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d %s", ErrUnexpectedStatus, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
