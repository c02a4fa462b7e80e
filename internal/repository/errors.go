package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrFetch marks every failure to obtain a page from the upstream source.
// Callers match it with errors.Is; details live in *FetchError.
var ErrFetch = errors.New("fetch failed")

// FetchError is returned for a non-2xx upstream status or a transport failure.
// StatusCode is 0 when the request never produced a response.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return "upstream request failed: " + e.Err.Error()
	}
	return ErrFetch.Error()
}

// Is lets errors.Is(err, ErrFetch) match without exposing the wrapped cause as ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }

// NewStatusError builds a FetchError for a non-success HTTP status.
func NewStatusError(status int) error {
	return &FetchError{StatusCode: status}
}

// NewTransportError builds a FetchError for a request that never got a usable response.
func NewTransportError(err error) error {
	return &FetchError{Err: err}
}

// StatusCode extracts the upstream status from a FetchError, 0 otherwise.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
