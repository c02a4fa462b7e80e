// Package service holds the use cases behind the user directory page.
// It turns URL parameters into page requests, reads pages through the cache and shapes the view.
package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/maxviazov/user-directory-service/internal/cache"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error, or nil when fe is empty.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// ViewQuery is one render request: the page window plus the transient table state.
type ViewQuery struct {
	Page  repository.PageRequest
	Table model.TableState
}

// PageCache is the slice of the page cache the service depends on.
type PageCache interface {
	Get(ctx context.Context, p repository.PageRequest) (repository.PageResult[model.User], error)
	Peek(ctx context.Context, p repository.PageRequest) cache.State
	Invalidate(ctx context.Context, p repository.PageRequest) error
	InvalidateAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// UserService defines the directory use cases.
type UserService interface {
	// ParsePageRequest derives the page window from a URL query, falling back to defaults.
	ParsePageRequest(q url.Values) repository.PageRequest
	// PageSize is the window after the page size changed: always page 1.
	PageSize(limit string) repository.PageRequest
	// PageSizes lists the page sizes offered by the view.
	PageSizes() []int
	// Page returns one page of users; only a cache miss reaches the upstream.
	Page(ctx context.Context, p repository.PageRequest) (repository.PageResult[model.User], error)
	// View builds the full render state for q. Failures are reported through the view status.
	View(ctx context.Context, q ViewQuery) model.UserView
	// Navigate reports whether moving to page is allowed given the known page count.
	Navigate(page, totalPages int) (int, bool)
	// ParseInvalidateRequest validates the optional page/limit of a cache invalidation.
	ParseInvalidateRequest(page, limit string) (*repository.PageRequest, error)
	// Invalidate drops the cached page p, or every page when p is nil.
	Invalidate(ctx context.Context, p *repository.PageRequest) error
	// Ping checks the upstream and the cache store.
	Ping(ctx context.Context) error
}
