package service

import (
	"strconv"
	"strings"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 5
	maxLimit     = 100
)

// positiveInt parses s as an integer >= 1; anything else yields def.
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func normalizePage(p repository.PageRequest, defLimit, max int) repository.PageRequest {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defLimit
	}
	if p.Limit > max {
		p.Limit = max
	}
	return p
}

// parseInvalidate validates the optional page/limit of a cache invalidation request.
// Both empty means every page; otherwise both must be positive integers within maxLimit.
func parseInvalidate(page, limit string, max int) (*repository.PageRequest, error) {
	page, limit = strings.TrimSpace(page), strings.TrimSpace(limit)
	if page == "" && limit == "" {
		return nil, nil
	}

	var ferrs []FieldError
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		ferrs = append(ferrs, FieldError{Field: "page", Message: "must be an integer >= 1"})
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 || l > max {
		ferrs = append(ferrs, FieldError{Field: "limit", Message: "must be an integer between 1 and " + strconv.Itoa(max)})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}
	return &repository.PageRequest{Page: p, Limit: l}, nil
}

// Paginate computes the Previous/Next state for page p of a result with totalPages pages.
// An unknown page count (0) is displayed as a single page.
func Paginate(p repository.PageRequest, totalPages int) model.Pagination {
	display := totalPages
	if display < 1 {
		display = 1
	}
	return model.Pagination{
		Page:              p.Page,
		Limit:             p.Limit,
		TotalPages:        totalPages,
		DisplayTotalPages: display,
		HasPrevious:       p.Page > 1,
		HasNext:           p.Page < display,
	}
}

// CanNavigate mirrors the page-change guard: page must be >= 1 and, once the page count is
// known, no greater than it.
func CanNavigate(page, totalPages int) bool {
	if page < 1 {
		return false
	}
	return totalPages <= 0 || page <= totalPages
}
