package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/user-directory-service/internal/cache"
	"github.com/maxviazov/user-directory-service/internal/config"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/internal/table"
)

type userService struct {
	pages    PageCache
	upstream repository.Pinger
	view     config.ViewConfig
	log      zerolog.Logger
}

// NewUserService wires the directory use cases. Zero fields of view fall back to the page defaults.
func NewUserService(pages PageCache, upstream repository.Pinger, view config.ViewConfig, logger zerolog.Logger) UserService {
	if view.DefaultLimit < 1 {
		view.DefaultLimit = defaultLimit
	}
	if view.MaxLimit < view.DefaultLimit {
		view.MaxLimit = max(maxLimit, view.DefaultLimit)
	}
	if len(view.PageSizes) == 0 {
		view.PageSizes = []int{5, 10}
	}
	if view.RenderTimeout <= 0 {
		view.RenderTimeout = 3 * time.Second
	}
	l := logger.With().Str("module", "service").Str("component", "users").Logger()
	return &userService{pages: pages, upstream: upstream, view: view, log: l}
}

func (s *userService) ParsePageRequest(q url.Values) repository.PageRequest {
	return normalizePage(repository.PageRequest{
		Page:  positiveInt(q.Get("page"), defaultPage),
		Limit: positiveInt(q.Get("limit"), s.view.DefaultLimit),
	}, s.view.DefaultLimit, s.view.MaxLimit)
}

func (s *userService) PageSize(limit string) repository.PageRequest {
	return normalizePage(repository.PageRequest{
		Page:  defaultPage,
		Limit: positiveInt(limit, s.view.DefaultLimit),
	}, s.view.DefaultLimit, s.view.MaxLimit)
}

func (s *userService) PageSizes() []int {
	return slices.Clone(s.view.PageSizes)
}

func (s *userService) Page(ctx context.Context, p repository.PageRequest) (repository.PageResult[model.User], error) {
	p = normalizePage(p, s.view.DefaultLimit, s.view.MaxLimit)
	return s.pages.Get(ctx, p)
}

func (s *userService) View(ctx context.Context, q ViewQuery) model.UserView {
	p := normalizePage(q.Page, s.view.DefaultLimit, s.view.MaxLimit)
	if q.Table.Sorting == nil {
		q.Table.Sorting = []model.SortSpec{}
	}
	v := model.UserView{
		Table:   q.Table,
		Columns: table.ViewColumns(q.Table),
		Rows:    []model.User{},
	}

	// another request is already fetching this page and nothing is cached yet
	if s.pages.Peek(ctx, p) == cache.StateLoading {
		s.log.Debug().Int("page", p.Page).Int("limit", p.Limit).Msg("page fetch in flight")
		v.Status = model.StatusLoading
		v.Pagination = Paginate(p, 0)
		return v
	}

	rctx, cancel := context.WithTimeout(ctx, s.view.RenderTimeout)
	defer cancel()

	res, err := s.pages.Get(rctx, p)
	switch {
	case err == nil:
		v.Status = model.StatusSuccess
		v.Rows = table.Apply(res.Items, q.Table)
		v.TotalCount = res.TotalCount
		v.Pagination = Paginate(p, res.TotalPages)
	case !errors.Is(err, repository.ErrFetch) && rctx.Err() != nil:
		// the fetch keeps running detached and lands in the cache for the next render
		s.log.Debug().Int("page", p.Page).Int("limit", p.Limit).Dur("render_timeout", s.view.RenderTimeout).Msg("page still loading")
		v.Status = model.StatusLoading
		v.Pagination = Paginate(p, 0)
	default:
		s.log.Warn().Err(err).Int("page", p.Page).Int("limit", p.Limit).Int("upstream_status", repository.StatusCode(err)).Msg("page unavailable")
		v.Status = model.StatusError
		v.Error = err.Error()
		v.Pagination = Paginate(p, 0)
	}
	return v
}

func (s *userService) Navigate(page, totalPages int) (int, bool) {
	if !CanNavigate(page, totalPages) {
		return 0, false
	}
	return page, true
}

func (s *userService) ParseInvalidateRequest(page, limit string) (*repository.PageRequest, error) {
	return parseInvalidate(page, limit, s.view.MaxLimit)
}

func (s *userService) Invalidate(ctx context.Context, p *repository.PageRequest) error {
	if p == nil {
		s.log.Info().Msg("invalidating all cached pages")
		return s.pages.InvalidateAll(ctx)
	}
	if p.Page < 1 || p.Limit < 1 {
		return NewInvalidInputError([]FieldError{{Field: "page", Message: "page and limit must be >= 1"}})
	}
	s.log.Info().Int("page", p.Page).Int("limit", p.Limit).Msg("invalidating cached page")
	return s.pages.Invalidate(ctx, *p)
}

func (s *userService) Ping(ctx context.Context) error {
	var errs []error
	if s.upstream != nil {
		if err := s.upstream.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("upstream: %w", err))
		}
	}
	if err := s.pages.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	return errors.Join(errs...)
}
