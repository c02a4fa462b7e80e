// Package jsonplaceholder reads users from a JSONPlaceholder-compatible REST API
// (json-server style `_page`/`_limit` paging with a total-count header).
package jsonplaceholder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/maxviazov/user-directory-service/internal/config"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/rs/zerolog"
)

// drainLimit bounds how much of an error body is read so the connection can be reused.
const drainLimit = 4 << 10

// Repository wraps the HTTP client talking to the upstream user API.
type Repository struct {
	client      *http.Client
	usersURL    *url.URL
	totalHeader string
	log         zerolog.Logger
}

var _ repository.UserSource = (*Repository)(nil)

// New builds the upstream repository from config. No request is made here; readiness is
// checked separately through Ping.
func New(cfg *config.Config, logger *zerolog.Logger) (*Repository, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.Upstream.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", cfg.Upstream.BaseURL)
	}

	transport := newChain(pooledTransport(cfg.Upstream.MaxIdleConns),
		requestID(),
		userAgent(cfg.App.Name, cfg.App.Version),
		newHTTPLogger(*logger).Middleware(),
		observe(),
	)

	header := cfg.Upstream.TotalCountHeader
	if header == "" {
		header = "X-Total-Count"
	}

	logger.Info().
		Str("base_url", base.String()).
		Dur("timeout", cfg.Upstream.Timeout).
		Msg("upstream user source configured")

	return &Repository{
		client:      &http.Client{Transport: transport, Timeout: cfg.Upstream.Timeout},
		usersURL:    base.JoinPath("users"),
		totalHeader: header,
		log:         logger.With().Str("module", "repository").Str("component", "users").Logger(),
	}, nil
}

// ListUsers issues GET /users?_page={page}&_limit={limit} and derives the page count from the
// total-count header. Any non-2xx status or transport problem is a *repository.FetchError.
func (r *Repository) ListUsers(ctx context.Context, p repository.PageRequest) (repository.PageResult[model.User], error) {
	u := *r.usersURL
	u.RawQuery = fmt.Sprintf("_page=%d&_limit=%d", p.Page, p.Limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return repository.PageResult[model.User]{}, repository.NewTransportError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return repository.PageResult[model.User]{}, repository.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		return repository.PageResult[model.User]{}, repository.NewStatusError(resp.StatusCode)
	}

	var users []model.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return repository.PageResult[model.User]{}, repository.NewTransportError(fmt.Errorf("decode users: %w", err))
	}
	if users == nil {
		users = []model.User{}
	}

	total, ok := parseTotal(resp.Header.Get(r.totalHeader))
	if !ok {
		// without a total the page count stays unknown (0); the view treats it as a single page
		r.log.Warn().Str("header", r.totalHeader).Int("page", p.Page).Msg("upstream total count missing")
	}

	return repository.PageResult[model.User]{
		Items:      users,
		TotalCount: total,
		TotalPages: repository.TotalPages(total, p.Limit),
	}, nil
}

// Ping checks that the upstream answers at all; only transport failures and 5xx count as down.
func (r *Repository) Ping(ctx context.Context) error {
	u := *r.usersURL
	u.RawQuery = "_limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return repository.NewTransportError(err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return repository.NewTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return repository.NewStatusError(resp.StatusCode)
	}
	return nil
}

func parseTotal(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
