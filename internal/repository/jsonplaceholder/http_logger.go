package jsonplaceholder

import (
	"net/http"
	"time"

	"github.com/maxviazov/user-directory-service/internal/middleware"
	"github.com/rs/zerolog"
)

// httpLogger adapts zerolog.Logger to the upstream middleware chain.
// I tag the component explicitly so upstream noise stays filterable.
type httpLogger struct {
	logger zerolog.Logger
}

func newHTTPLogger(logger zerolog.Logger) *httpLogger {
	l := logger.With().Str("component", "upstream").Logger()
	return &httpLogger{logger: l}
}

// Middleware logs each upstream round trip: debug on success, warn on non-2xx, error on transport failure.
func (l *httpLogger) Middleware() MiddlewareFunc {
	return func(next Responder) Responder {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			var event *zerolog.Event
			switch {
			case err != nil:
				event = l.logger.Error().Err(err)
			case resp.StatusCode < 200 || resp.StatusCode > 299:
				event = l.logger.Warn().Int("status", resp.StatusCode)
			default:
				event = l.logger.Debug().Int("status", resp.StatusCode)
			}
			if id := middleware.RequestIDFrom(req.Context()); id != "" {
				event = event.Str("request_id", id)
			}
			event.
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Dur("duration", time.Since(start)).
				Msg("upstream call")
			return resp, err
		}
	}
}
