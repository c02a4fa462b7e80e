package jsonplaceholder

import (
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/maxviazov/user-directory-service/internal/metrics"
	"github.com/maxviazov/user-directory-service/internal/middleware"
)

// Responder receives an HTTP request and returns a response.
type Responder func(*http.Request) (*http.Response, error)

// MiddlewareFunc wraps the next Responder in the chain.
type MiddlewareFunc func(next Responder) Responder

// chain is an http.RoundTripper running every request through the middleware list,
// first registered outermost. Middleware that adds headers works on a clone; the caller's
// request is never modified.
type chain struct {
	base       Responder
	middleware []MiddlewareFunc
}

func newChain(base http.RoundTripper, mw ...MiddlewareFunc) *chain {
	return &chain{base: base.RoundTrip, middleware: mw}
}

func (c *chain) RoundTrip(req *http.Request) (*http.Response, error) {
	h := c.base
	for i := len(c.middleware) - 1; i >= 0; i-- {
		h = c.middleware[i](h)
	}
	return h(req)
}

// pooledTransport mirrors http.DefaultTransport with a non-shared pool sized for one upstream host.
func pooledTransport(maxIdle int) *http.Transport {
	if maxIdle <= 0 {
		maxIdle = 100
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          maxIdle,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
	}
}

// userAgent stamps every request with "{app}/{version}".
func userAgent(app, version string) MiddlewareFunc {
	ua := fmt.Sprintf("%s/%s", app, version)
	return func(next Responder) Responder {
		return func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", ua)
			return next(req)
		}
	}
}

// requestID forwards the inbound request id, when there is one on the context.
func requestID() MiddlewareFunc {
	return func(next Responder) Responder {
		return func(req *http.Request) (*http.Response, error) {
			if id := middleware.RequestIDFrom(req.Context()); id != "" {
				req = req.Clone(req.Context())
				req.Header.Set(middleware.HeaderRequestID, id)
			}
			return next(req)
		}
	}
}

// observe records upstream latency by status; transport failures are labelled "error".
func observe() MiddlewareFunc {
	return func(next Responder) Responder {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			metrics.UpstreamRequestDuration.WithLabelValues(req.Method, status).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
