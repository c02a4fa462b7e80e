package jsonplaceholder

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/middleware"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestChain_HeadersSetOnCloneOnly(t *testing.T) {
	var sent *http.Request
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		sent = req
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})
	rt := newChain(base, requestID(), userAgent("user-directory", "1.0.0"))

	ctx := middleware.WithRequestID(context.Background(), "req-42")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://upstream.test/users", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.NotNil(t, sent)
	assert.Equal(t, "user-directory/1.0.0", sent.Header.Get("User-Agent"))
	assert.Equal(t, "req-42", sent.Header.Get(middleware.HeaderRequestID))

	assert.Empty(t, req.Header.Get("User-Agent"), "caller request was modified")
	assert.Empty(t, req.Header.Get(middleware.HeaderRequestID), "caller request was modified")
}
