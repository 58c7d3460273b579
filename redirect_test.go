package httpcore

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponse(status int, header http.Header, rawURL string) *Response {
	if header == nil {
		header = make(http.Header)
	}
	u, _ := url.Parse(rawURL)
	return &Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(nil),
		URL:        u,
		Extensions: NewExtensions(),
	}
}

func TestRedirectFollowsLocationAndRewritesURL(t *testing.T) {
	calls := 0
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		calls++
		if calls == 1 {
			h := make(http.Header)
			h.Set("Location", "https://example.com/b")
			return newTestResponse(http.StatusFound, h, "https://example.com/a"), nil
		}
		return newTestResponse(http.StatusOK, nil, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(DefaultMaxRedirects), false, true)
	doer := layer(base)

	req, err := NewRequest(http.MethodGet, "https://example.com/a", nil, nil)
	require.NoError(t, err)

	resp, err := doer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "https://example.com/b", resp.URL.String())
}

func TestRedirectPOSTBecomesGETOn302(t *testing.T) {
	var secondMethod string
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		if secondMethod == "" && req.Method == http.MethodPost {
			h := make(http.Header)
			h.Set("Location", "/b")
			return newTestResponse(http.StatusFound, h, "https://example.com/a"), nil
		}
		secondMethod = req.Method
		return newTestResponse(http.StatusOK, nil, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(DefaultMaxRedirects), false, false)
	doer := layer(base)

	req, err := NewRequest(http.MethodPost, "https://example.com/a", "body", nil)
	require.NoError(t, err)

	_, err = doer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, secondMethod)
}

func TestRedirectStopsAfterMaxRedirects(t *testing.T) {
	calls := 0
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		calls++
		h := make(http.Header)
		// A new Location on every hop, so the redirect limit, not loop
		// detection, is what ends the chain.
		h.Set("Location", req.URL.String()+"/next")
		return newTestResponse(http.StatusFound, h, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(2), false, false)
	doer := layer(base)

	req, err := NewRequest(http.MethodGet, "https://example.com/a", nil, nil)
	require.NoError(t, err)

	_, err = doer(context.Background(), req)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindRedirect, e.Kind)
	assert.Equal(t, 3, calls) // the first request plus the 2 allowed redirects
}

// TestRedirectFollowsNonCloneableBodyOn303 is a regression test: a 303 (and
// likewise a 301/302 turning a POST into a GET) always drops the original
// body, so a streamed, non-cloneable body must never block the hop — only
// 307/308 and a 301/302 that keeps the method need the body to survive.
func TestRedirectFollowsNonCloneableBodyOn303(t *testing.T) {
	var secondMethod string
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		if secondMethod == "" && req.Method == http.MethodPost {
			h := make(http.Header)
			h.Set("Location", "https://example.com/b")
			return newTestResponse(http.StatusSeeOther, h, req.URL.String()), nil
		}
		secondMethod = req.Method
		return newTestResponse(http.StatusOK, nil, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(DefaultMaxRedirects), false, false)
	doer := layer(base)

	req, err := NewRequest(http.MethodPost, "https://example.com/a", strings.NewReader("payload"), nil)
	require.NoError(t, err)
	require.False(t, req.Body.Cloneable())

	resp, err := doer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, secondMethod)
}

func TestRedirectRefusesNonCloneableBodyOn307(t *testing.T) {
	calls := 0
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		calls++
		h := make(http.Header)
		h.Set("Location", "https://example.com/b")
		return newTestResponse(http.StatusTemporaryRedirect, h, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(DefaultMaxRedirects), false, false)
	doer := layer(base)

	req, err := NewRequest(http.MethodPost, "https://example.com/a", strings.NewReader("payload"), nil)
	require.NoError(t, err)

	resp, err := doer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, 1, calls, "a 307 with a non-replayable body must not be followed")
}

func TestRedirectStripsAuthorizationCrossHost(t *testing.T) {
	var gotAuth string
	base := Doer(func(ctx context.Context, req *Request) (*Response, error) {
		if req.URL.Host == "example.com" {
			h := make(http.Header)
			h.Set("Location", "https://other.com/b")
			return newTestResponse(http.StatusFound, h, req.URL.String()), nil
		}
		gotAuth = req.Header.Get("Authorization")
		return newTestResponse(http.StatusOK, nil, req.URL.String()), nil
	})

	layer := redirectLayer(MaxRedirects(DefaultMaxRedirects), false, false)
	doer := layer(base)

	req, err := NewRequest(http.MethodGet, "https://example.com/a", nil,
		map[string]string{"Authorization": "Bearer secret"})
	require.NoError(t, err)

	_, err = doer(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}
