package httpcore

import (
	"context"
	"net/http"
)

// cookieLayer applies jar's stored cookies to outgoing requests and saves
// Set-Cookie from responses, the way (*http.Client).send does internally —
// reimplemented here because that logic is private to net/http and this
// stack's Doer signature isn't an http.RoundTripper. Grounded on the
// teacher's fetch.go Options.Jar field.
func cookieLayer(jar http.CookieJar) Layer {
	if jar == nil {
		return func(next Doer) Doer { return next }
	}
	return func(next Doer) Doer {
		return func(ctx context.Context, req *Request) (*Response, error) {
			for _, c := range jar.Cookies(req.URL) {
				req.Header.Add("Cookie", c.String())
			}

			resp, err := next(ctx, req)
			if err != nil {
				return nil, err
			}

			if rc := readSetCookies(resp.Header); len(rc) > 0 {
				jar.SetCookies(resp.URL, rc)
			}
			return resp, nil
		}
	}
}

func readSetCookies(header http.Header) []*http.Cookie {
	resp := &http.Response{Header: header}
	return resp.Cookies()
}
