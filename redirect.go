package httpcore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RedirectPolicy decides whether to follow a redirect to the given chain of
// URLs already visited (not including the new one). Returning a non-nil
// error stops the redirect and that error becomes the Do call's result.
type RedirectPolicy func(history []*url.URL, next *Request) error

// NoRedirects refuses every redirect.
func NoRedirects(history []*url.URL, next *Request) error {
	return fmt.Errorf("redirects disabled")
}

// MaxRedirects allows up to n redirect hops.
func MaxRedirects(n int) RedirectPolicy {
	return func(history []*url.URL, next *Request) error {
		if len(history) >= n {
			return fmt.Errorf("stopped after %d redirects", n)
		}
		return nil
	}
}

// DefaultMaxRedirects matches net/http.Client's own default.
const DefaultMaxRedirects = 10

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectLayer follows Location headers according to policy, rewriting
// method/body per RFC 7231 semantics for 301/302/303, refusing to replay a
// non-cloneable streamed body on 307/308, stripping sensitive headers on a
// cross-host hop, and setting Referer when enabled.
func redirectLayer(policy RedirectPolicy, httpsOnly bool, referer bool) Layer {
	if policy == nil {
		policy = MaxRedirects(DefaultMaxRedirects)
	}
	return func(next Doer) Doer {
		return func(ctx context.Context, req *Request) (*Response, error) {
			history := []*url.URL{}
			current := req

			for {
				resp, err := next(ctx, current)
				if err != nil {
					return nil, err
				}
				if !isRedirectStatus(resp.StatusCode) {
					resp.URL = current.URL
					return resp, nil
				}

				loc := resp.Header.Get("Location")
				if loc == "" {
					return resp, nil
				}
				target, err := current.URL.Parse(loc)
				if err != nil {
					resp.Body.Close()
					return nil, newError(KindRedirect, current.URL, fmt.Errorf("parse Location: %w", err))
				}

				if httpsOnly && target.Scheme != "https" {
					resp.Body.Close()
					return nil, newError(KindRedirect, current.URL, fmt.Errorf("refusing non-https redirect to %s", target))
				}
				for _, seen := range history {
					if seen.String() == target.String() {
						resp.Body.Close()
						return nil, newError(KindRedirect, current.URL, fmt.Errorf("redirect loop to %s", target))
					}
				}

				// 303 always drops the body, as does 301/302 turning a POST
				// into a GET; only those two cases (plus 307/308, which
				// always replay) need deciding up front, before touching
				// Clone, since a non-cloneable body only matters when it
				// would actually need to be replayed.
				dropsBody := resp.StatusCode == http.StatusSeeOther ||
					(resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound) &&
						current.Method == http.MethodPost

				var nextReq *Request
				if dropsBody {
					nextReq = current.cloneDroppingBody()
				} else {
					var ok bool
					nextReq, ok = current.Clone()
					if !ok {
						// Streamed, non-cloneable body that must actually be
						// replayed (307/308, or a 301/302 non-POST): cannot
						// follow. Return the redirect response as-is rather
						// than error, per spec — the caller still sees the
						// 30x and can decide.
						resp.URL = current.URL
						return resp, nil
					}
				}
				nextReq.URL = target

				switch resp.StatusCode {
				case http.StatusSeeOther:
					nextReq.Method = http.MethodGet
					nextReq.Header.Del("Content-Type")
					nextReq.Header.Del("Content-Length")
				case http.StatusMovedPermanently, http.StatusFound:
					if current.Method == http.MethodPost {
						nextReq.Method = http.MethodGet
						nextReq.Header.Del("Content-Type")
						nextReq.Header.Del("Content-Length")
					}
				}

				if target.Host != current.URL.Host {
					nextReq.Header.Del("Authorization")
					nextReq.Header.Del("Cookie")
					nextReq.Header.Del("Proxy-Authorization")
					nextReq.Header.Del("Www-Authenticate")
				}

				if referer && shouldSendReferer(current.URL, target) {
					nextReq.Header.Set("Referer", refererFor(current.URL))
				}

				if err := policy(history, nextReq); err != nil {
					resp.Body.Close()
					return nil, newError(KindRedirect, current.URL, err)
				}

				resp.Body.Close()
				history = append(history, current.URL)
				current = nextReq
			}
		}
	}
}

func shouldSendReferer(from, to *url.URL) bool {
	return !(from.Scheme == "https" && to.Scheme != "https")
}

func refererFor(u *url.URL) string {
	ref := *u
	ref.User = nil
	ref.Fragment = ""
	return ref.String()
}
