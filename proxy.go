package httpcore

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
)

// ExtKeyProxy lets a single request override the client's configured proxy
// matcher. Set it on Request.Extensions before dispatch.
var ExtKeyProxy = NewExtensionKey[ProxyFunc]("proxy.override")

// roundRobinProxy cycles through a fixed list of proxy URLs. Grounded on the
// teacher's proxy.go roundRobinProxy.
type roundRobinProxy struct {
	urls  []*url.URL
	index uint32
}

func newRoundRobinProxy(proxyURLs ...string) *roundRobinProxy {
	if len(proxyURLs) == 0 {
		return nil
	}
	parsed := make([]*url.URL, 0, len(proxyURLs))
	for _, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			slog.Error(fmt.Sprintf("proxy url %s invalid", raw), "error", err)
			continue
		}
		parsed = append(parsed, u)
	}
	if len(parsed) == 0 {
		return nil
	}
	return &roundRobinProxy{urls: parsed}
}

func (r *roundRobinProxy) next() *url.URL {
	i := atomic.AddUint32(&r.index, 1) - 1
	return r.urls[i%uint32(len(r.urls))]
}

// NewRoundRobinProxy returns a ProxyFunc that cycles through proxyURLs on
// every call, ignoring the request entirely. Any URL that parses is kept,
// whatever its scheme; an unparseable URL is logged and skipped. The
// connector tunnels through every proxy with an HTTP CONNECT request, so
// SOCKS proxies are not supported.
func NewRoundRobinProxy(proxyURLs ...string) ProxyFunc {
	rr := newRoundRobinProxy(proxyURLs...)
	if rr == nil {
		return nil
	}
	return func(*Request) (*url.URL, error) { return rr.next(), nil }
}

// proxyMatcherChain tries, in order: a per-request override (Extensions),
// the client's configured matcher, then the system proxy environment
// (http_proxy/https_proxy/no_proxy). The first matcher to return a non-nil
// URL (or a non-nil error) wins.
func proxyMatcherChain(client ProxyFunc) ProxyFunc {
	return func(req *Request) (*url.URL, error) {
		if override, ok := Get(req.Extensions, ExtKeyProxy); ok && override != nil {
			u, err := override(req)
			if err != nil || u != nil {
				return u, err
			}
		}
		if client != nil {
			u, err := client(req)
			if err != nil || u != nil {
				return u, err
			}
		}
		httpReq := &http.Request{URL: req.URL}
		return http.ProxyFromEnvironment(httpReq)
	}
}
