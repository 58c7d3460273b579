package httpcore

import (
	"context"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/shiroyk/httpcore/connect"
	"github.com/shiroyk/httpcore/dns"
	"github.com/shiroyk/httpcore/h2"
)

// Client is an immutable, concurrency-safe request executor. Build one with
// NewClient/ClientBuilder; a Client's middleware stack is assembled once at
// build time, not per request.
type Client struct {
	doer  Doer
	jar   http.CookieJar
	emul  Emulation
	order OrderedHeaders
}

// ClientBuilder assembles a Client. Its zero value is ready to use; call
// methods to override defaults, then Build.
type ClientBuilder struct {
	opt      Options
	resolver dns.Resolver
	jar      http.CookieJar
	noJar    bool
	proxy    ProxyFunc
	layers   []Layer
	redirect RedirectPolicy
}

// NewClientBuilder starts a builder from opt (use DefaultOptions() for the
// teacher's own defaults).
func NewClientBuilder(opt Options) *ClientBuilder {
	return &ClientBuilder{opt: opt}
}

// WithResolver overrides DNS resolution.
func (b *ClientBuilder) WithResolver(r dns.Resolver) *ClientBuilder {
	b.resolver = r
	return b
}

// WithProxy sets the client-level proxy matcher (tried after any
// per-request override, before the system proxy).
func (b *ClientBuilder) WithProxy(p ProxyFunc) *ClientBuilder {
	b.proxy = p
	return b
}

// WithCookieJar sets the cookie jar. Passing nil disables cookie handling
// entirely (the default jar, if this is never called, is a fresh
// cookiejar.Jar using the public-suffix list).
func (b *ClientBuilder) WithCookieJar(jar http.CookieJar) *ClientBuilder {
	b.jar = jar
	b.noJar = jar == nil
	return b
}

// WithRedirectPolicy overrides the default MaxRedirects(opt.MaxRedirects).
func (b *ClientBuilder) WithRedirectPolicy(p RedirectPolicy) *ClientBuilder {
	b.redirect = p
	return b
}

// With appends a user-supplied middleware layer, applied after the built-in
// stack and before the start-timeout layer.
func (b *ClientBuilder) With(l Layer) *ClientBuilder {
	b.layers = append(b.layers, l)
	return b
}

// Build assembles the middleware stack and returns a ready-to-use Client.
func (b *ClientBuilder) Build() (*Client, error) {
	opt := b.opt

	resolver := b.resolver
	if resolver == nil {
		resolver = dns.NewSystemResolver(nil)
	}

	emul := Emulation{}
	if provider := opt.emulationProvider(); provider != nil {
		emul = provider()
	}

	connector := &connect.Connector{
		Resolver: resolver,
		Options:  opt.tcpOptions(),
		TLS:      connect.TLSConfig{ClientHelloID: emul.ClientHello},
	}

	var proxyFn ProxyFunc
	if len(opt.Proxies) > 0 {
		proxyFn = NewRoundRobinProxy(opt.Proxies...)
	}
	if b.proxy != nil {
		proxyFn = b.proxy
	}

	h2Transport := h2.New(emul.HTTP2, connector)
	base := newBaseTransport(connector, h2Transport, proxyMatcherChain(proxyFn), opt.poolConfig(), opt.httpVersion())

	jar := b.jar
	if jar == nil && !b.noJar {
		var err error
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
	}

	redirectPolicy := b.redirect
	if redirectPolicy == nil {
		if opt.DisableRedirects {
			redirectPolicy = NoRedirects
		} else {
			maxRedirects := opt.MaxRedirects
			if maxRedirects == 0 {
				maxRedirects = DefaultMaxRedirects
			}
			redirectPolicy = MaxRedirects(maxRedirects)
		}
	}

	// chain() takes layers outermost-first (layers[0] is entered first);
	// this must be the reverse of spec.md §4.1's innermost-outward
	// assembly list, so the start-timeout layer — which has to bound the
	// entire request, retries and redirects included — comes first here,
	// and decompression, which sits right next to the base transport,
	// comes last.
	layers := []Layer{startTimeoutLayer(opt.Timeout)}
	layers = append(layers, b.layers...)
	layers = append(layers,
		retryLayer(opt.HTTP2MaxRetries, nil),
		redirectLayer(redirectPolicy, opt.HTTPSOnly, opt.SendReferer),
		cookieLayer(jar),
		bodyTimeoutLayer(opt.BodyTimeout, nil),
		decompressLayer,
	)

	doer := chain(Doer(base.Do), layers...)

	return &Client{doer: doer, jar: jar, emul: emul, order: emul.HeaderOrder}, nil
}

// NewClient builds a Client directly from Options using every other
// default (no custom resolver, proxy, or layers). Equivalent to
// NewClientBuilder(opt).Build().
func NewClient(opt Options) (*Client, error) {
	return NewClientBuilder(opt).Build()
}

// Do applies the client's default headers and header order (from its
// Emulation, if any) to req, then dispatches it through the full
// middleware stack.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.emul.Headers != nil {
		mergeDefaults(req.Header, c.emul.Headers)
	}
	if req.Order == nil {
		req.Order = c.order
	}
	return c.doer(ctx, req)
}

// Get is a convenience wrapper around NewRequest + Do.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := NewRequest(http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post is a convenience wrapper around NewRequest + Do.
func (c *Client) Post(ctx context.Context, rawURL string, body any) (*Response, error) {
	req, err := NewRequest(http.MethodPost, rawURL, body, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}
