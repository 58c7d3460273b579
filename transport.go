package httpcore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/shiroyk/httpcore/connect"
	"github.com/shiroyk/httpcore/h2"
	"github.com/shiroyk/httpcore/pool"
)

// poolConn is what the pool actually stores: either an HTTP/1 connection
// (exclusive use, via h1Conn) or an HTTP/2 ClientConn (shared, via
// *h2.ClientConn).
type poolConn interface {
	pool.Poolable
	RoundTrip(*http.Request) (*http.Response, error)
}

// h1Conn adapts a single persistent HTTP/1 connection, driven through
// net/http/httputil.ClientConn (the stdlib's own "one request/response pair
// per connection, caller manages reuse" primitive — exactly this use case,
// so the wire codec itself is still net/http's, not reimplemented here), to
// poolConn.
type h1Conn struct {
	raw    *connect.Connected
	client *httputil.ClientConn
}

func (c *h1Conn) IsOpen() bool   { return !c.raw.PoisonPill.Poisoned() }
func (c *h1Conn) CanShare() bool { return false }
func (c *h1Conn) Close() error   { c.raw.PoisonPill.Poison(); return c.raw.Conn.Close() }

func (c *h1Conn) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.raw.PoisonPill.Poison()
	}
	return resp, err
}

// h2Conn adapts *h2.ClientConn to poolConn (it already satisfies
// pool.Poolable).
type h2Conn struct{ *h2.ClientConn }

// baseTransport is the innermost Doer: pool checkout, a dial when the
// checkout reports a miss, then one RoundTrip. The checkout and the dial run
// one after the other; a connection released to the pool while a dial is in
// progress is not used by that request. Every other layer wraps this.
type baseTransport struct {
	pool      *pool.Pool[poolConn]
	connector *connect.Connector
	h2        *h2.Transport
	proxy     ProxyFunc
	version   Version
}

// ProxyFunc resolves which proxy (if any) to use for a request.
type ProxyFunc func(req *Request) (*url.URL, error)

func newBaseTransport(connector *connect.Connector, h2t *h2.Transport, proxy ProxyFunc, poolCfg pool.Config, version Version) *baseTransport {
	return &baseTransport{
		pool:      pool.New[poolConn](poolCfg),
		connector: connector,
		h2:        h2t,
		proxy:     proxy,
		version:   version,
	}
}

func (b *baseTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	var proxyURL *url.URL
	if b.proxy != nil {
		var err error
		proxyURL, err = b.proxy(req)
		if err != nil {
			return nil, newError(KindRequest, req.URL, fmt.Errorf("resolve proxy: %w", err))
		}
	}

	version := resolveVersion(req, b.version)

	key := poolKey(req.URL, proxyURL)
	conn, dial, err := b.pool.Checkout(ctx, key, version == VersionHTTP2Only)
	if err != nil {
		return nil, newError(KindRequest, req.URL, err)
	}

	if dial {
		connected, dialErr := b.connector.Connect(ctx, req.URL, proxyURL, version.alpnProtos())
		if dialErr != nil {
			b.pool.ConnectFailed(key, dialErr)
			return nil, newError(KindRequest, req.URL, dialErr)
		}
		if version == VersionHTTP2Only && connected.Alpn != connect.AlpnH2 {
			connected.Conn.Close()
			err := fmt.Errorf("server did not negotiate h2")
			b.pool.ConnectFailed(key, err)
			return nil, newError(KindRequest, req.URL, err)
		}

		var pc poolConn
		switch connected.Alpn {
		case connect.AlpnH2:
			cc, err := b.h2.NewClientConn(connected.Conn)
			if err != nil {
				connected.Conn.Close()
				b.pool.ConnectFailed(key, err)
				return nil, newError(KindRequest, req.URL, err)
			}
			pc = &h2Conn{cc}
		default:
			pc = &h1Conn{raw: connected, client: httputil.NewClientConn(connected.Conn, nil)}
		}
		conn = b.pool.Connected(key, pc)
	}

	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		conn.Close()
		return nil, newError(KindBuilder, req.URL, err)
	}

	resp, err := conn.Value.RoundTrip(httpReq)
	if err != nil {
		wasShared := conn.Kind == pool.Shared
		conn.Close()
		if wasShared && !conn.Value.IsOpen() {
			err = fmt.Errorf("%w: %v", ErrRefusedStream, err)
		}
		return nil, newError(KindRequest, req.URL, err)
	}
	resp.Body = &pooledBody{ReadCloser: resp.Body, conn: conn}

	return fromHTTPResponse(resp), nil
}

// pooledBody returns the connection it was issued from to the pool once the
// response body is closed — not before, since an HTTP/1 connection cannot
// be reused while its response is still being read.
type pooledBody struct {
	io.ReadCloser
	conn pool.Pooled[poolConn]
}

func (b *pooledBody) Close() error {
	err := b.ReadCloser.Close()
	b.conn.Close()
	return err
}

func poolKey(target *url.URL, proxy *url.URL) string {
	authority := target.Host
	if target.Port() == "" {
		if target.Scheme == "https" {
			authority += ":443"
		} else {
			authority += ":80"
		}
	}
	key := target.Scheme + "|" + authority
	if proxy != nil {
		key += "|" + proxy.String()
	}
	return key
}

func toHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), req.Body.Reader())
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Header
	if req.Body != nil {
		if l := req.Body.Len(); l >= 0 {
			httpReq.ContentLength = l
		}
	}
	return httpReq, nil
}
