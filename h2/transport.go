package h2

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/http2"

	"github.com/shiroyk/httpcore/connect"
)

// Transport wraps http2.Transport, dialing through a connect.Connector
// (which performs the uTLS handshake this module's TLS fingerprinting
// depends on) instead of http2.Transport's own TLS dialer.
type Transport struct {
	inner *http2.Transport
}

// New builds a Transport. cfg's MaxReadFrameSize and MaxHeaderListSize are
// applied to the underlying http2.Transport; its other fields (Settings,
// header orders, InitialWindowUpdate, Priority) are not applied to
// connections or requests.
func New(cfg Config, connector *connect.Connector) *Transport {
	t := &http2.Transport{
		AllowHTTP: false,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			connected, err := connector.Connect(ctx, &url.URL{Scheme: "https", Host: addr}, nil, []string{"h2"})
			if err != nil {
				return nil, err
			}
			return connected.Conn, nil
		},
	}
	if cfg.MaxReadFrameSize > 0 {
		t.MaxReadFrameSize = cfg.MaxReadFrameSize
	}
	if cfg.MaxHeaderListSize > 0 {
		t.MaxHeaderListSize = cfg.MaxHeaderListSize
	}
	return &Transport{inner: t}
}

// NewClientConn performs the HTTP/2 connection preface and SETTINGS
// exchange over an already-established, already-TLS-handshaked conn.
func (t *Transport) NewClientConn(conn net.Conn) (*ClientConn, error) {
	cc, err := t.inner.NewClientConn(conn)
	if err != nil {
		return nil, err
	}
	return &ClientConn{cc: cc}, nil
}

// ClientConn adapts an *http2.ClientConn to pool.Poolable: it reports
// itself shareable (HTTP/2 multiplexes many requests over one connection)
// and open for as long as the codec is willing to accept new streams.
type ClientConn struct {
	cc *http2.ClientConn
}

func (c *ClientConn) IsOpen() bool   { return c.cc.CanTakeNewRequest() }
func (c *ClientConn) CanShare() bool { return true }
func (c *ClientConn) Close() error   { return c.cc.Close() }

// RoundTrip dispatches req over this connection.
func (c *ClientConn) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.cc.RoundTrip(req)
}
