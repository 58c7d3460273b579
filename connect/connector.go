package connect

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"time"

	"github.com/shiroyk/httpcore/dns"
)

// Connector runs the full dial pipeline for one request: resolve, dial,
// optionally tunnel through a proxy, then hand off to the TLS step for an
// https target.
type Connector struct {
	Resolver dns.Resolver
	Options  TCPConnectOptions
	TLS      TLSConfig
}

// Connect dials target (an absolute URL), tunneling through proxy when
// non-nil, and returns the established connection. For an "https" target
// the returned Connected.Alpn reflects what TLS negotiated, constrained to
// whichever protocols nextProtos lists (nil advertises both h2 and
// http/1.1, the default); for "http" it is always AlpnH1.
func (c *Connector) Connect(ctx context.Context, target *url.URL, proxy *url.URL, nextProtos []string) (*Connected, error) {
	if c.Options.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Options.ConnectTimeout)
		defer cancel()
	}

	host := target.Hostname()
	port := target.Port()
	if port == "" {
		port = defaultPort(target.Scheme)
	}

	dialHost, dialPort := host, port
	proxyIdentity := ""
	if proxy != nil {
		proxyIdentity = proxy.String()
		dialHost = proxy.Hostname()
		dialPort = proxy.Port()
		if dialPort == "" {
			dialPort = defaultPort(proxy.Scheme)
		}
	}

	conn, err := c.dial(ctx, dialHost, dialPort)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", net.JoinHostPort(dialHost, dialPort), err)
	}

	isProxied := false
	if proxy != nil {
		isProxied = true
		if err := dialViaProxy(ctx, conn, proxy, net.JoinHostPort(host, port)); err != nil {
			conn.Close()
			return nil, err
		}
	}

	key := Key{Scheme: target.Scheme, Authority: net.JoinHostPort(host, port), ProxyIdentity: proxyIdentity}

	if target.Scheme != "https" {
		return &Connected{
			Conn:       conn,
			Key:        key,
			Alpn:       AlpnH1,
			PoisonPill: new(PoisonPill),
			IsProxied:  isProxied,
		}, nil
	}

	tlsCfg := c.TLS
	if tlsCfg.ServerName == "" {
		tlsCfg.ServerName = host
	}
	if len(nextProtos) > 0 {
		tlsCfg.NextProtos = nextProtos
	}
	uConn, alpn, err := handshake(ctx, conn, tlsCfg)
	if err != nil {
		return nil, err
	}
	state := uConn.ConnectionState()
	return &Connected{
		Conn:       uConn,
		Key:        key,
		Alpn:       alpn,
		TLSState:   &state,
		PoisonPill: new(PoisonPill),
		IsProxied:  isProxied,
	}, nil
}

func (c *Connector) dial(ctx context.Context, host, port string) (net.Conn, error) {
	d := &net.Dialer{KeepAlive: c.Options.KeepAlive, Control: c.Options.controlFunc()}
	if c.Options.LocalAddr != "" {
		if addr, err := net.ResolveTCPAddr("tcp", c.Options.LocalAddr); err == nil {
			d.LocalAddr = addr
		}
	}

	addrs, err := c.resolver().Resolve(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		// Let the dialer's own resolution handle it (covers literal IPs
		// and hosts the override table doesn't know about).
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
		if err != nil {
			return nil, err
		}
		c.applySocketOptions(conn)
		return conn, nil
	}

	if c.Options.HappyEyeballs && len(addrs) > 1 {
		conn, err := dialHappyEyeballs(ctx, d, interleave(addrs), port)
		if err == nil {
			c.applySocketOptions(conn)
			return conn, nil
		}
		// Fall through to sequential: a racing failure (e.g. every
		// candidate's context got canceled together) shouldn't be final
		// when a plain sequential attempt might still succeed.
	}

	var lastErr error
	for _, addr := range addrs {
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), port))
		if err != nil {
			lastErr = err
			continue
		}
		c.applySocketOptions(conn)
		return conn, nil
	}
	return nil, lastErr
}

// interleave reorders addrs alternating address families, preferring
// whichever family appeared first, so a racing dial tries v6-then-v4 (or
// vice versa) rather than exhausting one family before trying the other.
func interleave(addrs []netip.Addr) []netip.Addr {
	var a, b []netip.Addr
	for _, addr := range addrs {
		if addr.Is4() || addr.Is4In6() {
			b = append(b, addr)
		} else {
			a = append(a, addr)
		}
	}
	out := make([]netip.Addr, 0, len(addrs))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

// dialHappyEyeballs races connection attempts per RFC 8305: each candidate
// gets a head start before the next one is launched, and the first
// successful connection wins; every other attempt (including ones still in
// flight) is torn down.
func dialHappyEyeballs(ctx context.Context, d *net.Dialer, addrs []netip.Addr, port string) (net.Conn, error) {
	const stagger = 250 * time.Millisecond

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		conn net.Conn
		err  error
	}
	results := make(chan result, len(addrs))

	for i, addr := range addrs {
		delay := time.Duration(i) * stagger
		go func(addr netip.Addr, delay time.Duration) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					results <- result{err: ctx.Err()}
					return
				}
			}
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), port))
			results <- result{conn: conn, err: err}
		}(addr, delay)
	}

	var lastErr error
	for range addrs {
		res := <-results
		if res.err == nil {
			cancel()
			return res.conn, nil
		}
		lastErr = res.err
	}
	return nil, lastErr
}

func (c *Connector) applySocketOptions(conn net.Conn) {
	if !c.Options.NoDelay {
		return
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
}

func (c *Connector) resolver() dns.Resolver {
	if c.Resolver != nil {
		return c.Resolver
	}
	return dns.NewSystemResolver(nil)
}

func defaultPort(scheme string) string {
	if scheme == "https" {
		return strconv.Itoa(443)
	}
	return strconv.Itoa(80)
}
