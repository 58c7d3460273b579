package connect

import "time"

// TCPConnectOptions controls the socket-level behavior of the dial step,
// beyond what net.Dialer exposes through DialContext alone.
type TCPConnectOptions struct {
	// ConnectTimeout bounds TCP connect (and, when TLS is negotiated as
	// part of the same attempt, the handshake too).
	ConnectTimeout time.Duration
	// KeepAlive is passed straight to net.Dialer; zero uses net.Dialer's
	// default keep-alive interval, negative disables keep-alives.
	KeepAlive time.Duration
	// LocalAddr, if set, binds the outbound socket to a specific local
	// address (useful for multi-homed hosts or IP allowlisting).
	LocalAddr string
	// NoDelay disables Nagle's algorithm on the resulting TCP socket.
	NoDelay bool
	// HappyEyeballs enables RFC 8305 dual-stack racing when a host
	// resolves to both IPv4 and IPv6 addresses.
	HappyEyeballs bool
	// ReuseAddr sets SO_REUSEADDR on the outbound socket, letting the
	// connector rebind a local port still in TIME_WAIT — useful under high
	// connection churn against the same peer.
	ReuseAddr bool
	// UserTimeout sets TCP_USER_TIMEOUT: how long unacknowledged data may
	// sit before the kernel gives up on the connection, independent of the
	// keepalive probe schedule. Zero leaves the kernel default.
	UserTimeout time.Duration
	// BindToDevice sets SO_BINDTODEVICE, restricting the socket to a named
	// network interface (e.g. "eth1"). Requires CAP_NET_RAW on Linux; empty
	// leaves routing to the kernel.
	BindToDevice string
	// KeepAliveRetries sets TCP_KEEPCNT: the number of unacknowledged
	// keepalive probes sent before the kernel considers the connection
	// dead. Zero leaves the kernel default.
	KeepAliveRetries int
}

// DefaultTCPConnectOptions matches the teacher's transport defaults
// (30s dial timeout, 30s keepalive).
func DefaultTCPConnectOptions() TCPConnectOptions {
	return TCPConnectOptions{
		ConnectTimeout: 30 * time.Second,
		KeepAlive:      30 * time.Second,
		NoDelay:        true,
		HappyEyeballs:  true,
	}
}
