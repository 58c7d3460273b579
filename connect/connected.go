// Package connect implements the dial pipeline: resolve a host, open a TCP
// connection with the requested socket options, negotiate a proxy if one is
// configured, and perform the TLS/ALPN handshake that decides whether the
// resulting connection speaks HTTP/1.1 or HTTP/2.
package connect

import (
	"net"
	"sync/atomic"

	utls "github.com/refraction-networking/utls"
)

// Key identifies a pool entry: same scheme, same authority, same proxy
// identity share a connection; anything else dials its own.
type Key struct {
	Scheme        string
	Authority     string
	ProxyIdentity string
}

// Alpn records which protocol a TLS handshake negotiated.
type Alpn int

const (
	AlpnNone Alpn = iota
	AlpnH1
	AlpnH2
)

// PoisonPill lets a consumer (the HTTP/1 adapter in the root package poisons
// a connection whose round trip failed) mark a connection so the pool never
// hands it out again, without needing to synchronously tear down whatever
// else might still be using it.
type PoisonPill struct {
	poisoned atomic.Bool
}

// Poison marks the connection unusable for future checkouts.
func (p *PoisonPill) Poison() { p.poisoned.Store(true) }

// Poisoned reports whether Poison has been called.
func (p *PoisonPill) Poisoned() bool { return p.poisoned.Load() }

// Connected describes a freshly established connection and how it should be
// treated by the pool and the transport client.
type Connected struct {
	Conn       net.Conn
	Key        Key
	Alpn       Alpn
	TLSState   *utls.ConnectionState
	PoisonPill *PoisonPill
	IsProxied  bool
}

// CanShare reports whether the connection negotiated HTTP/2 and may
// therefore be multiplexed across concurrent requests.
func (c *Connected) CanShare() bool { return c.Alpn == AlpnH2 }
