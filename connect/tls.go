package connect

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	utls "github.com/refraction-networking/utls"
)

// TLSConfig controls the handshake step. ClientHelloID selects a uTLS
// fingerprint preset (e.g. utls.HelloChrome_Auto); when Spec is non-nil it
// takes precedence and is applied verbatim via uConn.ApplyPreset, letting an
// EmulationProvider supply an exact captured ClientHello.
type TLSConfig struct {
	ServerName         string
	InsecureSkipVerify bool
	NextProtos         []string
	ClientHelloID      utls.ClientHelloID
	Spec               *utls.ClientHelloSpec
	RootCAs            *tls.Config // only RootCAs/Certificates are read from this, if set
}

// handshake performs a uTLS ClientHello (fingerprinted per cfg) over conn
// and returns the negotiated ALPN protocol alongside the raw TLS
// connection. conn is consumed: on error it has already been closed.
func handshake(ctx context.Context, conn net.Conn, cfg TLSConfig) (*utls.UConn, Alpn, error) {
	uCfg := &utls.Config{
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		NextProtos:         cfg.NextProtos,
	}
	if cfg.RootCAs != nil {
		uCfg.RootCAs = cfg.RootCAs.RootCAs
		uCfg.Certificates = cfg.RootCAs.Certificates
	}

	helloID := cfg.ClientHelloID
	if helloID == (utls.ClientHelloID{}) {
		helloID = utls.HelloGolang
	}

	uConn := utls.UClient(conn, uCfg, helloID)
	if cfg.Spec != nil {
		if err := uConn.ApplyPreset(cfg.Spec); err != nil {
			conn.Close()
			return nil, AlpnNone, fmt.Errorf("apply tls client hello spec: %w", err)
		}
	}

	if err := uConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, AlpnNone, fmt.Errorf("tls handshake: %w", err)
	}

	alpn := AlpnH1
	if uConn.ConnectionState().NegotiatedProtocol == "h2" {
		alpn = AlpnH2
	}
	return uConn, alpn, nil
}
