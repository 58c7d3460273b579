package httpcore

// Version is an HTTP version preference: the client's default, or a
// per-request override stored in Request.Extensions under ExtKeyVersion.
// It governs both which protocols TLS advertises via ALPN (connect/tls.go)
// and whether the pool single-flights concurrent dials to the same key
// (only an HTTP/2-forced dial is single-flighted — see pool.Pool.Checkout).
type Version int

const (
	// VersionAuto lets ALPN negotiate h2 or http/1.1; concurrent dials to
	// the same key are never single-flighted, since the protocol isn't
	// known in advance.
	VersionAuto Version = iota
	// VersionHTTP1Only forces http/1.1, advertising no h2 ALPN token.
	VersionHTTP1Only
	// VersionHTTP2Only forces h2: TLS advertises only the h2 ALPN token,
	// and the pool single-flights concurrent dials to the same key so N
	// simultaneous requests to a host share one handshake.
	VersionHTTP2Only
)

// ExtKeyVersion lets a single request override the client's configured
// version preference. Set it on Request.Extensions before dispatch.
var ExtKeyVersion = NewExtensionKey[Version]("http.version")

func (v Version) alpnProtos() []string {
	switch v {
	case VersionHTTP1Only:
		return []string{"http/1.1"}
	case VersionHTTP2Only:
		return []string{"h2"}
	default:
		return []string{"h2", "http/1.1"}
	}
}

// resolveVersion applies the request-forced version > client preference
// order from spec §4.4.
func resolveVersion(req *Request, clientDefault Version) Version {
	if v, ok := Get(req.Extensions, ExtKeyVersion); ok {
		return v
	}
	return clientDefault
}
