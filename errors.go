package httpcore

import (
	"errors"
	"fmt"
	"net/url"
)

// Kind classifies where in the pipeline an Error originated.
type Kind int

const (
	// KindBuilder reports a malformed request the client rejected before
	// ever touching the network (bad URL, invalid method, ...).
	KindBuilder Kind = iota
	// KindRequest reports a transport-level failure dispatching the
	// request (dial, TLS, pool, write).
	KindRequest
	// KindRedirect reports a redirect the follow-redirect layer refused
	// to take (policy denial, loop, cross-scheme downgrade).
	KindRedirect
	// KindBody reports a failure reading the response body.
	KindBody
	// KindDecode reports a content-decoding failure (unsupported or
	// malformed Content-Encoding).
	KindDecode
	// KindTimeout names the timeout category. The package's own timeout
	// layers do not set it as an Error's Kind: a start timeout is reported
	// as KindRequest and a body read timeout as KindBody, and both wrap
	// ErrTimeout so errors.Is identifies them.
	KindTimeout
	// KindStatus reports a response status the caller asked
	// Response.ErrorForStatus to treat as an error.
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindBuilder:
		return "builder"
	case KindRequest:
		return "request"
	case KindRedirect:
		return "redirect"
	case KindBody:
		return "body"
	case KindDecode:
		return "decode"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// ErrTimeout is the sentinel wrapped by the Error of a start timeout
// (KindRequest) or a body read timeout (KindBody), so callers can test with
// errors.Is(err, httpcore.ErrTimeout) regardless of which phase the timeout
// interrupted.
var ErrTimeout = errors.New("httpcore: timeout")

// Error is the error type returned by every exported operation in this
// package. It always names the Kind of failure and, when the failure
// occurred mid-request, the URL involved.
type Error struct {
	Kind Kind
	URL  *url.URL
	Err  error
}

func (e *Error) Error() string {
	if e.URL != nil {
		return fmt.Sprintf("httpcore: %s %s: %v", e.Kind, e.URL.Redacted(), e.Err)
	}
	return fmt.Sprintf("httpcore: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, u *url.URL, err error) *Error {
	return &Error{Kind: kind, URL: u, Err: err}
}

func timeoutError(kind Kind, u *url.URL, err error) *Error {
	return newError(kind, u, fmt.Errorf("%w: %v", ErrTimeout, err))
}
