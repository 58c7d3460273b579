package httpcore

import (
	"bytes"
	"io"
)

// Body is a request body. Unlike io.Reader alone, it knows whether it can
// be replayed — redirect-following and HTTP/2 retry need to rewind a body
// before resending a request, and a body read from a live stream (a pipe,
// a network connection, stdin) cannot be rewound.
type Body interface {
	// Reader returns a fresh io.ReadCloser for the body's content. For a
	// cloneable body this may be called more than once.
	Reader() io.ReadCloser
	// Len reports the body size in bytes, or -1 if unknown.
	Len() int64
	// Cloneable reports whether Reader can be called again after the
	// first read has been consumed.
	Cloneable() bool
}

type emptyBody struct{}

func (emptyBody) Reader() io.ReadCloser { return io.NopCloser(bytes.NewReader(nil)) }
func (emptyBody) Len() int64            { return 0 }
func (emptyBody) Cloneable() bool       { return true }

// EmptyBody is the canonical body of a request with no payload.
var EmptyBody Body = emptyBody{}

type bytesBody struct {
	data []byte
}

func (b *bytesBody) Reader() io.ReadCloser { return io.NopCloser(bytes.NewReader(b.data)) }
func (b *bytesBody) Len() int64            { return int64(len(b.data)) }
func (b *bytesBody) Cloneable() bool       { return true }

// NewBytesBody wraps a fixed byte slice as a cloneable Body.
func NewBytesBody(data []byte) Body { return &bytesBody{data: data} }

// NewStringBody wraps a string as a cloneable Body.
func NewStringBody(s string) Body { return &bytesBody{data: []byte(s)} }

type streamBody struct {
	r   io.ReadCloser
	len int64
}

func (s *streamBody) Reader() io.ReadCloser { return s.r }
func (s *streamBody) Len() int64            { return s.len }
func (s *streamBody) Cloneable() bool       { return false }

// NewStreamBody wraps an io.Reader (closed via io.NopCloser if it is not
// already an io.ReadCloser) as a non-cloneable, streamed Body. length may be
// -1 if unknown. A streamed body disables transparent retry and redirect
// replay for the request it's attached to (spec behavior, not a bug): once
// consumed there is nothing left to resend.
func NewStreamBody(r io.Reader, length int64) Body {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &streamBody{r: rc, len: length}
}

// clone returns a cloneable body itself and true (its Reader yields a fresh
// reader on every call), or (nil, false) if the body cannot be replayed.
func clone(b Body) (Body, bool) {
	if b == nil {
		return nil, true
	}
	if !b.Cloneable() {
		return nil, false
	}
	return b, true
}
