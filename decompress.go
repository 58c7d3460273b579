package httpcore

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

const defaultAcceptEncoding = "gzip, deflate, br"

// decompressLayer advertises Accept-Encoding (unless the caller already set
// one, or is requesting a byte Range, where transparent decompression would
// make the range meaningless) and transparently decodes a matching
// Content-Encoding on the way back, stripping the header and the
// now-inapplicable Content-Length. Ported from the teacher's
// http2.DecodeResponse / utils.DecodeReader.
func decompressLayer(next Doer) Doer {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if req.Header.Get("Accept-Encoding") == "" && req.Header.Get("Range") == "" {
			req.Header.Set("Accept-Encoding", defaultAcceptEncoding)
		}

		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}

		encoding := resp.Header.Get("Content-Encoding")
		if encoding == "" {
			return resp, nil
		}

		decoded, err := decodeBody(encoding, resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, newError(KindDecode, req.URL, err)
		}
		resp.Body = decoded
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		return resp, nil
	}
}

type decodedBody struct {
	io.Reader
	orig io.ReadCloser
}

func (d *decodedBody) Close() error { return d.orig.Close() }

// decodeBody wraps body with decoders for the encodings named in the
// Content-Encoding header. The header lists encodings in the order they were
// applied, so they are undone in reverse order (RFC 7231 §3.1.2.2).
func decodeBody(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	var r io.Reader = body
	encodings := strings.Split(encoding, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		encode := encodings[i]
		switch strings.TrimSpace(encode) {
		case "gzip":
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			r = gz
		case "deflate":
			zr, err := zlib.NewReader(r)
			if err != nil {
				return nil, err
			}
			r = zr
		case "br":
			r = brotli.NewReader(r)
		case "identity", "":
			// no-op
		default:
			return nil, fmt.Errorf("unsupported content-encoding %q", encode)
		}
	}
	return &decodedBody{Reader: r, orig: body}, nil
}
