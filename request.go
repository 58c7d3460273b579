package httpcore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
)

// Request is this package's request value. It is built once by NewRequest
// and then owned by the dispatch pipeline,
// which may clone it for a retry or a redirect hop.
type Request struct {
	Method     string
	URL        *url.URL
	Header     http.Header
	Order      OrderedHeaders
	Body       Body
	Extensions *Extensions
}

// NewRequest builds a Request from a method, an absolute URL, and an
// optional body. body may be nil, a Body, a string, a []byte, an
// io.Reader, a fmt.Stringer, or a struct/map/slice/array to be marshaled as
// JSON (in which case a Content-Type of application/json is set unless the
// caller already provided one via headers).
func NewRequest(method, rawURL string, body any, headers map[string]string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError(KindBuilder, nil, fmt.Errorf("parse url: %w", err))
	}
	if !u.IsAbs() {
		return nil, newError(KindBuilder, u, fmt.Errorf("url %q is not absolute", rawURL))
	}

	h := make(http.Header, len(headers)+1)
	for k, v := range headers {
		h.Set(k, v)
	}

	reqBody, err := coerceBody(body, h)
	if err != nil {
		return nil, newError(KindBuilder, u, err)
	}

	if u.User != nil {
		user := u.User.Username()
		pass, _ := u.User.Password()
		if h.Get("Authorization") == "" {
			req := &http.Request{}
			req.SetBasicAuth(user, pass)
			h.Set("Authorization", req.Header.Get("Authorization"))
		}
		u.User = nil
	}

	return &Request{
		Method:     method,
		URL:        u,
		Header:     h,
		Body:       reqBody,
		Extensions: NewExtensions(),
	}, nil
}

// coerceBody converts body into a Body, mutating headers with a
// Content-Type default when JSON-encoding a struct-shaped value.
func coerceBody(body any, headers http.Header) (Body, error) {
	if body == nil {
		return EmptyBody, nil
	}
	switch v := body.(type) {
	case Body:
		return v, nil
	case string:
		return NewStringBody(v), nil
	case []byte:
		return NewBytesBody(v), nil
	case io.Reader:
		return NewStreamBody(v, -1), nil
	case fmt.Stringer:
		return NewStringBody(v.String()), nil
	}

	switch reflect.ValueOf(body).Kind() {
	case reflect.Struct, reflect.Map, reflect.Array, reflect.Slice:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		if headers.Get("Content-Type") == "" {
			headers.Set("Content-Type", "application/json")
		}
		return NewBytesBody(encoded), nil
	default:
		return nil, fmt.Errorf("unsupported body type %T", body)
	}
}

// Clone returns a deep-enough copy of the request for a retry or redirect
// hop: Header and Extensions are copied so middleware can mutate them
// without affecting the original, and Body is replayed via clone (the
// result is (nil, false) if the body cannot be replayed).
func (r *Request) Clone() (req *Request, ok bool) {
	body, ok := clone(r.Body)
	if !ok {
		return nil, false
	}
	return r.cloneHeaders(body), true
}

// cloneDroppingBody copies the request the same way Clone does, except the
// new request's Body is always EmptyBody — for redirect hops (303, and
// 301/302 turning a POST into a GET) that never replay the original body,
// so its cloneability is irrelevant.
func (r *Request) cloneDroppingBody() *Request {
	return r.cloneHeaders(EmptyBody)
}

func (r *Request) cloneHeaders(body Body) *Request {
	h := make(http.Header, len(r.Header))
	for k, vv := range r.Header {
		cp := make([]string, len(vv))
		copy(cp, vv)
		h[k] = cp
	}
	u := new(url.URL)
	*u = *r.URL
	return &Request{
		Method:     r.Method,
		URL:        u,
		Header:     h,
		Order:      r.Order.Clone(),
		Body:       body,
		Extensions: r.Extensions.Clone(),
	}
}
