package httpcore

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Response is this package's response value, returned from Client.Do.
type Response struct {
	StatusCode    int
	Proto         string
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64 // -1 if unknown
	URL           *url.URL
	Extensions    *Extensions
}

// Status returns "200 OK"-style text for the response's status code.
func (r *Response) Status() string {
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}

// ErrorForStatus returns an *Error of KindStatus if r.StatusCode is >= 400,
// nil otherwise. It is never called implicitly — callers opt in.
func (r *Response) ErrorForStatus() error {
	if r.StatusCode < 400 {
		return nil
	}
	return newError(KindStatus, r.URL, &StatusError{Code: r.StatusCode, Status: r.Status()})
}

// StatusError is the underlying cause wrapped by an ErrorForStatus Error.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return e.Status }

func fromHTTPResponse(res *http.Response) *Response {
	return &Response{
		StatusCode:    res.StatusCode,
		Proto:         res.Proto,
		Header:        res.Header,
		Body:          res.Body,
		ContentLength: res.ContentLength,
		URL:           res.Request.URL,
		Extensions:    NewExtensions(),
	}
}
