package httpcore

import (
	"context"
	"time"
)

// startTimeoutLayer bounds the entire request — dial through to the final
// response headers — with a single deadline. It is the outermost layer so
// it covers every other layer's work too.
func startTimeoutLayer(d time.Duration) Layer {
	if d <= 0 {
		return func(next Doer) Doer { return next }
	}
	return func(next Doer) Doer {
		return func(ctx context.Context, req *Request) (*Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			resp, err := next(ctx, req)
			if err != nil && ctx.Err() != nil {
				return nil, timeoutError(KindRequest, req.URL, ctx.Err())
			}
			return resp, err
		}
	}
}
