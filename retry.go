package httpcore

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrRefusedStream marks an error as safe to retry: the server tore down
// the HTTP/2 stream before sending any response bytes, so replaying the
// request (if its body can be replayed) is safe.
var ErrRefusedStream = errors.New("httpcore: stream refused before response")

// retryLayer replays a request up to maxRetries times when the transport
// reports ErrRefusedStream and the request body can be cloned. Ported from
// the teacher's http2/patch.go Transport.roundTrip backoff loop.
func retryLayer(maxRetries int, sleeper Sleeper) Layer {
	if maxRetries <= 0 {
		return func(next Doer) Doer { return next }
	}
	if sleeper == nil {
		sleeper = DefaultSleeper
	}
	return func(next Doer) Doer {
		return func(ctx context.Context, req *Request) (*Response, error) {
			attempt := req
			for retry := 0; ; retry++ {
				resp, err := next(ctx, attempt)
				if err == nil || !errors.Is(err, ErrRefusedStream) || retry >= maxRetries {
					return resp, err
				}

				replay, ok := attempt.Clone()
				if !ok {
					return resp, err
				}

				backoff := time.Duration(1<<uint(retry)) * 10 * time.Millisecond
				backoff += time.Duration(rand.Int63n(int64(backoff/2 + 1)))
				select {
				case <-sleeper.Sleep(backoff):
				case <-ctx.Done():
					return nil, ctx.Err()
				}

				attempt = replay
			}
		}
	}
}
