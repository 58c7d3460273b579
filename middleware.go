package httpcore

import "context"

// Doer performs one request, returning its response or an error. It is the
// unit every layer of the stack wraps: the base transport client is a
// Doer, and every Layer takes one Doer and returns another.
type Doer func(ctx context.Context, req *Request) (*Response, error)

// Layer wraps a Doer with additional behavior, producing a new Doer that
// delegates to it. Layers compose innermost-first: chain(base, a, b) calls
// a's wrapper around b's wrapper around base, so a request flows
// a -> b -> base and a response flows back base -> b -> a.
type Layer func(next Doer) Doer

// chain applies layers around base in order, returning the single composed
// Doer the client dispatches through. There is always exactly one such
// closure per Client — Go has no monomorphic/boxed split to choose between.
func chain(base Doer, layers ...Layer) Doer {
	d := base
	for i := len(layers) - 1; i >= 0; i-- {
		d = layers[i](d)
	}
	return d
}
