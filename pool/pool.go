// Package pool implements the connection pool shared by every transport
// client: a per-key idle list, FIFO waiters for connections already being
// established, and single-flight dialing so concurrent requests to the same
// host never open more HTTP/2 connections than necessary.
package pool

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Poolable is anything the pool can hold: a live HTTP/1 connection or an
// HTTP/2 ClientConn.
type Poolable interface {
	// IsOpen reports whether the connection is still usable. A closed or
	// poisoned connection is never reinserted into the idle list.
	IsOpen() bool
	// CanShare reports whether multiple checkouts may use the value
	// concurrently (true for HTTP/2, false for HTTP/1.1).
	CanShare() bool
	// Close releases any resources held by the connection.
	Close() error
}

// Kind distinguishes how a Pooled value was reserved.
type Kind int

const (
	// Unique means the checkout has sole use of the connection; Close
	// returns it to the idle list.
	Unique Kind = iota
	// Shared means the connection may be (and likely is) in use by other
	// checkouts at the same time; Close is a no-op, the pool keeps the
	// connection in its idle list until it closes itself.
	Shared
)

// Pooled is a checked-out connection. Callers must call Close when done
// with it.
type Pooled[T Poolable] struct {
	Value T
	Kind  Kind

	pool *Pool[T]
	key  string
	once sync.Once
}

// Close returns a Unique connection to the pool's idle list (or discards it,
// if it's no longer open); it does nothing for a Shared connection, which
// the pool already tracks independently of this checkout.
func (p *Pooled[T]) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	p.once.Do(func() {
		if p.Kind == Unique {
			p.pool.release(p.key, p.Value)
		}
	})
	return nil
}

type idleEntry[T Poolable] struct {
	value  T
	idleAt time.Time
}

type waitResult[T Poolable] struct {
	value T
	err   error
}

type waiter[T Poolable] struct {
	ch chan waitResult[T]
}

// Config controls pool sizing and the background idle sweeper.
type Config struct {
	// MaxIdlePerKey bounds idle HTTP/1 connections retained per key. Zero
	// means unbounded.
	MaxIdlePerKey int
	// MaxKeys bounds the number of distinct keys the pool will track idle
	// connections for; the least recently used key's idle connections are
	// closed and evicted once this is exceeded. Zero means unbounded.
	MaxKeys int
	// IdleTimeout is how long an idle connection may sit before the
	// sweeper closes it. Zero disables the sweeper.
	IdleTimeout time.Duration
	Sleeper     Sleeper
	Executor    Executor
}

// Sleeper abstracts wall-clock waiting for the idle sweeper.
type Sleeper interface {
	Sleep(d time.Duration) <-chan time.Time
}

// Executor runs the sweeper's background loop.
type Executor interface {
	Execute(fn func())
}

// Pool is a connection pool keyed by an opaque string (typically
// scheme+authority+proxy identity — see connect.Key).
type Pool[T Poolable] struct {
	cfg Config

	mu         sync.Mutex
	idle       map[string][]idleEntry[T]
	connecting map[string]struct{}
	waiters    map[string][]waiter[T]
	keys       *lru.Cache[string, struct{}]
	closed     bool

	stop chan struct{}
}

// New creates a Pool. If cfg.IdleTimeout is nonzero, the sweeper goroutine
// is started immediately (via cfg.Executor, or a plain goroutine if nil).
func New[T Poolable](cfg Config) *Pool[T] {
	p := &Pool[T]{
		cfg:        cfg,
		idle:       make(map[string][]idleEntry[T]),
		connecting: make(map[string]struct{}),
		waiters:    make(map[string][]waiter[T]),
		stop:       make(chan struct{}),
	}
	if cfg.MaxKeys > 0 {
		keys, _ := lru.NewWithEvict[string, struct{}](cfg.MaxKeys, func(key string, _ struct{}) {
			p.evictKeyLocked(key)
		})
		p.keys = keys
	}
	if cfg.IdleTimeout > 0 {
		p.startSweeper()
	}
	return p
}

// evictKeyLocked closes and drops every idle entry under key. Called from
// the LRU's eviction callback, which golang-lru invokes synchronously from
// within Add/Get while the caller already holds p.mu — so it must not
// re-lock.
func (p *Pool[T]) evictKeyLocked(key string) {
	for _, e := range p.idle[key] {
		e.value.Close()
	}
	delete(p.idle, key)
}

func (p *Pool[T]) touchKey(key string) {
	if p.keys != nil {
		p.keys.Add(key, struct{}{})
	}
}

// Checkout looks for an idle or in-flight connection for key. If one is
// found (or becomes available before ctx is done), it is returned with
// dial=false. If none exists, the behavior on a miss depends on share: when
// share is true (the caller knows this dial, if it succeeds, will produce a
// connection other callers can multiplex — i.e. an HTTP/2 dial) and nobody
// else is currently dialing key, Checkout returns dial=true and the key is
// recorded in connecting so concurrent same-key callers park as waiters
// instead of each opening their own connection. When share is false (an
// HTTP/1 dial, which never multiplexes), every miss independently returns
// dial=true — HTTP/1 connections to the same host are expected to be
// established concurrently, not single-flighted.
func (p *Pool[T]) Checkout(ctx context.Context, key string, share bool) (conn Pooled[T], dial bool, err error) {
	p.mu.Lock()
	entries := p.idle[key]
	for len(entries) > 0 {
		e := entries[len(entries)-1]
		expired := p.cfg.IdleTimeout > 0 && time.Since(e.idleAt) >= p.cfg.IdleTimeout
		if !e.value.IsOpen() || expired {
			e.value.Close()
			entries = entries[:len(entries)-1]
			p.idle[key] = entries
			continue
		}
		if e.value.CanShare() {
			p.mu.Unlock()
			return p.wrap(key, e.value, Shared), false, nil
		}
		p.idle[key] = entries[:len(entries)-1]
		p.mu.Unlock()
		return p.wrap(key, e.value, Unique), false, nil
	}

	if !share {
		p.mu.Unlock()
		return Pooled[T]{}, true, nil
	}

	if _, inFlight := p.connecting[key]; inFlight {
		w := waiter[T]{ch: make(chan waitResult[T], 1)}
		p.waiters[key] = append(p.waiters[key], w)
		p.mu.Unlock()
		select {
		case res := <-w.ch:
			if res.err != nil {
				return Pooled[T]{}, false, res.err
			}
			return p.wrap(key, res.value, Shared), false, nil
		case <-ctx.Done():
			p.dropWaiter(key, w)
			return Pooled[T]{}, false, ctx.Err()
		}
	}

	p.connecting[key] = struct{}{}
	p.mu.Unlock()
	return Pooled[T]{}, true, nil
}

func (p *Pool[T]) dropWaiter(key string, target waiter[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ws := p.waiters[key]
	for i, w := range ws {
		if w.ch == target.ch {
			p.waiters[key] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(p.waiters[key]) == 0 {
		delete(p.waiters, key)
	}
}

// Connected reports that a dial started by Checkout (dial=true) succeeded.
// It releases every waiter queued for key, in FIFO order, and returns the
// checkout the original caller should use.
func (p *Pool[T]) Connected(key string, value T) Pooled[T] {
	p.mu.Lock()
	delete(p.connecting, key)
	kind := Unique
	if value.CanShare() {
		kind = Shared
		p.idle[key] = append(p.idle[key], idleEntry[T]{value: value, idleAt: time.Now()})
		p.touchKey(key)
	}
	waiters := p.waiters[key]
	delete(p.waiters, key)
	p.mu.Unlock()

	for _, w := range waiters {
		w.ch <- waitResult[T]{value: value}
	}
	return p.wrap(key, value, kind)
}

// ConnectFailed reports that a dial started by Checkout (dial=true) failed.
// Every waiter queued for key receives err.
func (p *Pool[T]) ConnectFailed(key string, err error) {
	p.mu.Lock()
	delete(p.connecting, key)
	waiters := p.waiters[key]
	delete(p.waiters, key)
	p.mu.Unlock()

	for _, w := range waiters {
		w.ch <- waitResult[T]{err: err}
	}
}

func (p *Pool[T]) wrap(key string, value T, kind Kind) Pooled[T] {
	return Pooled[T]{Value: value, Kind: kind, pool: p, key: key}
}

// release returns a Unique connection to the idle list, subject to
// MaxIdlePerKey. A closed connection is simply dropped.
func (p *Pool[T]) release(key string, value T) {
	if !value.IsOpen() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		value.Close()
		return
	}

	entries := p.idle[key]
	if p.cfg.MaxIdlePerKey > 0 && len(entries) >= p.cfg.MaxIdlePerKey {
		// At capacity: the incoming connection is the one dropped, not an
		// existing idle entry — tail-drop, not LRU eviction.
		value.Close()
		return
	}
	p.idle[key] = append(entries, idleEntry[T]{value: value, idleAt: time.Now()})
	p.touchKey(key)
}

// Close stops the sweeper and closes every idle connection. In-flight
// checkouts are not interrupted.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stop)
	for _, entries := range p.idle {
		for _, e := range entries {
			e.value.Close()
		}
	}
	p.idle = make(map[string][]idleEntry[T])
	p.mu.Unlock()
	return nil
}

func (p *Pool[T]) startSweeper() {
	sleeper := p.cfg.Sleeper
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	run := func() {
		const minTick = 5 * time.Millisecond
		for {
			wait := p.sweepOnce()
			if wait <= 0 {
				wait = p.cfg.IdleTimeout
			}
			select {
			case <-sleeper.Sleep(wait):
			case <-p.stop:
				return
			}
			_ = minTick
		}
	}
	if p.cfg.Executor != nil {
		p.cfg.Executor.Execute(run)
	} else {
		go run()
	}
}

// sweepOnce closes every idle entry older than IdleTimeout and returns the
// duration until the next entry would expire (so the sweeper's timer can
// re-anchor instead of polling on a fixed tick).
func (p *Pool[T]) sweepOnce() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	var next time.Duration = p.cfg.IdleTimeout
	for key, entries := range p.idle {
		kept := entries[:0]
		for _, e := range entries {
			age := now.Sub(e.idleAt)
			if age >= p.cfg.IdleTimeout {
				e.value.Close()
				continue
			}
			kept = append(kept, e)
			if remain := p.cfg.IdleTimeout - age; remain < next {
				next = remain
			}
		}
		if len(kept) == 0 {
			delete(p.idle, key)
		} else {
			p.idle[key] = kept
		}
	}
	return next
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) <-chan time.Time { return time.After(d) }
