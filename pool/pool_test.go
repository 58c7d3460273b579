package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	open   bool
	shared bool
	closed int
}

func (c *fakeConn) IsOpen() bool   { return c.open }
func (c *fakeConn) CanShare() bool { return c.shared }
func (c *fakeConn) Close() error   { c.closed++; c.open = false; return nil }

func TestCheckoutMissThenConnected(t *testing.T) {
	p := New[*fakeConn](Config{})
	conn, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.True(t, dial)
	assert.Nil(t, conn.pool)

	c := &fakeConn{open: true, shared: false}
	pooled := p.Connected("a", c)
	assert.Equal(t, Unique, pooled.Kind)
	assert.Same(t, c, pooled.Value)
}

func TestUniqueReleaseThenReuse(t *testing.T) {
	p := New[*fakeConn](Config{})
	c := &fakeConn{open: true}
	pooled := p.Connected("a", c)
	require.NoError(t, pooled.Close())

	conn, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.False(t, dial)
	assert.Same(t, c, conn.Value)
}

func TestSharedConnectionServesConcurrentCheckouts(t *testing.T) {
	p := New[*fakeConn](Config{})
	c := &fakeConn{open: true, shared: true}
	first := p.Connected("a", c)
	assert.Equal(t, Shared, first.Kind)

	second, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.False(t, dial)
	assert.Equal(t, Shared, second.Kind)
	assert.Same(t, c, second.Value)

	// Close on a Shared reservation must not evict it from the idle list.
	require.NoError(t, second.Close())
	third, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.False(t, dial)
	assert.Same(t, c, third.Value)
}

func TestWaitersAllServedOnConnected(t *testing.T) {
	p := New[*fakeConn](Config{})
	_, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	require.True(t, dial)

	type result struct {
		order int
		err   error
	}
	results := make(chan result, 3)
	for i := 0; i < 3; i++ {
		i := i
		go func() {
			_, _, err := p.Checkout(context.Background(), "a", true)
			results <- result{order: i, err: err}
		}()
	}
	time.Sleep(20 * time.Millisecond) // let the goroutines enqueue as waiters

	p.Connected("a", &fakeConn{open: true, shared: true})

	for i := 0; i < 3; i++ {
		r := <-results
		assert.NoError(t, r.err)
	}
}

func TestConnectFailedPropagatesToWaiters(t *testing.T) {
	p := New[*fakeConn](Config{})
	_, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	require.True(t, dial)

	errCh := make(chan error, 1)
	go func() {
		_, _, err := p.Checkout(context.Background(), "a", true)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)

	p.ConnectFailed("a", assertErr)
	require.ErrorIs(t, <-errCh, assertErr)
}

var assertErr = errContext("dial failed")

type errContext string

func (e errContext) Error() string { return string(e) }

func TestMaxIdlePerKeyTailDropsIncoming(t *testing.T) {
	p := New[*fakeConn](Config{MaxIdlePerKey: 1})
	first := &fakeConn{open: true}
	second := &fakeConn{open: true}
	p.Connected("a", first).Close()
	p.Connected("a", second).Close()

	// At capacity, the newly released connection is the one dropped; the
	// existing idle entry is left alone.
	assert.Equal(t, 1, second.closed)
	assert.Equal(t, 0, first.closed)
	conn, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.False(t, dial)
	assert.Same(t, first, conn.Value)
}

func TestMaxKeysEvictsLeastRecentlyUsedKey(t *testing.T) {
	p := New[*fakeConn](Config{MaxKeys: 1})
	a := &fakeConn{open: true}
	b := &fakeConn{open: true}
	p.Connected("a", a).Close()
	p.Connected("b", b).Close()

	assert.Equal(t, 1, a.closed, "key a should have been evicted once key b's capacity-1 LRU filled")
	_, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.True(t, dial)
}

func TestCheckoutContextCancelStopsWaiting(t *testing.T) {
	p := New[*fakeConn](Config{})
	_, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	require.True(t, dial)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.Checkout(ctx, "a", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnsharedCheckoutNeverSingleFlights(t *testing.T) {
	p := New[*fakeConn](Config{})
	_, dial, err := p.Checkout(context.Background(), "a", false)
	require.NoError(t, err)
	require.True(t, dial, "first miss always dials")

	// A concurrent HTTP/1-style (share=false) checkout for the same key,
	// while the first dial is still outstanding, must dial its own
	// connection rather than park behind the first — HTTP/1 never
	// single-flights.
	_, dial, err = p.Checkout(context.Background(), "a", false)
	require.NoError(t, err)
	assert.True(t, dial)
}

func TestSharedCheckoutSingleFlightsConcurrentMisses(t *testing.T) {
	p := New[*fakeConn](Config{})
	_, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	require.True(t, dial)

	errCh := make(chan error, 1)
	go func() {
		_, dial, err := p.Checkout(context.Background(), "a", true)
		if dial {
			errCh <- assertErr // signal failure via the error channel
			return
		}
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	p.Connected("a", &fakeConn{open: true, shared: true})
	require.NoError(t, <-errCh)
}

// noopExecutor never runs the sweeper loop, isolating Checkout's own
// idle-timeout expiration check from the background sweeper's.
type noopExecutor struct{}

func (noopExecutor) Execute(func()) {}

func TestCheckoutExpiresIdleEntryOnScan(t *testing.T) {
	p := New[*fakeConn](Config{IdleTimeout: time.Millisecond, Executor: noopExecutor{}})
	c := &fakeConn{open: true}
	p.Connected("a", c).Close()

	time.Sleep(5 * time.Millisecond)

	conn, dial, err := p.Checkout(context.Background(), "a", true)
	require.NoError(t, err)
	assert.True(t, dial, "an idle entry past its timeout must be dropped rather than reused")
	assert.Nil(t, conn.pool)
	assert.Equal(t, 1, c.closed)
}

func TestIdleSweeperExpiresOldConnections(t *testing.T) {
	p := New[*fakeConn](Config{IdleTimeout: time.Millisecond})
	c := &fakeConn{open: true}
	p.Connected("a", c).Close()

	deadline := time.Now().Add(time.Second)
	for c.closed == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 1, c.closed)
}
