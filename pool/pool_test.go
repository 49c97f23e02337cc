package pool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sumyiren/neo4rs-go/pool"
)

type fakeConn struct {
	id     int
	alive  bool
	failed bool
}

func (c *fakeConn) IsAlive() bool              { return c.alive }
func (c *fakeConn) IsFailed() bool             { return c.failed }
func (c *fakeConn) Reset(context.Context) error { return nil }

func newTestPool(t *testing.T, maxConns int32) (*pool.Pool[*fakeConn], *int) {
	t.Helper()
	n := 0
	p, err := pool.New(&pool.Config[*fakeConn]{
		Constructor: func(ctx context.Context) (*fakeConn, error) {
			n++
			return &fakeConn{id: n, alive: true}, nil
		},
		Destructor: func(*fakeConn) {},
		MaxConns:   maxConns,
	})
	require.NoError(t, err)
	return p, &n
}

func TestAcquireConstructsUpToMaxConns(t *testing.T) {
	p, constructed := newTestPool(t, 2)
	defer p.Close()

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, *constructed)
	assert.NotEqual(t, r1.Value().id, r2.Value().id)
}

func TestReleaseReturnsAliveConnToIdle(t *testing.T) {
	p, constructed := newTestPool(t, 1)
	defer p.Close()

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r1.Release()

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, *constructed, "the released connection should be reused, not reconstructed")
	assert.Equal(t, r1.Value().id, r2.Value().id)
}

func TestReleaseDestroysDeadConnection(t *testing.T) {
	p, constructed := newTestPool(t, 1)
	defer p.Close()

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r1.Value().alive = false
	r1.Release()

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, *constructed, "a dead connection must be destroyed, forcing a new construction")
	assert.NotEqual(t, r1.Value().id, r2.Value().id)
}

func TestAcquireSkipsFailedConnectionsFromAcquireAllIdle(t *testing.T) {
	p, _ := newTestPool(t, 1)
	defer p.Close()

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r1.Release()

	idle := p.AcquireAllIdle()
	require.Len(t, idle, 1)
	idle[0].Value().failed = true
	idle[0].Release()

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, r1.Value().id, r2.Value().id, "a FAILED connection must never be handed back out")
}

// TestConcurrentAcquireReleaseNeverExceedsMaxConns drives many goroutines
// through Acquire/Release at once via errgroup, the same concurrent-test
// idiom the teacher's tracelog test package uses, and checks the pool never
// hands out more than MaxConns live resources at a time.
func TestConcurrentAcquireReleaseNeverExceedsMaxConns(t *testing.T) {
	const maxConns = 4
	var constructed int32

	p, err := pool.New(&pool.Config[*fakeConn]{
		Constructor: func(ctx context.Context) (*fakeConn, error) {
			id := atomic.AddInt32(&constructed, 1)
			return &fakeConn{id: int(id), alive: true}, nil
		},
		Destructor: func(*fakeConn) {},
		MaxConns:   maxConns,
	})
	require.NoError(t, err)
	defer p.Close()

	var inUse int32
	var peak int32

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			r, err := p.Acquire(ctx)
			if err != nil {
				return err
			}
			defer r.Release()

			n := atomic.AddInt32(&inUse, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&inUse, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.LessOrEqual(t, peak, int32(maxConns))
	assert.LessOrEqual(t, atomic.LoadInt32(&constructed), int32(maxConns))
}

func TestBeforeAcquireAndAfterReleaseHooksRun(t *testing.T) {
	var beforeAcquireCalls, afterReleaseCalls int
	var sawCtx context.Context

	p, err := pool.New(&pool.Config[*fakeConn]{
		Constructor: func(ctx context.Context) (*fakeConn, error) {
			return &fakeConn{id: 1, alive: true}, nil
		},
		Destructor: func(*fakeConn) {},
		MaxConns:   1,
		BeforeAcquire: func(ctx context.Context, c *fakeConn) bool {
			beforeAcquireCalls++
			sawCtx = ctx
			return true
		},
		AfterRelease: func(c *fakeConn) bool {
			afterReleaseCalls++
			return true
		},
	})
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	r, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, beforeAcquireCalls)
	assert.Equal(t, ctx, sawCtx)

	r.Release()
	assert.Equal(t, 1, afterReleaseCalls)
}

func TestBeforeAcquireRejectionDestroysConnection(t *testing.T) {
	p, constructed := newTestPoolWithBeforeAcquire(t, 1, func(ctx context.Context, c *fakeConn) bool {
		return c.alive // reject once, then accept the replacement
	})
	defer p.Close()

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	c1 := r1.Value()
	r1.Release()
	// Only after Release put it on the idle list, so that BeforeAcquire (not
	// Release) is what turns it away.
	c1.alive = false

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, *constructed, "a BeforeAcquire rejection must destroy and reconstruct, not hand back the rejected connection")
	assert.NotEqual(t, c1.id, r2.Value().id)
}

func newTestPoolWithBeforeAcquire(t *testing.T, maxConns int32, beforeAcquire func(context.Context, *fakeConn) bool) (*pool.Pool[*fakeConn], *int) {
	t.Helper()
	n := 0
	p, err := pool.New(&pool.Config[*fakeConn]{
		Constructor: func(ctx context.Context) (*fakeConn, error) {
			n++
			return &fakeConn{id: n, alive: true}, nil
		},
		Destructor:    func(*fakeConn) {},
		MaxConns:      maxConns,
		BeforeAcquire: beforeAcquire,
	})
	require.NoError(t, err)
	return p, &n
}

func TestStatReportsTotalAndIdleConns(t *testing.T) {
	p, _ := newTestPool(t, 2)
	defer p.Close()

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)

	stat := p.Stat()
	assert.Equal(t, int32(1), stat.TotalConns())
	assert.Equal(t, int32(0), stat.IdleConns())

	r.Release()
	stat = p.Stat()
	assert.Equal(t, int32(1), stat.IdleConns())
}
