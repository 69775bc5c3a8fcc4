package comm

import (
	"context"
	"testing"
	"time"

	"github.com/lsds/halo/srcs/go/halo/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func vectorOf(xs ...float64) *base.Vector {
	v := base.NewVector(len(xs), base.F64)
	copy(v.AsF64(), xs)
	return v
}

// runRanks runs f for every rank of an in-process world of size n.
func runRanks(t *testing.T, n int, f func(ctx context.Context, c *Comm) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	world := NewWorld(n)
	g, ctx := errgroup.WithContext(ctx)
	for _, tr := range world.Transports() {
		c := New(tr)
		g.Go(func() error { return f(ctx, c) })
	}
	require.NoError(t, g.Wait())
}

func Test_Isend_Irecv(t *testing.T) {
	got := make([][]float64, 2)
	runRanks(t, 2, func(ctx context.Context, c *Comm) error {
		peer := 1 - c.Rank()
		send := vectorOf(float64(c.Rank()+1), float64(c.Rank()+1))
		recv := base.NewVector(2, base.F64)
		r := c.Irecv(recv, peer, TagUp)
		s := c.Isend(send, peer, TagUp)
		if err := WaitAll(ctx, r, s); err != nil {
			return err
		}
		got[c.Rank()] = recv.AsF64()
		return nil
	})
	assert.Equal(t, []float64{2, 2}, got[0])
	assert.Equal(t, []float64{1, 1}, got[1])
}

func Test_tags_are_separate(t *testing.T) {
	runRanks(t, 2, func(ctx context.Context, c *Comm) error {
		peer := 1 - c.Rank()
		up, down := base.NewVector(1, base.F64), base.NewVector(1, base.F64)
		// posted in opposite orders on the two ranks
		var reqs []*Request
		if c.Rank() == 0 {
			reqs = append(reqs, c.Irecv(up, peer, TagUp), c.Irecv(down, peer, TagDown))
		} else {
			reqs = append(reqs, c.Irecv(down, peer, TagDown), c.Irecv(up, peer, TagUp))
		}
		reqs = append(reqs, c.Isend(vectorOf(10), peer, TagUp), c.Isend(vectorOf(20), peer, TagDown))
		if err := WaitAll(ctx, reqs...); err != nil {
			return err
		}
		assert.Equal(t, 10.0, up.AsF64()[0])
		assert.Equal(t, 20.0, down.AsF64()[0])
		return nil
	})
}

func Test_Request_Wait(t *testing.T) {
	world := NewWorld(2)
	c0, c1 := New(world.Transport(0)), New(world.Transport(1))
	ctx := context.Background()

	var null *Request
	assert.ErrorIs(t, null.Wait(ctx), ErrNullRequest)
	assert.False(t, null.Test())

	recv := base.NewVector(1, base.F64)
	r := c1.Irecv(recv, 0, TagDown)
	assert.False(t, r.Test())

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(short), context.DeadlineExceeded)

	s := c0.Isend(vectorOf(3), 1, TagDown)
	require.NoError(t, r.Wait(ctx))
	require.NoError(t, s.Wait(ctx))
	assert.True(t, r.Test())
	assert.Equal(t, 3.0, recv.AsF64()[0])

	assert.ErrorIs(t, r.Wait(ctx), ErrRequestConsumed)
	assert.ErrorIs(t, s.Wait(ctx), ErrRequestConsumed)
}

func Test_Request_Wait_done_beats_cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 100; i++ {
		r := start("noop", func() error { return nil })
		<-r.done
		require.NoError(t, r.Wait(ctx))
		assert.ErrorIs(t, r.Wait(ctx), ErrRequestConsumed)
	}
}

func Test_Abort(t *testing.T) {
	world := NewWorld(2)
	c := New(world.Transport(0))
	r := c.Irecv(base.NewVector(1, base.F64), 1, TagUp)
	c.Abort()
	assert.ErrorIs(t, r.Wait(context.Background()), context.Canceled)
}

func Test_Ssend_first_deadlocks(t *testing.T) {
	world := NewWorld(2)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	g, _ := errgroup.WithContext(context.Background())
	for _, tr := range world.Transports() {
		c := New(tr)
		g.Go(func() error {
			peer := 1 - c.Rank()
			if err := c.Ssend(ctx, vectorOf(1), peer, TagUp); err != nil {
				return err
			}
			return c.Recv(ctx, base.NewVector(1, base.F64), peer, TagUp)
		})
	}
	assert.ErrorIs(t, g.Wait(), context.DeadlineExceeded)
}

func Test_Ssend_ordered(t *testing.T) {
	runRanks(t, 2, func(ctx context.Context, c *Comm) error {
		peer := 1 - c.Rank()
		recv := base.NewVector(1, base.F64)
		if c.Rank() == 0 {
			if err := c.Ssend(ctx, vectorOf(5), peer, TagUp); err != nil {
				return err
			}
			return c.Recv(ctx, recv, peer, TagUp)
		}
		if err := c.Recv(ctx, recv, peer, TagUp); err != nil {
			return err
		}
		return c.Ssend(ctx, vectorOf(6), peer, TagUp)
	})
}

func Test_Reduce(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for root := 0; root < n; root++ {
			totals := make([]float64, n)
			runRanks(t, n, func(ctx context.Context, c *Comm) error {
				w := base.Workspace{
					SendBuf: vectorOf(float64(c.Rank()+1), 1),
					RecvBuf: base.NewVector(2, base.F64),
					OP:      base.SUM,
					Name:    "partial",
				}
				if err := c.Reduce(ctx, w, root); err != nil {
					return err
				}
				totals[c.Rank()] = w.RecvBuf.AsF64()[0]
				if c.Rank() == root {
					assert.Equal(t, float64(n), w.RecvBuf.AsF64()[1])
				}
				return nil
			})
			assert.Equal(t, float64(n*(n+1)/2), totals[root], "n=%d root=%d", n, root)
		}
	}
}

func Test_Ireduce_pipelined(t *testing.T) {
	const rounds = 4
	totals := make([]float64, rounds)
	runRanks(t, 3, func(ctx context.Context, c *Comm) error {
		var pending *Request
		var pendingBuf *base.Vector
		pendingRound := -1
		for i := 0; i < rounds; i++ {
			recv := base.NewVector(1, base.F64)
			r := c.Ireduce(base.Workspace{
				SendBuf: vectorOf(float64(i * (c.Rank() + 1))),
				RecvBuf: recv,
				OP:      base.SUM,
				Name:    "sum",
			}, 0)
			if pending != nil {
				if err := pending.Wait(ctx); err != nil {
					return err
				}
				if c.Rank() == 0 {
					totals[pendingRound] = pendingBuf.AsF64()[0]
				}
			}
			pending, pendingBuf, pendingRound = r, recv, i
		}
		if err := pending.Wait(ctx); err != nil {
			return err
		}
		if c.Rank() == 0 {
			totals[pendingRound] = pendingBuf.AsF64()[0]
		}
		return nil
	})
	assert.Equal(t, []float64{0, 6, 12, 18}, totals)
}

func Test_Reduce_invalid_root(t *testing.T) {
	world := NewWorld(2)
	c := New(world.Transport(0))
	w := base.Workspace{SendBuf: vectorOf(1), RecvBuf: base.NewVector(1, base.F64), OP: base.SUM}
	assert.Error(t, c.Reduce(context.Background(), w, 2))
}
