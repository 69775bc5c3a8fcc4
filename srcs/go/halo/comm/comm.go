package comm

import (
	"context"
	"fmt"

	"github.com/lsds/halo/srcs/go/halo/base"
	"github.com/lsds/halo/srcs/go/halo/execution"
	"github.com/lsds/halo/srcs/go/plan"
)

// Tag discriminates the two halo directions.
type Tag int

const (
	TagUp   Tag = 0 // towards the predecessor
	TagDown Tag = 1 // towards the successor
)

func (t Tag) String() string {
	switch t {
	case TagUp:
		return "up"
	case TagDown:
		return "down"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

func (t Tag) name() string {
	return fmt.Sprintf("halo:%d", int(t))
}

// Comm issues point-to-point and collective operations of one rank.
// Only one goroutine may issue operations on a Comm.
type Comm struct {
	t      Transport
	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
}

func New(t Transport) *Comm {
	ctx, cancel := context.WithCancel(context.Background())
	return &Comm{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Comm) Rank() int { return c.t.Rank() }

func (c *Comm) Size() int { return c.t.Size() }

// Abort fails every operation that is still in flight.
func (c *Comm) Abort() { c.cancel() }

// Isend starts sending buf to dst. buf must not be modified until the request completes.
func (c *Comm) Isend(buf *base.Vector, dst int, tag Tag) *Request {
	name := fmt.Sprintf("isend(%s -> %d)", tag, dst)
	return start(name, func() error {
		return c.t.Send(c.ctx, dst, KindHalo, tag.name(), buf.Data)
	})
}

// Irecv starts receiving into buf from src. buf must not be read until the request completes.
func (c *Comm) Irecv(buf *base.Vector, src int, tag Tag) *Request {
	name := fmt.Sprintf("irecv(%s <- %d)", tag, src)
	return start(name, func() error {
		return c.t.Recv(c.ctx, src, KindHalo, tag.name(), buf.Data)
	})
}

// Ssend sends buf to dst and blocks until the transport has handed it over.
func (c *Comm) Ssend(ctx context.Context, buf *base.Vector, dst int, tag Tag) error {
	return c.t.Send(ctx, dst, KindHalo, tag.name(), buf.Data)
}

// Recv blocks until buf is filled from src.
func (c *Comm) Recv(ctx context.Context, buf *base.Vector, src int, tag Tag) error {
	return c.t.Recv(ctx, src, KindHalo, tag.name(), buf.Data)
}

func (c *Comm) nextReduceName(w base.Workspace) string {
	c.seq++
	return fmt.Sprintf("reduce:%s:%d", w.Name, c.seq)
}

// Ireduce starts combining w.SendBuf of all ranks with w.OP into w.RecvBuf of root.
// RecvBuf of other ranks holds partial results and must be ignored.
func (c *Comm) Ireduce(w base.Workspace, root int) *Request {
	name := c.nextReduceName(w)
	return start(name, func() error {
		return c.reduce(c.ctx, w, root, name)
	})
}

// Reduce is the blocking form of Ireduce.
func (c *Comm) Reduce(ctx context.Context, w base.Workspace, root int) error {
	return c.reduce(ctx, w, root, c.nextReduceName(w))
}

func (c *Comm) reduce(ctx context.Context, w base.Workspace, root int, name string) error {
	tree, err := plan.BinaryTree(c.Size(), root)
	if err != nil {
		return err
	}
	rank := c.Rank()
	w.Forward()
	children := tree.Children(rank)
	recvs := make(map[int]*base.Vector, len(children))
	for _, child := range children {
		recvs[child] = base.NewVector(w.RecvBuf.Count, w.RecvBuf.Type)
	}
	err = execution.ParRanks(children, func(child int) error {
		return c.t.Recv(ctx, child, KindCollective, name, recvs[child].Data)
	})
	if err != nil {
		return err
	}
	// children are combined in tree order so that every run adds in the same order
	for _, child := range children {
		base.Transform(w.RecvBuf, recvs[child], w.OP)
	}
	if parent, ok := tree.Parent(rank); ok {
		return c.t.Send(ctx, parent, KindCollective, name, w.RecvBuf.Data)
	}
	return nil
}
