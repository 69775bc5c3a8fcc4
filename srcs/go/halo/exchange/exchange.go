// Package exchange posts the non-blocking halo exchange of a tile with its ring neighbours.
package exchange

import (
	"context"
	"fmt"

	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/halo/grid"
	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/plan"
)

// Exchange holds the four requests of one iteration.
type Exchange struct {
	recvUp   *comm.Request // ghost below <- successor
	recvDown *comm.Request // ghost above <- predecessor
	sendUp   *comm.Request // top row -> predecessor
	sendDown *comm.Request // bottom row -> successor
}

// Post issues receive-up, receive-down, send-up, send-down and returns without blocking.
func Post(c *comm.Comm, t *grid.Tile, n plan.Neighbors) *Exchange {
	e := &Exchange{
		recvUp:   c.Irecv(t.GhostBelow(), n.Succ, comm.TagUp),
		recvDown: c.Irecv(t.GhostAbove(), n.Pred, comm.TagDown),
		sendUp:   c.Isend(t.TopRow(), n.Pred, comm.TagUp),
		sendDown: c.Isend(t.BottomRow(), n.Succ, comm.TagDown),
	}
	monitor.GetMonitor().Count("halo_rows_sent", 2)
	return e
}

// WaitRecvs completes both receives. Ghost rows are valid afterwards.
func (e *Exchange) WaitRecvs(ctx context.Context) error {
	if err := comm.WaitAll(ctx, e.recvUp, e.recvDown); err != nil {
		return fmt.Errorf("halo receive: %w", err)
	}
	return nil
}

// WaitSends completes both sends. Boundary rows may be overwritten afterwards.
func (e *Exchange) WaitSends(ctx context.Context) error {
	if err := comm.WaitAll(ctx, e.sendUp, e.sendDown); err != nil {
		return fmt.Errorf("halo send: %w", err)
	}
	return nil
}
