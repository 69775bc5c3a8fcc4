package engine

import (
	"context"

	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/halo/grid"
	"golang.org/x/sync/errgroup"
)

// RunWorld runs layout.Procs ranks as goroutines connected by a comm.World.
func RunWorld(ctx context.Context, layout *grid.Layout, seed grid.Seed, cfg Config) ([]*Result, error) {
	world := comm.NewWorld(layout.Procs)
	engines := make([]*Engine, layout.Procs)
	for rank := range engines {
		e, err := New(comm.New(world.Transport(rank)), layout, seed, cfg)
		if err != nil {
			return nil, err
		}
		engines[rank] = e
	}
	results := make([]*Result, layout.Procs)
	g, ctx := errgroup.WithContext(ctx)
	for rank, e := range engines {
		g.Go(func() error {
			r, err := e.Run(ctx)
			results[rank] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
