// Package engine runs the stencil iterations of one rank, overlapping the
// halo exchange with the interior update.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/halo/exchange"
	"github.com/lsds/halo/srcs/go/halo/grid"
	"github.com/lsds/halo/srcs/go/halo/parallel"
	"github.com/lsds/halo/srcs/go/halo/reduction"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/utils"
)

type Config struct {
	Steps    int
	Period   int
	Root     int
	Kernel   grid.RowKernel
	Workers  int
	Observer Observer
}

func DefaultConfig() Config {
	return Config{
		Steps:  10,
		Period: 5,
		Root:   0,
		Kernel: grid.FivePoint,
	}
}

var errLayoutMismatch = errors.New("layout does not match the number of processes")

// Engine owns the tile of one rank. All communication is issued from the
// goroutine that calls Step or Run; the pool only runs row kernels.
type Engine struct {
	c         *comm.Comm
	tile      *grid.Tile
	neighbors plan.Neighbors
	pool      *parallel.Pool
	pipeline  *reduction.Pipeline
	cfg       Config

	step    int
	rowSums []float64
}

func New(c *comm.Comm, layout *grid.Layout, seed grid.Seed, cfg Config) (*Engine, error) {
	neighbors, err := plan.Ring(c.Rank(), c.Size())
	if err != nil {
		return nil, err
	}
	if layout.Procs != c.Size() {
		return nil, fmt.Errorf("%w: %d vs %d", errLayoutMismatch, layout.Procs, c.Size())
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("invalid number of steps: %d", cfg.Steps)
	}
	pipeline, err := reduction.New(c, cfg.Period, cfg.Root)
	if err != nil {
		return nil, err
	}
	if cfg.Kernel == nil {
		cfg.Kernel = grid.FivePoint
	}
	tile := layout.NewTile(c.Rank(), seed)
	return &Engine{
		c:         c,
		tile:      tile,
		neighbors: neighbors,
		pool:      parallel.New(cfg.Workers),
		pipeline:  pipeline,
		cfg:       cfg,
		rowSums:   make([]float64, tile.LocalRowCount()),
	}, nil
}

func (e *Engine) Tile() *grid.Tile { return e.tile }

func (e *Engine) Neighbors() plan.Neighbors { return e.neighbors }

// StepCount is the number of completed iterations.
func (e *Engine) StepCount() int { return e.step }

func (e *Engine) enter(s State) {
	if e.cfg.Observer != nil {
		e.cfg.Observer(e.c.Rank(), e.step, s)
	}
}

// wait runs a blocking completion under the optional wait timeout and stall detector.
func (e *Engine) wait(ctx context.Context, what string, f func(context.Context) error) error {
	if config.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.WaitTimeout)
		defer cancel()
	}
	if config.EnableStallDetection {
		sd := utils.InstallStallDetector(fmt.Sprintf("rank %d step %d %s", e.c.Rank(), e.step, what), config.StallReportPeriod)
		defer sd.Stop()
	}
	if err := f(ctx); err != nil {
		return fmt.Errorf("rank %d step %d: %w", e.c.Rank(), e.step, err)
	}
	return nil
}

func (e *Engine) compute(i int) {
	e.tile.Compute(e.cfg.Kernel, i)
}

func (e *Engine) boundaryRows() []int {
	if n := e.tile.LocalRowCount(); n > 1 {
		return []int{0, n - 1}
	}
	return []int{0}
}

// partialSum adds the freshly computed rows, row by row in order.
func (e *Engine) partialSum() float64 {
	e.pool.For(len(e.rowSums), func(i int) {
		e.rowSums[i] = grid.RowSum(e.tile.OutputRow(i))
	})
	var s float64
	for _, x := range e.rowSums {
		s += x
	}
	return s
}

// Step runs one iteration.
func (e *Engine) Step(ctx context.Context) error {
	e.enter(PostHalo)
	x := exchange.Post(e.c, e.tile, e.neighbors)

	e.enter(ComputeInterior)
	e.pool.ForRange(plan.Interval{Begin: 1, End: e.tile.LocalRowCount() - 1}, e.compute)

	e.enter(WaitReceives)
	if err := e.wait(ctx, "halo receives", x.WaitRecvs); err != nil {
		return err
	}

	e.enter(ComputeBoundary)
	rows := e.boundaryRows()
	e.pool.For(len(rows), func(i int) { e.compute(rows[i]) })

	err := e.wait(ctx, "reduction", func(ctx context.Context) error {
		return e.pipeline.Step(ctx, e.step, e.partialSum)
	})
	if err != nil {
		return err
	}

	e.enter(WaitSends)
	if err := e.wait(ctx, "halo sends", x.WaitSends); err != nil {
		return err
	}

	e.enter(Advance)
	e.tile.Advance()
	e.step++
	monitor.GetMonitor().Count("steps", 1)
	return nil
}

// Result of a run on one rank.
type Result struct {
	Rank     int
	Steps    int
	Records  []reduction.Record
	Total    float64
	HasTotal bool
	LocalSum float64
	Took     time.Duration
	Tile     *grid.Tile
}

// Run iterates until cfg.Steps and then flushes the reduction pipeline.
// On failure every operation still in flight is aborted.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	t0 := time.Now()
	log.Debugf("rank %d: rows [%d, %d), neighbours %d/%d, %d steps", e.c.Rank(), e.tile.Band.Begin, e.tile.Band.End, e.neighbors.Pred, e.neighbors.Succ, e.cfg.Steps)
	for e.step < e.cfg.Steps {
		if err := e.Step(ctx); err != nil {
			e.c.Abort()
			return nil, err
		}
	}
	err := e.wait(ctx, "reduction flush", func(ctx context.Context) error {
		return e.pipeline.Flush(ctx, e.step)
	})
	if err != nil {
		e.c.Abort()
		return nil, err
	}
	total, ok := e.pipeline.Total()
	r := &Result{
		Rank:     e.c.Rank(),
		Steps:    e.step,
		Records:  e.pipeline.Records(),
		Total:    total,
		HasTotal: ok,
		LocalSum: e.tile.Sum(),
		Took:     time.Since(t0),
		Tile:     e.tile,
	}
	log.Debugf("rank %d finished %s, took %s", e.c.Rank(), utils.Pluralize(r.Steps, "step", "steps"), r.Took)
	return r, nil
}
