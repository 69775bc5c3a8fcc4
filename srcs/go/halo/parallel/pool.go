// Package parallel is the fork-join worker pool of the compute phases.
package parallel

import (
	"runtime"

	"github.com/lsds/halo/srcs/go/plan"
	"golang.org/x/sync/errgroup"
)

// Pool splits index ranges over a fixed number of workers.
type Pool struct {
	workers int
}

// New creates a Pool with the given number of workers, runtime.NumCPU() if workers <= 0.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// For calls body(i) for every i in [0, n) and returns when all calls have returned.
// Each worker gets one contiguous slice of the range.
func (p *Pool) For(n int, body func(i int)) {
	p.ForRange(plan.Interval{Begin: 0, End: n}, body)
}

// ForRange is For over an arbitrary interval.
func (p *Pool) ForRange(r plan.Interval, body func(i int)) {
	if r.Len() <= 0 {
		return
	}
	k := min(p.workers, r.Len())
	if k == 1 {
		for i := r.Begin; i < r.End; i++ {
			body(i)
		}
		return
	}
	var g errgroup.Group
	for _, part := range plan.EvenPartition(r, k) {
		g.Go(func() error {
			for i := part.Begin; i < part.End; i++ {
				body(i)
			}
			return nil
		})
	}
	g.Wait()
}
