// Package reduction runs a global sum every few iterations without stalling
// the iteration that issued it.
package reduction

import (
	"context"
	"errors"
	"fmt"

	"github.com/lsds/halo/srcs/go/halo/base"
	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/monitor"
)

var (
	ErrReductionInFlight = errors.New("reduction issued while the previous one is outstanding")
	ErrInvalidPeriod     = errors.New("reduction period must be at least 2")
)

// Record describes one completed reduction.
// Total is only meaningful on the root, where Valid is set.
type Record struct {
	IssuedAt    int
	CompletedAt int
	Total       float64
	Valid       bool
}

// Pipeline issues a sum reduction on steps K-1 mod K and completes it on
// steps K-2 mod K, i.e. K-1 iterations later.
type Pipeline struct {
	c      *comm.Comm
	period int
	root   int

	send     *base.Vector
	recv     *base.Vector
	pending  *comm.Request
	issuedAt int

	records []Record
}

func New(c *comm.Comm, period, root int) (*Pipeline, error) {
	if period < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if root < 0 || root >= c.Size() {
		return nil, fmt.Errorf("invalid reduction root %d of %d", root, c.Size())
	}
	return &Pipeline{
		c:      c,
		period: period,
		root:   root,
		send:   base.NewVector(1, base.F64),
		recv:   base.NewVector(1, base.F64),
	}, nil
}

func (p *Pipeline) Period() int { return p.period }

func (p *Pipeline) ShouldIssue(step int) bool { return step%p.period == p.period-1 }

func (p *Pipeline) ShouldWait(step int) bool { return step%p.period == p.period-2 }

func (p *Pipeline) Outstanding() bool { return p.pending != nil }

// Issue starts reducing partial to the root.
func (p *Pipeline) Issue(step int, partial float64) error {
	if p.pending != nil {
		return fmt.Errorf("%w: issued at step %d, now step %d", ErrReductionInFlight, p.issuedAt, step)
	}
	p.send.AsF64()[0] = partial
	p.pending = p.c.Ireduce(base.Workspace{
		SendBuf: p.send,
		RecvBuf: p.recv,
		OP:      base.SUM,
		Name:    "total",
	}, p.root)
	p.issuedAt = step
	monitor.GetMonitor().Count("reductions_issued", 1)
	log.Debugf("rank %d issued reduction at step %d: partial=%g", p.c.Rank(), step, partial)
	return nil
}

// Complete waits for the outstanding reduction, if any.
func (p *Pipeline) Complete(ctx context.Context, step int) error {
	if p.pending == nil {
		return nil
	}
	if err := p.pending.Wait(ctx); err != nil {
		return fmt.Errorf("reduction issued at step %d: %w", p.issuedAt, err)
	}
	p.pending = nil
	r := Record{
		IssuedAt:    p.issuedAt,
		CompletedAt: step,
	}
	if p.c.Rank() == p.root {
		r.Total = p.recv.AsF64()[0]
		r.Valid = true
		log.Infof("global total of step %d is %g (completed at step %d)", r.IssuedAt, r.Total, step)
	}
	p.records = append(p.records, r)
	monitor.GetMonitor().Count("reductions_completed", 1)
	return nil
}

// Step drives the pipeline for one iteration. partial is only called on issue steps.
func (p *Pipeline) Step(ctx context.Context, step int, partial func() float64) error {
	if p.ShouldWait(step) {
		if err := p.Complete(ctx, step); err != nil {
			return err
		}
	}
	if p.ShouldIssue(step) {
		return p.Issue(step, partial())
	}
	return nil
}

// Flush completes whatever is still outstanding when the loop ends.
func (p *Pipeline) Flush(ctx context.Context, step int) error {
	return p.Complete(ctx, step)
}

// Total is the most recent global total, only available on the root.
func (p *Pipeline) Total() (float64, bool) {
	if len(p.records) == 0 {
		return 0, false
	}
	r := p.records[len(p.records)-1]
	return r.Total, r.Valid
}

func (p *Pipeline) Records() []Record {
	return p.records
}
