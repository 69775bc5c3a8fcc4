// Package grid partitions a global 2-D grid into row bands and keeps the
// per-rank tile with its ghost rows.
package grid

import (
	"errors"
	"fmt"

	"github.com/lsds/halo/srcs/go/plan"
)

// Policy decides how rows are split when they do not divide evenly.
type Policy int

const (
	Strict   Policy = iota // every band has the same height
	Balanced Policy = iota // the first rows mod procs bands get one extra row
)

var policyNames = map[Policy]string{
	Strict:   "strict",
	Balanced: "balanced",
}

func (p Policy) String() string {
	return policyNames[p]
}

func ParsePolicy(s string) (Policy, error) {
	for k, v := range policyNames {
		if s == v {
			return k, nil
		}
	}
	return Strict, fmt.Errorf("invalid partition policy %q", s)
}

var (
	ErrNotPartitionable = errors.New("rows are not divisible by the number of processes")
	ErrTooFewRows       = errors.New("fewer rows than processes")
	ErrNoColumns        = errors.New("grid needs at least one column")
)

// Layout is the static decomposition of a Rows x Cols grid over Procs ranks.
type Layout struct {
	Rows   int
	Cols   int
	Procs  int
	Policy Policy

	bands []plan.Interval
}

func NewLayout(rows, cols, procs int, policy Policy) (*Layout, error) {
	if procs < 2 {
		return nil, plan.ErrSingleProcess
	}
	if cols < 1 {
		return nil, ErrNoColumns
	}
	if rows < procs {
		return nil, fmt.Errorf("%w: %d rows, %d processes", ErrTooFewRows, rows, procs)
	}
	if policy == Strict && rows%procs != 0 {
		return nil, fmt.Errorf("%w: %d rows, %d processes", ErrNotPartitionable, rows, procs)
	}
	return &Layout{
		Rows:   rows,
		Cols:   cols,
		Procs:  procs,
		Policy: policy,
		bands:  plan.EvenPartition(plan.Interval{Begin: 0, End: rows}, procs),
	}, nil
}

// Band is the half-open range of global rows owned by rank.
func (l *Layout) Band(rank int) plan.Interval {
	return l.bands[rank]
}

func (l *Layout) String() string {
	return fmt.Sprintf("%dx%d over %d procs (%s)", l.Rows, l.Cols, l.Procs, l.Policy)
}
