package grid

import (
	"github.com/lsds/halo/srcs/go/halo/base"
	"github.com/lsds/halo/srcs/go/plan"
)

// Seed gives the initial value of a cell by global coordinates.
type Seed func(rank, row, col int) float64

// RankScaled seeds every cell of rank r with scale * (r + 1).
func RankScaled(scale float64) Seed {
	return func(rank, _, _ int) float64 {
		return scale * float64(rank+1)
	}
}

// Tile is the band of one rank plus a ghost row above and below.
// Rows are stored contiguously: ghost above, the band, ghost below.
// cur holds the values of the current step, next receives the update.
type Tile struct {
	Rank int
	Band plan.Interval
	Cols int

	cur  *base.Vector
	next *base.Vector
}

func (l *Layout) NewTile(rank int, seed Seed) *Tile {
	band := l.Band(rank)
	n := band.Len()
	t := &Tile{
		Rank: rank,
		Band: band,
		Cols: l.Cols,
		cur:  base.NewVector((n+2)*l.Cols, base.F64),
		next: base.NewVector((n+2)*l.Cols, base.F64),
	}
	for i := 0; i < n; i++ {
		row := t.InteriorRow(i)
		for j := range row {
			row[j] = seed(rank, band.Begin+i, j)
		}
	}
	return t
}

func (t *Tile) LocalRowCount() int { return t.Band.Len() }

// slot k is the k-th stored row: 0 is the ghost above, n+1 the ghost below.
func (t *Tile) slot(v *base.Vector, k int) *base.Vector {
	return v.Slice(k*t.Cols, (k+1)*t.Cols)
}

func (t *Tile) GhostRowAbove() []float64 { return t.GhostAbove().AsF64() }

func (t *Tile) GhostRowBelow() []float64 { return t.GhostBelow().AsF64() }

// InteriorRow returns local row i (0 <= i < LocalRowCount) of the current step.
func (t *Tile) InteriorRow(i int) []float64 { return t.slot(t.cur, i+1).AsF64() }

// OutputRow returns local row i of the step being computed.
func (t *Tile) OutputRow(i int) []float64 { return t.slot(t.next, i+1).AsF64() }

// TopRow is the first owned row, sent to the predecessor.
func (t *Tile) TopRow() *base.Vector { return t.slot(t.cur, 1) }

// BottomRow is the last owned row, sent to the successor.
func (t *Tile) BottomRow() *base.Vector { return t.slot(t.cur, t.LocalRowCount()) }

func (t *Tile) GhostAbove() *base.Vector { return t.slot(t.cur, 0) }

func (t *Tile) GhostBelow() *base.Vector { return t.slot(t.cur, t.LocalRowCount()+1) }

// Compute applies k to local row i, reading the current step and writing the next.
// Row 0 reads the ghost above and row n-1 the ghost below.
func (t *Tile) Compute(k RowKernel, i int) {
	above := t.slot(t.cur, i).AsF64()
	row := t.slot(t.cur, i+1).AsF64()
	below := t.slot(t.cur, i+2).AsF64()
	k(above, row, below, t.OutputRow(i))
}

// Advance makes the computed step current.
func (t *Tile) Advance() {
	t.cur, t.next = t.next, t.cur
}

// Sum adds the owned rows of the current step in row-major order.
func (t *Tile) Sum() float64 {
	var s float64
	for i := 0; i < t.LocalRowCount(); i++ {
		s += RowSum(t.InteriorRow(i))
	}
	return s
}

func RowSum(row []float64) float64 {
	var s float64
	for _, x := range row {
		s += x
	}
	return s
}
