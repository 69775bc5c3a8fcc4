package grid

import (
	"errors"
	"testing"

	"github.com/lsds/halo/srcs/go/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewLayout(t *testing.T) {
	l, err := NewLayout(8, 8, 2, Strict)
	require.NoError(t, err)
	assert.Equal(t, plan.Interval{Begin: 0, End: 4}, l.Band(0))
	assert.Equal(t, plan.Interval{Begin: 4, End: 8}, l.Band(1))
	assert.Equal(t, "8x8 over 2 procs (strict)", l.String())

	l, err = NewLayout(10, 4, 3, Balanced)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Band(0).Len())
	assert.Equal(t, 3, l.Band(1).Len())
	assert.Equal(t, 3, l.Band(2).Len())
}

func Test_NewLayout_rejects(t *testing.T) {
	for _, tt := range []struct {
		rows, cols, procs int
		policy            Policy
		want              error
	}{
		{8, 8, 1, Strict, plan.ErrSingleProcess},
		{8, 8, 0, Balanced, plan.ErrSingleProcess},
		{10, 8, 3, Strict, ErrNotPartitionable},
		{2, 8, 3, Balanced, ErrTooFewRows},
		{8, 0, 2, Strict, ErrNoColumns},
	} {
		_, err := NewLayout(tt.rows, tt.cols, tt.procs, tt.policy)
		assert.True(t, errors.Is(err, tt.want), "%v: got %v", tt, err)
	}
}

func Test_ParsePolicy(t *testing.T) {
	p, err := ParsePolicy("balanced")
	require.NoError(t, err)
	assert.Equal(t, Balanced, p)
	_, err = ParsePolicy("greedy")
	assert.Error(t, err)
}

func Test_Tile(t *testing.T) {
	l, err := NewLayout(8, 3, 2, Strict)
	require.NoError(t, err)
	tile := l.NewTile(1, func(rank, row, col int) float64 {
		return float64(100*rank + 10*row + col)
	})
	assert.Equal(t, 4, tile.LocalRowCount())
	assert.Equal(t, []float64{140, 141, 142}, tile.InteriorRow(0))
	assert.Equal(t, []float64{170, 171, 172}, tile.InteriorRow(3))
	assert.Equal(t, tile.InteriorRow(0), tile.TopRow().AsF64())
	assert.Equal(t, tile.InteriorRow(3), tile.BottomRow().AsF64())

	copy(tile.GhostRowAbove(), []float64{1, 2, 3})
	copy(tile.GhostRowBelow(), []float64{7, 8, 9})
	assert.Equal(t, []float64{1, 2, 3}, tile.GhostAbove().AsF64())

	var seen [][]float64
	tile.Compute(func(above, row, below, out []float64) {
		seen = append(seen, append([]float64(nil), above...), append([]float64(nil), below...))
		copy(out, row)
	}, 0)
	assert.Equal(t, []float64{1, 2, 3}, seen[0])
	assert.Equal(t, []float64{150, 151, 152}, seen[1])

	tile.Compute(func(above, row, below, out []float64) {
		assert.Equal(t, []float64{7, 8, 9}, below)
		copy(out, row)
	}, 3)
}

func Test_Tile_Advance(t *testing.T) {
	l, err := NewLayout(4, 2, 2, Strict)
	require.NoError(t, err)
	tile := l.NewTile(0, RankScaled(1))
	assert.Equal(t, 4.0, tile.Sum())
	for i := 0; i < tile.LocalRowCount(); i++ {
		tile.Compute(func(_, row, _, out []float64) {
			for j := range row {
				out[j] = 2 * row[j]
			}
		}, i)
	}
	assert.Equal(t, 4.0, tile.Sum())
	assert.Equal(t, 4.0, RowSum(tile.OutputRow(0)))
	tile.Advance()
	assert.Equal(t, 8.0, tile.Sum())
}

func Test_FivePoint(t *testing.T) {
	out := make([]float64, 4)
	FivePoint([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0}, out)
	// row[j] + 1 + left + right, columns wrap
	assert.Equal(t, []float64{1 + 1 + 4 + 2, 2 + 1 + 1 + 3, 3 + 1 + 2 + 4, 4 + 1 + 3 + 1}, out)
}

func Test_Diffusion(t *testing.T) {
	out := make([]float64, 3)
	flat := []float64{5, 5, 5}
	Diffusion(0.1)(flat, flat, flat, out)
	assert.Equal(t, flat, out)

	Diffusion(0.25)([]float64{0, 0, 0}, []float64{0, 4, 0}, []float64{0, 0, 0}, out)
	assert.Equal(t, []float64{1, 0, 1}, out)
}
