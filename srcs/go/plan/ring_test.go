package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Ring(t *testing.T) {
	for _, tt := range []struct {
		rank, size int
		want       Neighbors
	}{
		{0, 2, Neighbors{Pred: 1, Succ: 1}},
		{1, 2, Neighbors{Pred: 0, Succ: 0}},
		{0, 4, Neighbors{Pred: 3, Succ: 1}},
		{3, 4, Neighbors{Pred: 2, Succ: 0}},
		{2, 5, Neighbors{Pred: 1, Succ: 3}},
	} {
		got, err := Ring(tt.rank, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "rank %d of %d", tt.rank, tt.size)
	}
}

func Test_Ring_symmetric(t *testing.T) {
	for size := 2; size <= 7; size++ {
		for rank := 0; rank < size; rank++ {
			n, err := Ring(rank, size)
			require.NoError(t, err)
			p, _ := Ring(n.Pred, size)
			s, _ := Ring(n.Succ, size)
			assert.Equal(t, rank, p.Succ)
			assert.Equal(t, rank, s.Pred)
		}
	}
}

func Test_Mirror(t *testing.T) {
	for rank := 0; rank < 2; rank++ {
		m, err := Mirror(rank, 2)
		require.NoError(t, err)
		n, _ := Ring(rank, 2)
		assert.Equal(t, m, n.Pred)
		assert.Equal(t, m, n.Succ)
	}
	_, err := Mirror(0, 1)
	assert.True(t, errors.Is(err, ErrSingleProcess))
}

func Test_Ring_rejects(t *testing.T) {
	_, err := Ring(0, 1)
	assert.True(t, errors.Is(err, ErrSingleProcess))
	_, err = Ring(2, 2)
	assert.Error(t, err)
}
