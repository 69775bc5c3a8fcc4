package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EvenPartition(t *testing.T) {
	parts := EvenPartition(Interval{Begin: 0, End: 10}, 3)
	assert.Equal(t, []Interval{{0, 4}, {4, 7}, {7, 10}}, parts)

	parts = EvenPartition(Interval{Begin: 0, End: 8}, 2)
	assert.Equal(t, []Interval{{0, 4}, {4, 8}}, parts)
	for _, p := range parts {
		assert.Equal(t, 4, p.Len())
	}
	assert.True(t, parts[1].Contains(4))
	assert.False(t, parts[1].Contains(8))
}
