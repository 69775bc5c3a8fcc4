package connection

import (
	"math/bits"
	"sync"
)

// Bodies of at least minPooled bytes are read into buffers drawn from
// power-of-two size classes.
const (
	minPooledShift = 9
	minPooled      = 1 << minPooledShift
	numClasses     = 32 - minPooledShift + 1
)

var classes [numClasses]sync.Pool

func sizeClass(n uint32) int {
	return bits.Len32(n-1) - minPooledShift
}

// GetBuf returns a buffer of length n.
func GetBuf(n uint32) []byte {
	if n < minPooled {
		return make([]byte, n)
	}
	c := sizeClass(n)
	if b, ok := classes[c].Get().(*[]byte); ok {
		return (*b)[:n]
	}
	return make([]byte, n, 1<<(c+minPooledShift))
}

// PutBuf recycles a buffer from GetBuf. Other buffers are dropped.
func PutBuf(b []byte) {
	n := uint32(cap(b))
	if n < minPooled || n&(n-1) != 0 {
		return
	}
	b = b[:0]
	classes[sizeClass(n)].Put(&b)
}
