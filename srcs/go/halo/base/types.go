package base

import "fmt"

// DataType is the element type of a Vector.
type DataType uint8

const (
	U8 DataType = iota
	I32
	I64
	F32
	F64
)

var dtypes = [...]struct {
	name string
	size int
}{
	U8:  {"u8", 1},
	I32: {"i32", 4},
	I64: {"i64", 8},
	F32: {"f32", 4},
	F64: {"f64", 8},
}

func (t DataType) Size() int { return dtypes[t].size }

func (t DataType) String() string {
	if int(t) < len(dtypes) {
		return dtypes[t].name
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// OP is an element-wise reduction operator.
type OP uint8

const (
	SUM OP = iota
	MIN
	MAX
	PROD
)

var opNames = [...]string{SUM: "sum", MIN: "min", MAX: "max", PROD: "prod"}

func (op OP) String() string { return opNames[op] }

type number interface {
	~uint8 | ~int32 | ~int64 | ~float32 | ~float64
}

func combine[T number](op OP) func(a, b T) T {
	switch op {
	case MIN:
		return func(a, b T) T { return min(a, b) }
	case MAX:
		return func(a, b T) T { return max(a, b) }
	case PROD:
		return func(a, b T) T { return a * b }
	default:
		return func(a, b T) T { return a + b }
	}
}

func zipWith[T number](z, x, y []T, op OP) {
	f := combine[T](op)
	for i := range z {
		z[i] = f(x[i], y[i])
	}
}
