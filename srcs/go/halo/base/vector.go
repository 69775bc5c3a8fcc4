// Package base has the typed byte vectors that halo rows and reduction
// values travel in.
package base

import (
	"fmt"
	"unsafe"
)

// Vector is a typed view over raw bytes, which is what goes over the wire.
type Vector struct {
	Data  []byte
	Count int
	Type  DataType
}

func NewVector(count int, dtype DataType) *Vector {
	return &Vector{Data: make([]byte, count*dtype.Size()), Count: count, Type: dtype}
}

// Slice shares elements [begin, end) of v.
func (v *Vector) Slice(begin, end int) *Vector {
	sz := v.Type.Size()
	return &Vector{Data: v.Data[begin*sz : end*sz], Count: end - begin, Type: v.Type}
}

// CopyFrom panics if u differs from v in count or type.
func (v *Vector) CopyFrom(u *Vector) {
	if v.Count != u.Count || v.Type != u.Type {
		panic(fmt.Sprintf("copy %d×%s into %d×%s", u.Count, u.Type, v.Count, v.Type))
	}
	copy(v.Data, u.Data)
}

func as[T any](v *Vector, want DataType) []T {
	if v.Type != want {
		panic(fmt.Sprintf("%s vector viewed as %s", v.Type, want))
	}
	if v.Count == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(v.Data))), v.Count)
}

func (v *Vector) AsU8() []uint8    { return as[uint8](v, U8) }
func (v *Vector) AsI32() []int32   { return as[int32](v, I32) }
func (v *Vector) AsI64() []int64   { return as[int64](v, I64) }
func (v *Vector) AsF32() []float32 { return as[float32](v, F32) }
func (v *Vector) AsF64() []float64 { return as[float64](v, F64) }

// Transform sets y[i] = y[i] op x[i].
func Transform(y, x *Vector, op OP) { Transform2(y, y, x, op) }

// Transform2 sets z[i] = x[i] op y[i]. The three vectors must agree in
// count and type.
func Transform2(z, x, y *Vector, op OP) {
	switch z.Type {
	case U8:
		zipWith(z.AsU8(), x.AsU8(), y.AsU8(), op)
	case I32:
		zipWith(z.AsI32(), x.AsI32(), y.AsI32(), op)
	case I64:
		zipWith(z.AsI64(), x.AsI64(), y.AsI64(), op)
	case F32:
		zipWith(z.AsF32(), x.AsF32(), y.AsF32(), op)
	case F64:
		zipWith(z.AsF64(), x.AsF64(), y.AsF64(), op)
	}
}

// Workspace is the input and output of one collective.
type Workspace struct {
	SendBuf *Vector
	RecvBuf *Vector // the same as SendBuf for an in-place collective
	OP      OP
	Name    string
}

func (w Workspace) IsEmpty() bool { return len(w.SendBuf.Data) == 0 }

func (w Workspace) IsInplace() bool {
	return unsafe.SliceData(w.SendBuf.Data) == unsafe.SliceData(w.RecvBuf.Data)
}

// Forward copies the input to the output unless they are the same buffer.
func (w Workspace) Forward() {
	if !w.IsInplace() {
		w.RecvBuf.CopyFrom(w.SendBuf)
	}
}
