package comm

import (
	"context"
)

// Kind separates halo traffic from collective traffic.
type Kind uint8

const (
	KindHalo Kind = iota
	KindCollective
)

func (k Kind) String() string {
	switch k {
	case KindHalo:
		return "halo"
	case KindCollective:
		return "collective"
	default:
		return ""
	}
}

// Transport moves named byte messages between ranks.
// Messages with the same (src, dst, kind, name) are delivered in order.
type Transport interface {
	Rank() int
	Size() int

	// Send returns once data may be reused by the caller.
	Send(ctx context.Context, dst int, kind Kind, name string, data []byte) error

	// Recv fills buf with the next matching message, whose length must be len(buf).
	Recv(ctx context.Context, src int, kind Kind, name string, buf []byte) error
}
