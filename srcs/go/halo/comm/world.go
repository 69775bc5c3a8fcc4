package comm

import (
	"context"
	"fmt"
	"sync"
)

type worldKey struct {
	src, dst int
	kind     Kind
	name     string
}

// World connects size in-process ranks with unbuffered channels.
// A Send completes only when the matching Recv takes the message.
type World struct {
	size int

	mu    sync.Mutex
	chans map[worldKey]chan []byte
}

func NewWorld(size int) *World {
	return &World{
		size:  size,
		chans: make(map[worldKey]chan []byte),
	}
}

func (w *World) Size() int { return w.size }

func (w *World) require(k worldKey) chan []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.chans[k]
	if !ok {
		ch = make(chan []byte)
		w.chans[k] = ch
	}
	return ch
}

// Transport returns the endpoint of rank.
func (w *World) Transport(rank int) Transport {
	return &worldTransport{w: w, rank: rank}
}

func (w *World) Transports() []Transport {
	ts := make([]Transport, w.size)
	for i := range ts {
		ts[i] = w.Transport(i)
	}
	return ts
}

type worldTransport struct {
	w    *World
	rank int
}

func (t *worldTransport) Rank() int { return t.rank }

func (t *worldTransport) Size() int { return t.w.size }

func (t *worldTransport) check(peer int) error {
	if peer < 0 || peer >= t.w.size {
		return fmt.Errorf("rank %d out of range [0, %d)", peer, t.w.size)
	}
	return nil
}

func (t *worldTransport) Send(ctx context.Context, dst int, kind Kind, name string, data []byte) error {
	if err := t.check(dst); err != nil {
		return err
	}
	ch := t.w.require(worldKey{src: t.rank, dst: dst, kind: kind, name: name})
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *worldTransport) Recv(ctx context.Context, src int, kind Kind, name string, buf []byte) error {
	if err := t.check(src); err != nil {
		return err
	}
	ch := t.w.require(worldKey{src: src, dst: t.rank, kind: kind, name: name})
	select {
	case msg := <-ch:
		if len(msg) != len(buf) {
			return fmt.Errorf("%s message %q from %d has %d bytes, want %d", kind, name, src, len(msg), len(buf))
		}
		copy(buf, msg)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
