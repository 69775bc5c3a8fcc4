package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/rchannel/connection"
)

// queueDepth bounds how far a sender may run ahead of its receiver on one name.
const queueDepth = 4

// MailboxEndpoint keeps one FIFO per (source peer, message name).
type MailboxEndpoint struct {
	mu      sync.Mutex
	queues  map[plan.Addr]chan *connection.Message
	monitor monitor.Monitor
}

func NewMailboxEndpoint() *MailboxEndpoint {
	return &MailboxEndpoint{
		queues:  make(map[plan.Addr]chan *connection.Message),
		monitor: monitor.GetMonitor(),
	}
}

func (e *MailboxEndpoint) queue(a plan.Addr) chan *connection.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queues[a]
	if !ok {
		q = make(chan *connection.Message, queueDepth)
		e.queues[a] = q
	}
	return q
}

func (e *MailboxEndpoint) drop(a plan.Addr) {
	e.mu.Lock()
	delete(e.queues, a)
	e.mu.Unlock()
}

// Handle implements connection.Handler
func (e *MailboxEndpoint) Handle(conn connection.Connection) (int, error) {
	return connection.Stream(conn, func(name string, msg *connection.Message, c connection.Connection) {
		e.monitor.Ingress(int64(msg.Length), plan.NetAddr(c.Src()))
		e.queue(c.Src().WithName(name)) <- msg
	})
}

// RecvInto waits for the next message from a and copies it into buf.
func (e *MailboxEndpoint) RecvInto(ctx context.Context, a plan.Addr, buf []byte) error {
	select {
	case m := <-e.queue(a):
		defer connection.PutBuf(m.Data)
		if int(m.Length) != len(buf) {
			return fmt.Errorf("message %s has %d bytes, want %d", a, m.Length, len(buf))
		}
		copy(buf, m.Data)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecvOnce is RecvInto for a name that carries exactly one message.
func (e *MailboxEndpoint) RecvOnce(ctx context.Context, a plan.Addr, buf []byte) error {
	err := e.RecvInto(ctx, a, buf)
	if err == nil {
		e.drop(a)
	}
	return err
}
