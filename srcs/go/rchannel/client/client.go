package client

import (
	"context"
	"sync"
	"time"

	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/rchannel/connection"
	"github.com/lsds/halo/srcs/go/utils"
)

const pingInterval = 200 * time.Millisecond

type connKey struct {
	peer plan.PeerID
	kind connection.ConnType
}

// Client owns the outgoing connections of one peer, one per
// (destination, connection type).
type Client struct {
	self     plan.PeerID
	token    uint32
	unixSock bool
	monitor  monitor.Monitor

	mu    sync.Mutex
	conns map[connKey]connection.Connection
}

func New(self plan.PeerID, token uint32, useUnixSock bool) *Client {
	return &Client{
		self:     self,
		token:    token,
		unixSock: useUnixSock,
		monitor:  monitor.GetMonitor(),
		conns:    make(map[connKey]connection.Connection),
	}
}

func (c *Client) conn(target plan.PeerID, t connection.ConnType) connection.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := connKey{peer: target, kind: t}
	conn, ok := c.conns[k]
	if !ok {
		conn = connection.New(target, c.self, t, c.token, c.unixSock)
		c.conns[k] = conn
	}
	return conn
}

// Ping opens a throwaway connection to target and round-trips an empty frame.
func (c *Client) Ping(target plan.PeerID) (time.Duration, error) {
	t0 := time.Now()
	conn, err := connection.Open(target, c.self, connection.ConnPing, 0, c.unixSock)
	if err != nil {
		return time.Since(t0), err
	}
	defer conn.Close()
	var empty connection.Message
	if err = conn.Send("ping", empty, connection.NoFlag); err == nil {
		err = conn.Read("ping", empty)
	}
	return time.Since(t0), err
}

// Wait pings target until it answers or ctx is done, and reports the
// number of attempts.
func (c *Client) Wait(ctx context.Context, target plan.PeerID) (int, bool) {
	tk := time.NewTicker(pingInterval)
	defer tk.Stop()
	return utils.Poll(ctx, func() bool {
		if _, err := c.Ping(target); err == nil {
			return true
		}
		select {
		case <-tk.C:
		case <-ctx.Done():
		}
		return false
	})
}

// Send writes buf to a over the connection of type t.
func (c *Client) Send(a plan.Addr, buf []byte, t connection.ConnType, flags uint32) error {
	msg := connection.Message{Length: uint32(len(buf)), Data: buf}
	if err := c.conn(a.Peer(), t).Send(a.Name, msg, flags); err != nil {
		return err
	}
	c.monitor.Egress(int64(msg.Length), a.NetAddr())
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, conn := range c.conns {
		conn.Close()
		delete(c.conns, k)
	}
}
