package connection

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/plan"
)

var (
	ErrInvalidToken = errors.New("invalid token")

	errDialFailed = errors.New("can't establish connection")
)

// Connection is a one-way logical channel between two peers. The dialing
// side sends, the accepting side reads.
type Connection interface {
	io.Closer

	Conn() net.Conn
	Type() ConnType
	Src() plan.PeerID
	Dest() plan.PeerID
	Send(name string, m Message, flags uint32) error
	Read(name string, m Message) error
}

type conn struct {
	mu       sync.Mutex
	nc       net.Conn
	src      plan.PeerID
	dest     plan.PeerID
	kind     ConnType
	token    uint32
	unixSock bool
	retries  int
}

// New returns a connection to remote that is dialed on first use.
func New(remote, local plan.PeerID, t ConnType, token uint32, useUnixSock bool) Connection {
	c := &conn{
		src:      local,
		dest:     remote,
		kind:     t,
		token:    token,
		unixSock: useUnixSock,
	}
	if t != ConnPing {
		c.retries = config.ConnRetryCount
	}
	return c
}

// Open is New followed by an immediate dial.
func Open(remote, local plan.PeerID, t ConnType, token uint32, useUnixSock bool) (Connection, error) {
	c := New(remote, local, t, token, useUnixSock).(*conn)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c, nil
}

// UpgradeFrom runs the accepting side of the handshake on nc.
func UpgradeFrom(nc net.Conn, self plan.PeerID, token uint32) (Connection, error) {
	var h hello
	if err := h.readFrom(nc); err != nil {
		return nil, err
	}
	if err := writeToken(nc, token); err != nil {
		return nil, err
	}
	return &conn{nc: nc, src: h.Src, dest: self, kind: h.Type}, nil
}

func (c *conn) Conn() net.Conn    { return c.nc }
func (c *conn) Type() ConnType    { return c.kind }
func (c *conn) Src() plan.PeerID  { return c.src }
func (c *conn) Dest() plan.PeerID { return c.dest }

func (c *conn) dial() (net.Conn, error) {
	var (
		nc  net.Conn
		err error
	)
	if c.unixSock && c.dest.ColocatedWith(c.src) {
		nc, err = net.Dial("unix", c.dest.SockFile())
	} else {
		nc, err = net.Dial("tcp", c.dest.String())
	}
	if err != nil {
		return nil, err
	}
	if err := (hello{Type: c.kind, Src: c.src}).writeTo(nc); err != nil {
		nc.Close()
		return nil, err
	}
	token, err := readToken(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	// any job answers a ping
	if token != c.token && c.kind != ConnPing {
		nc.Close()
		return nil, ErrInvalidToken
	}
	return nc, nil
}

// ensure dials if needed. c.mu must be held.
func (c *conn) ensure() error {
	if c.nc != nil {
		return nil
	}
	t0 := time.Now()
	var err error
	for i := 0; i <= c.retries; i++ {
		if i > 0 {
			time.Sleep(config.ConnRetryPeriod)
		}
		if c.nc, err = c.dial(); err == nil {
			log.Debugf("%s connection to %s up after %d attempt(s), %s", c.kind, c.dest, i+1, time.Since(t0))
			return nil
		}
		if errors.Is(err, ErrInvalidToken) {
			return err
		}
		log.Debugf("dial %s failed (attempt %d): %v", c.dest, i+1, err)
	}
	return fmt.Errorf("%w to %s: %v", errDialFailed, c.dest, err)
}

func (c *conn) Send(name string, m Message, flags uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return err
	}
	return writeFrame(c.nc, name, flags, m)
}

func (c *conn) Read(name string, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return err
	}
	return readFrameInto(c.nc, name, &m)
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nc == nil {
		return nil
	}
	return c.nc.Close()
}
