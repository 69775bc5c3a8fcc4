// Package server accepts connections from other peers and hands each one to
// a connection.Handler on its own goroutine.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/rchannel/connection"
	"github.com/lsds/halo/srcs/go/utils"
)

type Server interface {
	Start() error
	Close()
	SetToken(uint32)
}

// Listeners serves one handler on a TCP port and, optionally, on the
// peer's unix socket.
type Listeners struct {
	self     plan.PeerID
	handler  connection.Handler
	unixSock bool
	token    atomic.Uint32

	mu        sync.Mutex
	listeners []net.Listener
	wg        sync.WaitGroup
}

var _ Server = (*Listeners)(nil)

func New(self plan.PeerID, handler connection.Handler, useUnixSock bool) *Listeners {
	return &Listeners{self: self, handler: handler, unixSock: useUnixSock}
}

func (s *Listeners) SetToken(token uint32) { s.token.Store(token) }

func (s *Listeners) listenUnix() (net.Listener, error) {
	sock := s.self.SockFile()
	if _, err := os.Stat(sock); err == nil {
		log.Warnf("removing stale socket %s", sock)
		if err := os.Remove(sock); err != nil {
			return nil, fmt.Errorf("can't clean up %s: %w", sock, err)
		}
	}
	return net.Listen("unix", sock)
}

func (s *Listeners) listen() error {
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(int(s.self.Port)))
	log.Debugf("listening on %s", addr)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listeners = append(s.listeners, l)
	if s.unixSock {
		u, err := s.listenUnix()
		if err != nil {
			l.Close()
			return err
		}
		s.listeners = append(s.listeners, u)
	}
	return nil
}

// Start listens and serves in the background. It returns once the
// listeners are bound.
func (s *Listeners) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.listen(); err != nil {
		return err
	}
	for _, l := range s.listeners {
		s.wg.Add(1)
		go s.serve(l)
	}
	utils.Trap(func(os.Signal) { s.Close() })
	return nil
}

func (s *Listeners) serve(l net.Listener) {
	defer s.wg.Done()
	for {
		nc, err := l.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			log.Infof("accept: %v", err)
			continue
		}
		go s.handle(nc)
	}
}

func (s *Listeners) handle(nc net.Conn) {
	conn, err := connection.UpgradeFrom(nc, s.self, s.token.Load())
	if err != nil {
		log.Infof("handshake with %s: %v", nc.RemoteAddr(), err)
		nc.Close()
		return
	}
	defer conn.Close()
	if n, err := s.handler.Handle(conn); err != nil {
		log.Warnf("%s connection from %s failed after %d messages: %v", conn.Type(), conn.Src(), n, err)
	}
}

// Close stops accepting and waits for the accept loops to exit.
// Connections already being handled run until their dialers hang up.
func (s *Listeners) Close() {
	s.mu.Lock()
	ls := s.listeners
	s.listeners = nil
	s.mu.Unlock()
	for _, l := range ls {
		l.Close()
	}
	s.wg.Wait()
	if s.unixSock && len(ls) > 0 {
		os.Remove(s.self.SockFile())
	}
	log.Debugf("server %s closed", s.self)
}
