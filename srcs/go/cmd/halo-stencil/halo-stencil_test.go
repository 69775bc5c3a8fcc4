package main

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/lsds/halo/srcs/go/halo/env"
	"github.com/lsds/halo/srcs/go/halo/problem"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_problemPath(t *testing.T) {
	assert.Equal(t, "a.yaml", problemPath([]string{"-np", "4", "-problem", "a.yaml"}))
	assert.Equal(t, "b.toml", problemPath([]string{"--problem=b.toml", "-steps", "3"}))
	assert.Equal(t, "", problemPath([]string{"-np", "4"}))
	assert.Equal(t, "", problemPath([]string{"-problem"}))
}

func freePort(t *testing.T) uint16 {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func Test_runPeer_failure_closes_listeners(t *testing.T) {
	ip := plan.MustParseIPv4("127.0.0.1")
	self := plan.PeerID{IPv4: ip, Port: freePort(t)}
	absent := plan.PeerID{IPv4: ip, Port: freePort(t)}
	cfg := &env.Config{Self: self, InitPeers: plan.PeerList{self, absent}, Token: 1}
	p := problem.Default()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.Error(t, runPeer(ctx, &p, cfg))

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(self.Port))))
	require.NoError(t, err)
	l.Close()
}
