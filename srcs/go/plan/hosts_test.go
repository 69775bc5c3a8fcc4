package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseHostList(t *testing.T) {
	hl, err := ParseHostList("192.168.1.11:2,192.168.1.12:2:node-12")
	require.NoError(t, err)
	assert.Equal(t, 4, hl.Cap())
	assert.Equal(t, "192.168.1.11:2:192.168.1.11,192.168.1.12:2:node-12", hl.String())
	assert.Equal(t, "node-12", hl.LookupPublicAddr(MustParseIPv4("192.168.1.12")))

	_, err = ParseHostList("192.168.1.11:x")
	assert.Error(t, err)
}

func Test_GenPeerList(t *testing.T) {
	hl, err := ParseHostList("192.168.1.11:2,192.168.1.12:2")
	require.NoError(t, err)
	pl, err := hl.GenPeerList(3, DefaultPortRange)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.11:10000,192.168.1.11:10001,192.168.1.12:10000", pl.String())

	ql, err := ParsePeerList(pl.String())
	require.NoError(t, err)
	assert.Equal(t, pl, ql)

	rank, ok := pl.Rank(pl[2])
	assert.True(t, ok)
	assert.Equal(t, 2, rank)
	assert.Len(t, pl.On(MustParseIPv4("192.168.1.11")), 2)
	assert.Len(t, pl.Others(pl[0]), 2)

	_, err = hl.GenPeerList(5, DefaultPortRange)
	assert.Error(t, err)
}

func Test_ParsePortRange(t *testing.T) {
	pr, err := ParsePortRange("10000-10009")
	require.NoError(t, err)
	assert.Equal(t, 10, pr.Cap())
	_, err = ParsePortRange("10-9")
	assert.Error(t, err)
}

func Test_ParsePeerID(t *testing.T) {
	id, err := ParsePeerID("127.0.0.1:10000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:10000", id.String())
	assert.Equal(t, "/tmp/halo-10000.sock", id.SockFile())
	_, err = ParsePeerID("127.0.0.1:70000")
	assert.Error(t, err)
	_, err = ParsePeerID("localhost:1")
	assert.Error(t, err)
	_, err = ParsePeerID("[::1]:1")
	assert.Error(t, err)
}

func Test_IPv4(t *testing.T) {
	ipv4 := MustParseIPv4("192.168.1.11")
	assert.Equal(t, uint32(192<<24|168<<16|1<<8|11), ipv4)
	assert.Equal(t, "192.168.1.11", FormatIPv4(ipv4))
	_, err := ParseIPv4("::1")
	assert.Error(t, err)
	a := PeerID{IPv4: ipv4, Port: 10001}.WithName("halo:0")
	assert.Equal(t, "halo:0@192.168.1.11:10001", a.String())
	assert.True(t, a.Peer().ColocatedWith(PeerID{IPv4: ipv4}))
}
