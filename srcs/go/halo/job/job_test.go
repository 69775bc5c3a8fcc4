package job

import (
	"testing"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/halo/env"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(t *testing.T) Job {
	hl, err := plan.ParseHostList("192.168.1.11:2:node1,192.168.1.12:2")
	require.NoError(t, err)
	pl, err := hl.GenPeerList(3, plan.DefaultPortRange)
	require.NoError(t, err)
	return Job{
		Parent:   plan.PeerID{IPv4: hl[0].IPv4},
		HostList: hl,
		Peers:    pl,
		Token:    42,
		Prog:     "halo-stencil",
		Args:     []string{"-steps", "4"},
		LogDir:   "logs",
	}
}

func Test_NewProc(t *testing.T) {
	t.Setenv(config.LogLevelEnvKey, "DEBUG")
	j := testJob(t)
	p := j.NewProc(j.Peers[2])
	assert.Equal(t, "192.168.1.12.10000", p.Name)
	assert.Equal(t, "halo-stencil", p.Prog)
	assert.Equal(t, []string{"-steps", "4"}, p.Args)
	assert.Equal(t, "192.168.1.12", p.Hostname)
	assert.Equal(t, j.Peers[2].String(), p.Envs[env.SelfSpecEnvKey])
	assert.Equal(t, j.Peers.String(), p.Envs[env.PeerListEnvKey])
	assert.Equal(t, "42", p.Envs[env.JobTokenEnvKey])
	assert.Equal(t, "DEBUG", p.Envs[config.LogLevelEnvKey])

	p = j.NewProc(j.Peers[0])
	assert.Equal(t, "node1", p.Hostname)
}

func Test_CreateProcs(t *testing.T) {
	j := testJob(t)
	assert.Len(t, j.CreateProcs(j.HostList[0].IPv4), 2)
	assert.Len(t, j.CreateProcs(j.HostList[1].IPv4), 1)
	assert.Len(t, j.CreateAllProcs(), 3)
	assert.Equal(t, []string{"halo-stencil", "-steps", "4"}, j.ProgAndArgs())
}
