package job

import (
	"fmt"
	"maps"
	"os"
	"strconv"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/halo/env"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/proc"
)

// Job is one launch of a program on every peer of a peer list.
type Job struct {
	Parent   plan.PeerID
	HostList plan.HostList
	Peers    plan.PeerList
	Token    uint32
	Prog     string
	Args     []string
	LogDir   string
}

// NewProc is the process of peer. It inherits the HALO_CONFIG_* settings
// of halo-run and learns its identity from the HALO_* variables of env.
func (j Job) NewProc(peer plan.PeerID) proc.Proc {
	envs := forwardedConfig()
	maps.Copy(envs, proc.Envs{
		env.SelfSpecEnvKey: peer.String(),
		env.ParentIDEnvKey: j.Parent.String(),
		env.PeerListEnvKey: j.Peers.String(),
		env.JobTokenEnvKey: strconv.FormatUint(uint64(j.Token), 10),
	})
	return proc.Proc{
		Name:     plan.FormatIPv4(peer.IPv4) + "." + strconv.Itoa(int(peer.Port)),
		Prog:     j.Prog,
		Args:     j.Args,
		Envs:     envs,
		Hostname: j.HostList.LookupPublicAddr(peer.IPv4),
		LogDir:   j.LogDir,
	}
}

func (j Job) procsOf(pl plan.PeerList) []proc.Proc {
	ps := make([]proc.Proc, len(pl))
	for i, p := range pl {
		ps[i] = j.NewProc(p)
	}
	return ps
}

// CreateProcs returns the processes to start on host.
func (j Job) CreateProcs(host uint32) []proc.Proc { return j.procsOf(j.Peers.On(host)) }

// CreateAllProcs returns the processes of every host, for launching over ssh.
func (j Job) CreateAllProcs() []proc.Proc { return j.procsOf(j.Peers) }

func (j Job) ProgAndArgs() []string { return append([]string{j.Prog}, j.Args...) }

func forwardedConfig() proc.Envs {
	envs := make(proc.Envs)
	for _, k := range config.ConfigEnvKeys {
		if v := os.Getenv(k); v != "" {
			envs[k] = v
		}
	}
	return envs
}

func (j Job) DebugString() string {
	return fmt.Sprintf("job{prog=%s, args=%q, peers=%s}", j.Prog, j.Args, j.Peers)
}
