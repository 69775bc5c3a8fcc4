// Package env reads the identity of a worker from the variables halo-run
// sets when launching it.
package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lsds/halo/srcs/go/plan"
)

// Set by halo-run, not by users.
const (
	ParentIDEnvKey = `HALO_PARENT_ID`
	PeerListEnvKey = `HALO_INIT_PEERS`
	SelfSpecEnvKey = `HALO_SELF_SPEC`
	JobTokenEnvKey = `HALO_JOB_TOKEN`
)

type Config struct {
	Parent    plan.PeerID
	Self      plan.PeerID
	InitPeers plan.PeerList
	Token     uint32

	// Single is set when the process was started without halo-run.
	Single bool
}

// Rank of Self in InitPeers.
func (c Config) Rank() int {
	rank, _ := c.InitPeers.Rank(c.Self)
	return rank
}

// ParseConfigFromEnv falls back to a one-peer config when HALO_SELF_SPEC is unset.
func ParseConfigFromEnv() (*Config, error) {
	return parse(os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func required(lookup lookupFunc, key string) (string, error) {
	v, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%s not set", key)
	}
	return v, nil
}

func peerID(lookup lookupFunc, key string) (plan.PeerID, error) {
	v, err := required(lookup, key)
	if err != nil {
		return plan.PeerID{}, err
	}
	id, err := plan.ParsePeerID(v)
	if err != nil {
		return plan.PeerID{}, fmt.Errorf("%s: %w", key, err)
	}
	return *id, nil
}

func parse(lookup lookupFunc) (*Config, error) {
	if _, ok := lookup(SelfSpecEnvKey); !ok {
		return singleProcess(), nil
	}
	var c Config
	var err error
	if c.Self, err = peerID(lookup, SelfSpecEnvKey); err != nil {
		return nil, err
	}
	if c.Parent, err = peerID(lookup, ParentIDEnvKey); err != nil {
		return nil, err
	}
	peers, err := required(lookup, PeerListEnvKey)
	if err != nil {
		return nil, err
	}
	if c.InitPeers, err = plan.ParsePeerList(peers); err != nil {
		return nil, fmt.Errorf("%s: %w", PeerListEnvKey, err)
	}
	if _, ok := c.InitPeers.Rank(c.Self); !ok {
		return nil, fmt.Errorf("%s=%s not in %s", SelfSpecEnvKey, c.Self, PeerListEnvKey)
	}
	if v, _ := lookup(JobTokenEnvKey); v != "" {
		token, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", JobTokenEnvKey, v)
		}
		c.Token = uint32(token)
	}
	return &c, nil
}

// SingleMachineEnv describes rank of size peers on the default host.
func SingleMachineEnv(rank, size int) (*Config, error) {
	pl, err := plan.DefaultHostList.GenPeerList(size, plan.DefaultPortRange)
	if err != nil {
		return nil, err
	}
	return &Config{Self: pl[rank], InitPeers: pl}, nil
}

func singleProcess() *Config {
	self := plan.PeerID{IPv4: plan.DefaultHostList[0].IPv4, Port: plan.DefaultPortRange.Begin}
	return &Config{Self: self, InitPeers: plan.PeerList{self}, Single: true}
}
