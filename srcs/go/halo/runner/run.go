// Package runner implements halo-run, which starts one worker process per peer.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/lsds/halo/srcs/go/halo/job"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/utils"
	"github.com/lsds/halo/srcs/go/utils/launch"
)

// NewJob builds the peer list of f and the job that runs f.Prog on it.
func NewJob(f *FlagSet, t0 time.Time) (*job.Job, uint32, error) {
	selfIPv4, err := plan.ParseIPv4(f.Self)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid -self %q: %w", f.Self, err)
	}
	peers, err := f.HostList.GenPeerList(f.ClusterSize, f.PortRange)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create peers: %w", err)
	}
	return &job.Job{
		Parent:   plan.PeerID{IPv4: selfIPv4},
		HostList: f.HostList,
		Peers:    peers,
		Token:    uint32(t0.Unix()),
		Prog:     f.Prog,
		Args:     f.Args,
		LogDir:   f.LogDir,
	}, selfIPv4, nil
}

// Run launches the job of f and waits for every process.
func Run(ctx context.Context, f *FlagSet) error {
	t0 := time.Now()
	j, selfIPv4, err := NewJob(f, t0)
	if err != nil {
		return err
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	if f.Remote {
		procs := j.CreateAllProcs()
		log.Infof("will run %s of %s over ssh", utils.Pluralize(len(procs), "instance", "instances"), j.DebugString())
		d, err := utils.Measure(func() error { return launch.Remote(ctx, f.User, procs, f.VerboseLog) })
		log.Infof("all %d peers finished, took %s", len(procs), d)
		return err
	}
	procs := j.CreateProcs(selfIPv4)
	if len(procs) == 0 {
		return fmt.Errorf("no peer on %s in %s", plan.FormatIPv4(selfIPv4), j.Peers)
	}
	log.Infof("will parallel run %d instances of %s with %q", len(procs), j.Prog, j.Args)
	d, err := utils.Measure(func() error { return launch.Local(ctx, procs, f.VerboseLog) })
	log.Infof("all %d/%d local peers finished, took %s", len(procs), len(j.Peers), d)
	return err
}
