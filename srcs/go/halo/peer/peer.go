// Package peer connects the ranks of a job that run as separate processes.
package peer

import (
	"context"
	"fmt"

	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/halo/env"
	"github.com/lsds/halo/srcs/go/halo/execution"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/rchannel/connection"
	"github.com/lsds/halo/srcs/go/rchannel/server"
	"github.com/lsds/halo/srcs/go/utils"
)

// Peer is a comm.Transport over the rchannel connections of one process.
type Peer struct {
	self   plan.PeerID
	peers  plan.PeerList
	rank   int
	token  uint32
	single bool
	router *router
	server server.Server
}

func New() (*Peer, error) {
	cfg, err := env.ParseConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg)
}

func NewFromConfig(cfg *env.Config) (*Peer, error) {
	rank, ok := cfg.InitPeers.Rank(cfg.Self)
	if !ok {
		return nil, fmt.Errorf("%s not in %s", cfg.Self, cfg.InitPeers)
	}
	router := newRouter(cfg.Self, cfg.Token)
	return &Peer{
		self:   cfg.Self,
		peers:  cfg.InitPeers,
		rank:   rank,
		token:  cfg.Token,
		single: cfg.Single,
		router: router,
		server: server.New(cfg.Self, router, config.UseUnixSock),
	}, nil
}

// Start listens and waits until every other peer answers a ping.
func (p *Peer) Start(ctx context.Context) error {
	if p.single {
		return nil
	}
	p.server.SetToken(p.token)
	if err := p.server.Start(); err != nil {
		return err
	}
	if config.EnableMonitoring {
		monitoringPort := p.self.Port + 10000
		monitor.StartServer(int(monitoringPort))
		log.Infof("peer %s started, monitoring endpoint http://%s/metrics", p.self, plan.NetAddr{IPv4: p.self.IPv4, Port: monitoringPort})
	}
	if config.EnableStallDetection {
		defer utils.InstallStallDetector(fmt.Sprintf("waiting %s", utils.Pluralize(len(p.peers)-1, "peer", "peers")), config.StallReportPeriod).Stop()
	}
	ctx, cancel := context.WithTimeout(ctx, config.WaitPeerTimeout)
	defer cancel()
	return execution.Par(p.peers.Others(p.self), func(q plan.PeerID) error {
		n, err := p.router.wait(ctx, q)
		if err == nil && n > 0 {
			log.Debugf("%s answered after %d failed pings", q, n)
		}
		return err
	})
}

func (p *Peer) Close() error {
	if p.single {
		return nil
	}
	if config.EnableMonitoring {
		p.logEgressRates()
		monitor.StopServer()
	}
	p.router.client.Close()
	p.server.Close()
	return nil
}

func (p *Peer) logEgressRates() {
	others := p.peers.Others(p.self)
	addrs := make([]plan.NetAddr, len(others))
	for i, q := range others {
		addrs[i] = plan.NetAddr(q)
	}
	for i, r := range monitor.GetMonitor().GetEgressRates(addrs) {
		log.Infof("egress rate to %s: %s", addrs[i], utils.ShowRate(r))
	}
}

func (p *Peer) Self() plan.PeerID { return p.self }

func (p *Peer) Peers() plan.PeerList { return p.peers }

func (p *Peer) Rank() int { return p.rank }

func (p *Peer) Size() int { return len(p.peers) }

func (p *Peer) addr(rank int, name string) (plan.Addr, error) {
	if rank < 0 || rank >= len(p.peers) {
		return plan.Addr{}, fmt.Errorf("rank %d out of range [0, %d)", rank, len(p.peers))
	}
	return p.peers[rank].WithName(name), nil
}

func connType(kind comm.Kind) connection.ConnType {
	if kind == comm.KindCollective {
		return connection.ConnCollective
	}
	return connection.ConnHalo
}

// Send writes data to the connection of dst. The message is buffered by the
// receiving peer, so Send returns before it is matched.
// ctx is checked only before the write starts: a write blocked on a stalled
// TCP connection is not interrupted by cancelling ctx, and ends when the
// connection is closed by Close.
func (p *Peer) Send(ctx context.Context, dst int, kind comm.Kind, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a, err := p.addr(dst, name)
	if err != nil {
		return err
	}
	return p.router.client.Send(a, data, connType(kind), connection.NoFlag)
}

func (p *Peer) Recv(ctx context.Context, src int, kind comm.Kind, name string, buf []byte) error {
	a, err := p.addr(src, name)
	if err != nil {
		return err
	}
	if kind == comm.KindCollective {
		// collective names carry a sequence number and are never reused
		return p.router.collective.RecvOnce(ctx, a, buf)
	}
	return p.router.halo.RecvInto(ctx, a, buf)
}

var _ comm.Transport = (*Peer)(nil)
