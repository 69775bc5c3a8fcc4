package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/lsds/halo/srcs/go/halo/comm"
	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/halo/engine"
	"github.com/lsds/halo/srcs/go/halo/env"
	"github.com/lsds/halo/srcs/go/halo/peer"
	"github.com/lsds/halo/srcs/go/halo/problem"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/monitor"
	"github.com/lsds/halo/srcs/go/utils"
)

var (
	np          = flag.Int("np", 2, "number of in-process ranks, ignored under halo-run")
	problemFile = flag.String("problem", "", "path to a .yaml, .toml or .json problem file")
	port        = flag.Int("monitor-port", 9100, "port of /metrics for in-process runs")
)

func problemPath(args []string) string {
	for i, a := range args {
		a = strings.TrimPrefix(strings.TrimPrefix(a, "-"), "-")
		if v, ok := strings.CutPrefix(a, "problem="); ok {
			return v
		}
		if a == "problem" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// loadProblem reads -problem first so that the remaining flags override it.
func loadProblem() (*problem.Problem, error) {
	p := problem.Default()
	if path := problemPath(os.Args[1:]); len(path) > 0 {
		q, err := problem.Load(path)
		if err != nil {
			return nil, err
		}
		p = *q
	}
	p.RegisterFlags(flag.CommandLine)
	flag.Parse()
	return &p, nil
}

func main() {
	p, err := loadProblem()
	if err != nil {
		utils.ExitErr(err)
	}
	t0 := time.Now()
	defer func(prog string) { log.Infof("%s took %s", prog, time.Since(t0)) }(utils.ProgName())
	cfg, err := env.ParseConfigFromEnv()
	if err != nil {
		utils.ExitErr(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run := runPeer
	if cfg.Single {
		run = runWorld
	}
	if err := run(ctx, p, cfg); err != nil {
		utils.ExitErr(err)
	}
}

func runWorld(ctx context.Context, p *problem.Problem, _ *env.Config) error {
	if err := p.Validate(*np); err != nil {
		return err
	}
	layout, _ := p.Layout(*np)
	ecfg, _ := p.EngineConfig()
	if config.EnableMonitoring {
		monitor.StartServer(*port)
		defer monitor.StopServer()
	}
	log.Infof("running %s on %s in-process", p, layout)
	results, err := engine.RunWorld(ctx, layout, p.Seed(), ecfg)
	if err != nil {
		return err
	}
	report(results[p.Root])
	return nil
}

// runPeer returns errors instead of exiting so that Close tears down the
// listeners and the unix socket.
func runPeer(ctx context.Context, p *problem.Problem, cfg *env.Config) error {
	procs := len(cfg.InitPeers)
	if err := p.Validate(procs); err != nil {
		return err
	}
	layout, _ := p.Layout(procs)
	ecfg, _ := p.EngineConfig()
	q, err := peer.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer q.Close()
	if err := q.Start(ctx); err != nil {
		return err
	}
	e, err := engine.New(comm.New(q), layout, p.Seed(), ecfg)
	if err != nil {
		return err
	}
	r, err := e.Run(ctx)
	if err != nil {
		return err
	}
	if r.HasTotal {
		report(r)
	}
	return nil
}

func report(r *engine.Result) {
	for _, rec := range r.Records {
		log.Infof("reduction issued at step %d completed at step %d: total=%g", rec.IssuedAt, rec.CompletedAt, rec.Total)
	}
	log.Infof("rank %d: %d steps, final total %g, took %s", r.Rank, r.Steps, r.Total, r.Took)
}
