package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lsds/halo/srcs/go/halo/engine"
	"github.com/lsds/halo/srcs/go/halo/grid"
	"github.com/lsds/halo/srcs/go/halo/problem"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/utils"
)

type bench struct {
	problem.Problem
	np     int
	warmup int
}

func parseFlags(args []string) (*bench, error) {
	b := bench{Problem: problem.Default(), np: 4, warmup: 2}
	b.Rows, b.Cols, b.Steps = 4096, 4096, 20
	b.Policy = grid.Balanced.String()
	f := flag.NewFlagSet(utils.ProgName(), flag.ContinueOnError)
	b.RegisterFlags(f)
	f.IntVar(&b.np, "np", b.np, "number of in-process ranks")
	f.IntVar(&b.warmup, "warmup", b.warmup, "steps of a throwaway run before measuring, warms the Go runtime only")
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if err := b.Validate(b.np); err != nil {
		return nil, err
	}
	return &b, nil
}

// run returns the wall time of the measured run.
func (b *bench) run(ctx context.Context) (time.Duration, error) {
	layout, err := b.Layout(b.np)
	if err != nil {
		return 0, err
	}
	cfg, err := b.EngineConfig()
	if err != nil {
		return 0, err
	}
	if b.warmup > 0 {
		cfg.Steps = b.warmup
		if _, err := engine.RunWorld(ctx, layout, b.Seed(), cfg); err != nil {
			return 0, err
		}
	}
	cfg.Steps = b.Steps
	return utils.Measure(func() error {
		_, err := engine.RunWorld(ctx, layout, b.Seed(), cfg)
		return err
	})
}

func main() {
	b, err := parseFlags(os.Args[1:])
	if err != nil {
		utils.ExitErr(err)
	}
	log.Infof("benchmarking %s on %d ranks", b.Problem, b.np)
	took, err := b.run(context.Background())
	if err != nil {
		utils.ExitErr(err)
	}
	cells := int64(b.Steps) * int64(b.Rows) * int64(b.Cols)
	haloBytes := int64(b.Steps) * int64(b.np) * 2 * int64(b.Cols) * 8
	log.Infof("Result: %d steps took %s, %.2f Mcell/s, halo rate: %s",
		b.Steps, took, utils.Rate(cells, took)/1e6, utils.ShowRate(utils.Rate(haloBytes, took)))
}
