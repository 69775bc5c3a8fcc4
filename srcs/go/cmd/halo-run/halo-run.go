// halo-run starts one halo-stencil (or any other program) per peer:
//
//	halo-run -np 4 -H 10.0.0.1:2,10.0.0.2:2 halo-stencil -steps 100
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lsds/halo/srcs/go/halo/runner"
	"github.com/lsds/halo/srcs/go/log"
)

func main() {
	var f runner.FlagSet
	runner.Init(&f, os.Args)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	t0 := time.Now()
	err := runner.Run(ctx, &f)
	log.Infof("%s finished in %s", f.Prog, time.Since(t0))
	if err != nil {
		log.Exitf("%v", err)
	}
}
