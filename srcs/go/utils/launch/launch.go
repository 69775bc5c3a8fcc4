// Package launch starts a batch of worker processes, either as children of
// this process or over ssh, and waits for all of them.
package launch

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/proc"
	"github.com/lsds/halo/srcs/go/utils"
	"github.com/lsds/halo/srcs/go/utils/iostream"
	"github.com/lsds/halo/srcs/go/utils/ssh"
	"golang.org/x/sync/errgroup"
)

// FailedError reports how many processes of a batch failed. It unwraps to
// the first failure.
type FailedError struct {
	Failed int
	Total  int
	first  error
}

func (e *FailedError) Error() string {
	return utils.Pluralize(e.Failed, "process", "processes") + " failed, first error: " + e.first.Error()
}

func (e *FailedError) Unwrap() error { return e.first }

// all runs start for every process and cancels the rest once one fails.
func all(ctx context.Context, ps []proc.Proc, start func(context.Context, int, proc.Proc) error) error {
	g, ctx := errgroup.WithContext(ctx)
	var failed atomic.Int32
	for i, p := range ps {
		g.Go(func() error {
			t0 := time.Now()
			if err := start(ctx, i, p); err != nil {
				log.Errorf("%s exited with error after %s: %v", p.Name, time.Since(t0), err)
				failed.Add(1)
				return err
			}
			log.Debugf("%s finished after %s", p.Name, time.Since(t0))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &FailedError{Failed: int(failed.Load()), Total: len(ps), first: err}
	}
	return nil
}

func sinks(i int, p proc.Proc, verbose bool) []iostream.Sink {
	var ss []iostream.Sink
	if verbose {
		ss = append(ss, iostream.Console(p.Name, i))
	}
	if p.LogDir != "" {
		ss = append(ss, iostream.LogFiles(filepath.Join(p.LogDir, strings.ReplaceAll(p.Name, "/", "-"))))
	}
	return ss
}

func closeSinks(ss []iostream.Sink) {
	for _, s := range ss {
		for _, w := range []io.Writer{s.Stdout, s.Stderr} {
			if c, ok := w.(io.Closer); ok {
				c.Close()
			}
		}
	}
}

// Local runs every process as a child of this one.
func Local(ctx context.Context, ps []proc.Proc, verbose bool) error {
	return all(ctx, ps, func(ctx context.Context, i int, p proc.Proc) error {
		ss := sinks(i, p, verbose)
		defer closeSinks(ss)
		return runCmd(ctx, p.Cmd(), ss...)
	})
}

// Remote runs every process on its Hostname over ssh as user.
func Remote(ctx context.Context, user string, ps []proc.Proc, verbose bool) error {
	return all(ctx, ps, func(ctx context.Context, i int, p proc.Proc) error {
		c, err := ssh.Dial(ssh.Target{User: user, Host: p.Hostname})
		if err != nil {
			return err
		}
		defer c.Close()
		ss := sinks(i, p, verbose)
		defer closeSinks(ss)
		return c.Run(ctx, p.Script(), ss...)
	})
}

// runCmd starts cmd and waits for it, killing it when ctx is done.
func runCmd(ctx context.Context, cmd *exec.Cmd, ss ...iostream.Sink) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	pumps := iostream.Pipes{Stdout: stdout, Stderr: stderr}.Start(ss...)
	done := make(chan error, 1)
	go func() {
		// the pipes must be drained before Wait closes them
		pumps.Wait()
		done <- cmd.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}
