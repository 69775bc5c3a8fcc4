// Package iostream fans the output of child processes out to the console
// and to per-process log files.
package iostream

import (
	"bufio"
	"io"

	"golang.org/x/sync/errgroup"
)

// Pump copies r to every w one line at a time, adding a final newline
// if r does not end with one.
func Pump(r io.Reader, ws ...io.Writer) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var line []byte
	for s.Scan() {
		line = append(append(line[:0], s.Bytes()...), '\n')
		for _, w := range ws {
			w.Write(line)
		}
	}
	return s.Err()
}

// Sink is where the two output streams of one process go.
type Sink struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Pipes are the two output streams of a running process.
type Pipes struct {
	Stdout io.Reader
	Stderr io.Reader
}

// Start pumps both pipes into every sink. The returned group finishes once
// both pipes reach EOF.
func (p Pipes) Start(sinks ...Sink) *errgroup.Group {
	var outs, errs []io.Writer
	for _, s := range sinks {
		outs = append(outs, s.Stdout)
		errs = append(errs, s.Stderr)
	}
	var g errgroup.Group
	g.Go(func() error { return Pump(p.Stdout, outs...) })
	g.Go(func() error { return Pump(p.Stderr, errs...) })
	return &g
}
