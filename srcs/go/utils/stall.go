package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// StallDetector complains every period until stopped.
type StallDetector struct {
	name   string
	w      io.Writer
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// InstallStallDetector starts a StallDetector writing to stderr.
func InstallStallDetector(name string, period time.Duration) *StallDetector {
	return installStallDetector(name, period, os.Stderr)
}

func installStallDetector(name string, period time.Duration, w io.Writer) *StallDetector {
	s := &StallDetector{
		name:   name,
		w:      w,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.watch()
	return s
}

func (s *StallDetector) watch() {
	defer close(s.done)
	t0 := time.Now()
	tk := time.NewTicker(s.period)
	defer tk.Stop()
	stalled := false
	for {
		select {
		case <-tk.C:
			stalled = true
			fmt.Fprintf(s.w, "%s stalled for %s\n", s.name, time.Since(t0).Round(time.Millisecond))
		case <-s.stop:
			if stalled {
				fmt.Fprintf(s.w, "%s recovered after %s\n", s.name, time.Since(t0).Round(time.Millisecond))
			}
			return
		}
	}
}

// Stop ends the detector and waits for its last report.
func (s *StallDetector) Stop() {
	close(s.stop)
	<-s.done
}
