// Package monitor counts per-peer traffic and named events, and exposes them
// in Prometheus text format when monitoring is enabled.
package monitor

import (
	"io"
	"net/http"
	"time"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/log"
	"github.com/lsds/halo/srcs/go/plan"
)

type Monitor interface {
	http.Handler

	Egress(n int64, a plan.NetAddr)
	Ingress(n int64, a plan.NetAddr)
	// GetEgressRates returns the last sampled send rate to each addr, in bytes per second.
	GetEgressRates(addrs []plan.NetAddr) []float64

	// Count adds n to the named event counter.
	Count(name string, n int64)
}

var defaultMonitor = newMonitor(config.EnableMonitoring, config.MonitoringPeriod)

func GetMonitor() Monitor { return defaultMonitor }

func newMonitor(enabled bool, period time.Duration) Monitor {
	if !enabled {
		return noop{}
	}
	m := &metrics{
		egress:  newDirection("egress"),
		ingress: newDirection("ingress"),
		events:  newEvents(),
	}
	if period > 0 {
		go m.sampleEvery(period)
	}
	return m
}

type noop struct{}

func (noop) Egress(int64, plan.NetAddr)  {}
func (noop) Ingress(int64, plan.NetAddr) {}
func (noop) Count(string, int64)         {}

func (noop) GetEgressRates(addrs []plan.NetAddr) []float64 {
	log.Warnf("monitoring is not enabled")
	return make([]float64, len(addrs))
}

func (noop) ServeHTTP(http.ResponseWriter, *http.Request) {}

type metrics struct {
	egress  *direction
	ingress *direction
	events  *events
}

func (m *metrics) sampleEvery(period time.Duration) {
	tk := time.NewTicker(period)
	for range tk.C {
		m.egress.sample(period)
		m.ingress.sample(period)
	}
}

func (m *metrics) Egress(n int64, a plan.NetAddr)  { m.egress.peer(a).total.Add(n) }
func (m *metrics) Ingress(n int64, a plan.NetAddr) { m.ingress.peer(a).total.Add(n) }
func (m *metrics) Count(name string, n int64)      { m.events.add(name, n) }

func (m *metrics) GetEgressRates(addrs []plan.NetAddr) []float64 {
	return m.egress.rates(addrs)
}

func (m *metrics) writeTo(w io.Writer) {
	m.egress.writeTo(w)
	m.ingress.writeTo(w)
	m.events.writeTo(w)
}

func (m *metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	m.writeTo(w)
}
