package monitor

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lsds/halo/srcs/go/plan"
)

// traffic tracks the bytes sent to (or received from) one peer and the
// rate observed over the last sampling period.
type traffic struct {
	total atomic.Int64

	mu   sync.Mutex
	seen int64
	rate float64
}

func (t *traffic) sample(period time.Duration) {
	now := t.total.Load()
	t.mu.Lock()
	t.rate = float64(now-t.seen) / period.Seconds()
	t.seen = now
	t.mu.Unlock()
}

func (t *traffic) lastRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

// direction is the per-peer traffic in one direction, e.g. "egress".
type direction struct {
	name  string
	mu    sync.Mutex
	peers map[plan.NetAddr]*traffic
}

func newDirection(name string) *direction {
	return &direction{name: name, peers: make(map[plan.NetAddr]*traffic)}
}

func (d *direction) peer(a plan.NetAddr) *traffic {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.peers[a]
	if !ok {
		t = &traffic{}
		d.peers[a] = t
	}
	return t
}

func (d *direction) sample(period time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.peers {
		t.sample(period)
	}
}

func (d *direction) rates(addrs []plan.NetAddr) []float64 {
	rs := make([]float64, len(addrs))
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range addrs {
		if t, ok := d.peers[a]; ok {
			rs[i] = t.lastRate()
		}
	}
	return rs
}

func (d *direction) writeTo(w io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	addrs := slices.SortedFunc(maps.Keys(d.peers), func(a, b plan.NetAddr) int {
		return cmp.Or(cmp.Compare(a.IPv4, b.IPv4), cmp.Compare(a.Port, b.Port))
	})
	for _, a := range addrs {
		t := d.peers[a]
		fmt.Fprintf(w, "%s_total_bytes{peer=%q} %d\n", d.name, a.String(), t.total.Load())
		fmt.Fprintf(w, "%s_rate_bytes_per_sec{peer=%q} %f\n", d.name, a.String(), t.lastRate())
	}
}

// events is a set of named counters.
type events struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

func newEvents() *events {
	return &events{counters: make(map[string]*atomic.Int64)}
}

func (e *events) add(name string, n int64) {
	e.mu.Lock()
	c, ok := e.counters[name]
	if !ok {
		c = new(atomic.Int64)
		e.counters[name] = c
	}
	e.mu.Unlock()
	c.Add(n)
}

func (e *events) writeTo(w io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range slices.Sorted(maps.Keys(e.counters)) {
		fmt.Fprintf(w, "%s %d\n", name, e.counters[name].Load())
	}
}
