// Package proc describes worker processes and how to start them, locally
// with os/exec or remotely as a shell line.
package proc

import (
	"maps"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
)

// Envs holds environment variables to set on top of the inherited ones.
type Envs map[string]string

func (e Envs) AddIfMissing(k, v string) {
	if _, ok := e[k]; !ok {
		e[k] = v
	}
}

// Merge returns a new Envs in which f overrides e.
func Merge(e, f Envs) Envs {
	g := maps.Clone(e)
	if g == nil {
		g = make(Envs)
	}
	maps.Copy(g, f)
	return g
}

// apply overlays e on a KEY=VALUE list and returns the result sorted by key.
func (e Envs) apply(environ []string) []string {
	all := make(Envs)
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			all[k] = v
		}
	}
	maps.Copy(all, e)
	out := make([]string, 0, len(all))
	for _, k := range slices.Sorted(maps.Keys(all)) {
		out = append(out, k+"="+all[k])
	}
	return out
}

type Proc struct {
	Name     string
	Prog     string
	Args     []string
	Envs     Envs
	Hostname string
	LogDir   string
	Dir      string
}

// Cmd returns a command that inherits the current environment plus p.Envs.
func (p Proc) Cmd() *exec.Cmd {
	cmd := exec.Command(p.Prog, p.Args...)
	cmd.Env = p.Envs.apply(os.Environ())
	cmd.Dir = p.Dir
	return cmd
}

// Script renders p as a single shell command line.
func (p Proc) Script() string {
	var sb strings.Builder
	if p.Dir != "" {
		sb.WriteString("cd " + strconv.Quote(p.Dir) + " && ")
	}
	sb.WriteString("env")
	for _, k := range slices.Sorted(maps.Keys(p.Envs)) {
		sb.WriteString(" " + k + "=" + strconv.Quote(p.Envs[k]))
	}
	sb.WriteString(" " + p.Prog)
	for _, a := range p.Args {
		sb.WriteString(" " + strconv.Quote(a))
	}
	return sb.String()
}
