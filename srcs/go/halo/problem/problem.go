// Package problem describes one stencil run: grid shape, iterations,
// reduction period and kernel.
package problem

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lsds/halo/srcs/go/halo/engine"
	"github.com/lsds/halo/srcs/go/halo/grid"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Problem struct {
	Rows    int     `yaml:"rows" toml:"rows" json:"rows"`
	Cols    int     `yaml:"cols" toml:"cols" json:"cols"`
	Steps   int     `yaml:"steps" toml:"steps" json:"steps"`
	Period  int     `yaml:"period" toml:"period" json:"period"`
	Root    int     `yaml:"root" toml:"root" json:"root"`
	Workers int     `yaml:"workers" toml:"workers" json:"workers"`
	Scale   float64 `yaml:"scale" toml:"scale" json:"scale"`
	Kernel  string  `yaml:"kernel" toml:"kernel" json:"kernel"`
	Alpha   float64 `yaml:"alpha" toml:"alpha" json:"alpha"`
	Policy  string  `yaml:"policy" toml:"policy" json:"policy"`
}

const (
	KernelFivePoint = "five-point"
	KernelDiffusion = "diffusion"
)

// Default is 4 rows per rank of an 8 column grid on 2 ranks, 10 steps, period 5.
func Default() Problem {
	return Problem{
		Rows:   8,
		Cols:   8,
		Steps:  10,
		Period: 5,
		Scale:  1,
		Kernel: KernelFivePoint,
		Alpha:  0.1,
		Policy: grid.Strict.String(),
	}
}

var errUnknownFormat = errors.New("unknown problem file format")

// Load reads a problem file. The format is chosen by extension: .yaml, .yml, .toml or .json.
// Fields missing from the file keep their default values.
func Load(path string) (*Problem, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bs, &p)
	case ".toml":
		err = toml.Unmarshal(bs, &p)
	case ".json":
		err = json.Unmarshal(bs, &p)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// RegisterFlags binds the fields of p to flags, so that flags parsed
// after Load override the file.
func (p *Problem) RegisterFlags(flag *flag.FlagSet) {
	flag.IntVar(&p.Rows, "rows", p.Rows, "global number of rows")
	flag.IntVar(&p.Cols, "cols", p.Cols, "global number of columns")
	flag.IntVar(&p.Steps, "steps", p.Steps, "number of iterations")
	flag.IntVar(&p.Period, "period", p.Period, "reduction period")
	flag.IntVar(&p.Root, "root", p.Root, "rank receiving the reduced sum")
	flag.IntVar(&p.Workers, "workers", p.Workers, "compute workers per rank, 0 for one per CPU")
	flag.Float64Var(&p.Scale, "scale", p.Scale, "cells of rank r start at scale * (r + 1)")
	flag.StringVar(&p.Kernel, "kernel", p.Kernel, fmt.Sprintf("%s | %s", KernelFivePoint, KernelDiffusion))
	flag.Float64Var(&p.Alpha, "alpha", p.Alpha, "diffusion coefficient")
	flag.StringVar(&p.Policy, "policy", p.Policy, fmt.Sprintf("%s | %s", grid.Strict, grid.Balanced))
}

func (p Problem) KernelFunc() (grid.RowKernel, error) {
	switch p.Kernel {
	case KernelFivePoint, "":
		return grid.FivePoint, nil
	case KernelDiffusion:
		return grid.Diffusion(p.Alpha), nil
	default:
		return nil, fmt.Errorf("invalid kernel %q", p.Kernel)
	}
}

func (p Problem) Seed() grid.Seed {
	return grid.RankScaled(p.Scale)
}

// Layout partitions the grid over procs ranks.
func (p Problem) Layout(procs int) (*grid.Layout, error) {
	policy, err := grid.ParsePolicy(p.Policy)
	if err != nil {
		return nil, err
	}
	return grid.NewLayout(p.Rows, p.Cols, procs, policy)
}

func (p Problem) EngineConfig() (engine.Config, error) {
	k, err := p.KernelFunc()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Steps:   p.Steps,
		Period:  p.Period,
		Root:    p.Root,
		Kernel:  k,
		Workers: p.Workers,
	}, nil
}

// Validate checks p against procs ranks.
func (p Problem) Validate(procs int) error {
	if p.Steps < 0 {
		return fmt.Errorf("invalid steps: %d", p.Steps)
	}
	if p.Period < 2 {
		return fmt.Errorf("invalid period: %d", p.Period)
	}
	if p.Root < 0 || p.Root >= procs {
		return fmt.Errorf("invalid root %d of %d", p.Root, procs)
	}
	if _, err := p.KernelFunc(); err != nil {
		return err
	}
	_, err := p.Layout(procs)
	return err
}

func (p Problem) String() string {
	return fmt.Sprintf("%dx%d, %d steps, period %d, root %d, kernel %s, policy %s", p.Rows, p.Cols, p.Steps, p.Period, p.Root, p.Kernel, p.Policy)
}
