// Package config loads the HCL configuration shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/drawpoker/internal/learner"
	"github.com/lox/drawpoker/internal/policy"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "drawpoker.hcl"

// Paths locates the persisted data files.
type Paths struct {
	Table string
	Bins  string // empty means the built-in bin set
	Stats string
}

// Config is the resolved configuration.
type Config struct {
	AgentName string
	Paths     Paths
	Learner   learner.Config
	Policy    policy.Config
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		AgentName: "drawbot",
		Paths: Paths{
			Table: "hands.json",
			Stats: "stats_dump",
		},
		Learner: learner.DefaultConfig(),
		Policy:  policy.DefaultConfig(),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.AgentName == "" {
		return errors.New("agent name is required")
	}
	if c.Paths.Table == "" {
		return errors.New("table path is required")
	}
	if c.Paths.Stats == "" {
		return errors.New("stats path is required")
	}
	if err := c.Learner.Validate(); err != nil {
		return fmt.Errorf("learner: %w", err)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	return nil
}

// file mirrors the HCL layout. Every attribute is optional and falls back to
// the default of the field it overrides.
type file struct {
	AgentName *string       `hcl:"agent_name,optional"`
	Paths     *pathsBlock   `hcl:"paths,block"`
	Learner   *learnerBlock `hcl:"learner,block"`
	Policy    *policyBlock  `hcl:"policy,block"`
}

type pathsBlock struct {
	Table *string `hcl:"table,optional"`
	Bins  *string `hcl:"bins,optional"`
	Stats *string `hcl:"stats,optional"`
}

type learnerBlock struct {
	Players       *int    `hcl:"players,optional"`
	Workers       *int    `hcl:"workers,optional"`
	Seed          *int64  `hcl:"seed,optional"`
	Iterations    *int    `hcl:"iterations,optional"`
	ProgressEvery *string `hcl:"progress_every,optional"`
}

type policyBlock struct {
	OpenThreshold       *float64     `hcl:"open_threshold,optional"`
	ForceAllInThreshold *float64     `hcl:"force_all_in_threshold,optional"`
	ForceFoldThreshold  *float64     `hcl:"force_fold_threshold,optional"`
	KeepAntes           *float64     `hcl:"keep_antes,optional"`
	OpenAmountSteepness *float64     `hcl:"open_amount_steepness,optional"`
	OpenAmountCenter    *float64     `hcl:"open_amount_center,optional"`
	Curves              []curveBlock `hcl:"curve,block"`
}

type curveBlock struct {
	Name  string   `hcl:"name,label"`
	Shape *string  `hcl:"shape,optional"`
	A     *float64 `hcl:"a,optional"`
	B     *float64 `hcl:"b,optional"`
	C     *float64 `hcl:"c,optional"`
	D     *float64 `hcl:"d,optional"`
	E     *float64 `hcl:"e,optional"`
}

// Load reads an HCL file. A missing file yields the defaults.
func Load(filename string) (Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(f)
}

// Parse decodes HCL source held in memory.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(f)
}

func decode(f *hcl.File) (Config, error) {
	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	set(&cfg.AgentName, raw.AgentName)
	if p := raw.Paths; p != nil {
		set(&cfg.Paths.Table, p.Table)
		set(&cfg.Paths.Bins, p.Bins)
		set(&cfg.Paths.Stats, p.Stats)
	}
	if l := raw.Learner; l != nil {
		set(&cfg.Learner.Players, l.Players)
		set(&cfg.Learner.Workers, l.Workers)
		set(&cfg.Learner.Seed, l.Seed)
		set(&cfg.Learner.Iterations, l.Iterations)
		if l.ProgressEvery != nil {
			d, err := time.ParseDuration(*l.ProgressEvery)
			if err != nil {
				return Config{}, fmt.Errorf("learner progress_every: %w", err)
			}
			cfg.Learner.ProgressEvery = d
		}
	}
	if p := raw.Policy; p != nil {
		if err := applyPolicy(&cfg.Policy, p); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func applyPolicy(cfg *policy.Config, p *policyBlock) error {
	set(&cfg.OpenThreshold, p.OpenThreshold)
	set(&cfg.ForceAllInThreshold, p.ForceAllInThreshold)
	set(&cfg.ForceFoldThreshold, p.ForceFoldThreshold)
	set(&cfg.KeepAntes, p.KeepAntes)
	set(&cfg.OpenAmountSteepness, p.OpenAmountSteepness)
	set(&cfg.OpenAmountCenter, p.OpenAmountCenter)

	curves := map[string]*policy.Curve{
		"open_check":        &cfg.Open.Check,
		"open":              &cfg.Open.Open,
		"open_all_in":       &cfg.Open.AllIn,
		"fold":              &cfg.CallRaise.Fold,
		"call":              &cfg.CallRaise.Call,
		"raise":             &cfg.CallRaise.Raise,
		"call_raise_all_in": &cfg.CallRaise.AllIn,
	}
	seen := make(map[string]bool, len(p.Curves))
	for _, cb := range p.Curves {
		curve, ok := curves[cb.Name]
		if !ok {
			return fmt.Errorf("policy: unknown curve %q", cb.Name)
		}
		if seen[cb.Name] {
			return fmt.Errorf("policy: curve %q defined twice", cb.Name)
		}
		seen[cb.Name] = true
		if cb.Shape != nil {
			shape, err := policy.ParseShape(*cb.Shape)
			if err != nil {
				return fmt.Errorf("policy curve %q: %w", cb.Name, err)
			}
			curve.Shape = shape
		}
		set(&curve.A, cb.A)
		set(&curve.B, cb.B)
		set(&curve.C, cb.C)
		set(&curve.D, cb.D)
		set(&curve.E, cb.E)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
