// Package config loads trim settings from HCL.
//
//	epsilon      = 1e-6
//	strict_joins = false
//	log_level    = "warn"
//	naming {
//	  short_curve     = "4"
//	  reference_curve = "1"
//	  boundary_pair   = ["4", "5"]
//	  boundary_prefix = "4>5"
//	  anchor_point    = 5
//	  edge_curve_pair = ["7", "1"]
//	}
//
// Every attribute is optional; omitted ones keep their Default value.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/pather"
	"github.com/chazu/trim/pkg/topo"
)

// Config is the decoded settings file.
type Config struct {
	Epsilon     float64 `hcl:"epsilon,optional"`
	StrictJoins bool    `hcl:"strict_joins,optional"`
	LogLevel    string  `hcl:"log_level,optional"`
	Naming      *Naming `hcl:"naming,block"`
}

// Naming mirrors topo.Rules.
type Naming struct {
	ShortCurve     string   `hcl:"short_curve,optional"`
	ReferenceCurve string   `hcl:"reference_curve,optional"`
	BoundaryPair   []string `hcl:"boundary_pair,optional"`
	BoundaryPrefix string   `hcl:"boundary_prefix,optional"`
	AnchorPoint    int      `hcl:"anchor_point,optional"`
	EdgeCurvePair  []string `hcl:"edge_curve_pair,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	r := topo.DefaultRules()
	return &Config{
		Epsilon:  geom.Epsilon,
		LogLevel: "warn",
		Naming: &Naming{
			ShortCurve:     r.ShortCurve,
			ReferenceCurve: r.ReferenceCurve,
			BoundaryPair:   r.BoundaryPair[:],
			BoundaryPrefix: r.BoundaryPrefix,
			AnchorPoint:    r.AnchorPoint,
			EdgeCurvePair:  r.EdgeCurvePair[:],
		},
	}
}

// Load reads and decodes the file at path over the defaults.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes src over the defaults. filename selects the syntax: a
// ".json" suffix means HCL's JSON form, anything else native HCL.
func Parse(src []byte, filename string) (*Config, error) {
	if !strings.HasSuffix(filename, ".json") && !strings.HasSuffix(filename, ".hcl") {
		filename += ".hcl"
	}
	var raw Config
	if err := hclsimple.Decode(filename, src, nil, &raw); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	cfg.merge(&raw)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Epsilon != 0 {
		c.Epsilon = o.Epsilon
	}
	c.StrictJoins = o.StrictJoins
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Naming == nil {
		return
	}
	n, m := c.Naming, o.Naming
	if m.ShortCurve != "" {
		n.ShortCurve = m.ShortCurve
	}
	if m.ReferenceCurve != "" {
		n.ReferenceCurve = m.ReferenceCurve
	}
	if m.BoundaryPair != nil {
		n.BoundaryPair = m.BoundaryPair
	}
	if m.BoundaryPrefix != "" {
		n.BoundaryPrefix = m.BoundaryPrefix
	}
	if m.AnchorPoint != 0 {
		n.AnchorPoint = m.AnchorPoint
	}
	if m.EdgeCurvePair != nil {
		n.EdgeCurvePair = m.EdgeCurvePair
	}
}

// Validate checks value ranges and the naming rules.
func (c *Config) Validate() error {
	var errs []error
	if c.Epsilon < 0 {
		errs = append(errs, errors.New("epsilon must not be negative"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(c.Naming.BoundaryPair) != 2 {
		errs = append(errs, errors.New("boundary_pair needs exactly two face types"))
	}
	if len(c.Naming.EdgeCurvePair) != 2 {
		errs = append(errs, errors.New("edge_curve_pair needs exactly two face types"))
	}
	if len(errs) == 0 {
		errs = append(errs, c.Rules().Validate())
	}
	return errors.Join(errs...)
}

// Rules returns the naming rules.
func (c *Config) Rules() topo.Rules {
	n := c.Naming
	r := topo.Rules{
		ShortCurve:     n.ShortCurve,
		ReferenceCurve: n.ReferenceCurve,
		BoundaryPrefix: n.BoundaryPrefix,
		AnchorPoint:    n.AnchorPoint,
	}
	copy(r.BoundaryPair[:], n.BoundaryPair)
	copy(r.EdgeCurvePair[:], n.EdgeCurvePair)
	return r
}

// AssemblerOptions returns pather options reporting to r.
func (c *Config) AssemblerOptions(r diag.Reporter) pather.Options {
	return pather.Options{Epsilon: c.Epsilon, Strict: c.StrictJoins, Reporter: r}
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level %q: %w", s, err)
	}
	return l, nil
}
