// Package cmd implements the trim command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/chazu/trim/pkg/config"
	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/engine"
	"github.com/chazu/trim/pkg/feature"
	"github.com/chazu/trim/pkg/kernel"
	"github.com/chazu/trim/pkg/kernel/sdfx"
	"github.com/chazu/trim/pkg/pather"
	"github.com/chazu/trim/pkg/topo"
)

var (
	configPath  string
	jsonOut     bool
	selectPath  string
	verbose     bool
	featureName string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to an HCL settings file")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	rootCmd.PersistentFlags().StringVar(&selectPath, "select", "", "JSONPath applied to the JSON report")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVarP(&featureName, "feature", "f", "", "Only process the named feature")
}

var rootCmd = &cobra.Command{
	Use:           "trim",
	Short:         "Assemble sweep paths and name swept trim solids",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Default()
		if configPath != "" {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
		}
		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		diag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "trim:", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

// session is one loaded feature file with its pipeline.
type session struct {
	findings *diag.Collector
	eval     *feature.Evaluator
	features []*feature.Feature
}

func load(path string) (*session, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	for _, w := range prog.Warnings {
		diag.Logger().Warn(w.Message, "feature", w.Feature)
	}

	features := prog.Features
	if featureName != "" {
		f := prog.Lookup(featureName)
		if f == nil {
			return nil, fmt.Errorf("%s: no feature named %q", path, featureName)
		}
		features = []*feature.Feature{f}
	}

	c := &diag.Collector{}
	r := diag.Multi(c, diag.LogReporter{})
	k := sdfx.New()
	return &session{
		findings: c,
		features: features,
		eval: &feature.Evaluator{
			Kernel:    k,
			Assembler: pather.New(k, cfg.AssemblerOptions(r)),
			Namer:     topo.NewNamer(cfg.Rules(), r, cfg.Epsilon),
			Options:   kernel.SweepOptions{Caps: true},
		},
	}, nil
}

// emit writes report as JSON, or calls text for the plain rendering.
func emit(w io.Writer, report map[string]any, text func(io.Writer)) error {
	if !jsonOut {
		text(w)
		return nil
	}
	var data any = report
	if selectPath != "" {
		x, err := jp.ParseString(selectPath)
		if err != nil {
			return fmt.Errorf("invalid jsonpath %q: %w", selectPath, err)
		}
		data = x.Get(report)
	}
	_, err := fmt.Fprintln(w, oj.JSON(data, &oj.Options{Indent: 2, Sort: true}))
	return err
}

func findingsReport(c *diag.Collector) []any {
	out := make([]any, len(c.Findings))
	for i, f := range c.Findings {
		out[i] = map[string]any{
			"code":     string(f.Code),
			"severity": f.Severity.String(),
			"subject":  f.Subject,
			"message":  f.Message,
		}
	}
	return out
}

func printFindings(w io.Writer, c *diag.Collector) {
	for _, f := range c.Findings {
		fmt.Fprintln(w, "  !", f.Error())
	}
}

func vecReport(v v3.Vec) []any {
	return []any{v.X, v.Y, v.Z}
}

// parseVec reads "x,y" or "x,y,z".
func parseVec(s string) (v3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return v3.Vec{}, fmt.Errorf("point %q: want x,y or x,y,z", s)
	}
	var c [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("point %q: %w", s, err)
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
