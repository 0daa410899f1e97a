package feature

import (
	"fmt"
	"strconv"

	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/kernel"
	"github.com/chazu/trim/pkg/pather"
	"github.com/chazu/trim/pkg/topo"
)

// Evaluator runs the assemble, sweep and name cycle for features.
type Evaluator struct {
	Kernel    kernel.Kernel
	Assembler *pather.Assembler
	Namer     *topo.Namer
	Options   kernel.SweepOptions
}

// Result is one evaluation of a feature.
type Result struct {
	Feature  *Feature
	Path     pather.Chain
	Sweep    *kernel.SweepResult
	Snapshot topo.Snapshot
}

// Evaluate sweeps f along its offset path and names the solid. The
// fragments must form exactly one chain; they are assembled once.
func (e *Evaluator) Evaluate(f *Feature) (*Result, error) {
	chains, err := e.Assembler.AssembleChains(f.Fragments)
	if err != nil {
		return nil, fmt.Errorf("feature %s: evaluate: %w", f.Name, err)
	}
	switch {
	case len(chains) == 0:
		return nil, fmt.Errorf("feature %s: evaluate: %w", f.Name, pather.ErrEmptySweepPath)
	case len(chains) > 1:
		return nil, fmt.Errorf("feature %s: evaluate: %d chains: %w", f.Name, len(chains), ErrDiscontinuous)
	}

	path, err := f.pathFrom(e.Assembler, chains, true)
	if err != nil {
		return nil, err
	}
	if path.Len() == 0 {
		return nil, fmt.Errorf("feature %s: evaluate: %w", f.Name, pather.ErrEmptySweepPath)
	}

	res, err := e.Kernel.Sweep(f.Profile, Segments(path), e.Options)
	if err != nil {
		return nil, fmt.Errorf("feature %s: sweep: %w", f.Name, err)
	}
	if err := e.Namer.ReconstructNames(res, f.ID); err != nil {
		return nil, fmt.Errorf("feature %s: %w", f.Name, err)
	}

	diag.Logger().Debug("feature evaluated", "feature", f.String(), "segments", path.Len(),
		"faces", len(res.Solid.Faces))
	return &Result{Feature: f, Path: path, Sweep: res, Snapshot: topo.TakeSnapshot(res.Solid)}, nil
}

// Update re-evaluates prev.Feature and correlates the new names with prev.
func (e *Evaluator) Update(prev *Result) (*Result, topo.Correlation, error) {
	cur, err := e.Evaluate(prev.Feature)
	if err != nil {
		return nil, topo.Correlation{}, err
	}
	return cur, topo.Correlate(prev.Snapshot, cur.Snapshot), nil
}

// Envelope returns the kernel's volume approximation of f's sweep.
func (e *Evaluator) Envelope(f *Feature) (kernel.Envelope, error) {
	path, err := f.SweepPath(e.Assembler, true)
	if err != nil {
		return nil, err
	}
	env, err := e.Kernel.Envelope(f.Profile, Segments(path), e.Options)
	if err != nil {
		return nil, fmt.Errorf("feature %s: envelope: %w", f.Name, err)
	}
	return env, nil
}

// Segments converts a chain to sweep path segments. Fragment links carry
// the fragment tag and borrowed links "n:{host}"; a tag seen before gets
// a ".{n}" suffix so face names stay unique.
func Segments(ch pather.Chain) []kernel.PathSegment {
	seen := make(map[string]int, ch.Len())
	out := make([]kernel.PathSegment, ch.Len())
	for i, l := range ch.Links {
		var tag string
		switch {
		case l.Fragment != nil:
			tag = l.Fragment.Tag()
		case l.Neighbor != nil:
			tag = "n:" + l.Neighbor.Host
		}
		if n := seen[tag]; n > 0 {
			seen[tag] = n + 1
			tag += "." + strconv.Itoa(n)
		} else {
			seen[tag] = 1
		}
		out[i] = kernel.PathSegment{Tag: tag, Curve: l.Curve}
	}
	return out
}
