// Package feature ties the path assembler, the sweep kernel and the
// topology namer into one swept trim feature: a profile run along path
// fragments that live on a host surface.
package feature

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
	"github.com/chazu/trim/pkg/pather"
)

var (
	// ErrEmptyFragment is returned when a fragment has nothing to sweep.
	ErrEmptyFragment = errors.New("fragment has an empty sweep path")
	// ErrDiscontinuous is returned when fragments do not form one chain.
	ErrDiscontinuous = errors.New("fragments are not continuous")
)

// Feature is a profile swept along a set of path fragments.
type Feature struct {
	ID   string
	Name string
	// Host is the surface the fragments lie on; "" when free-standing.
	Host      string
	Profile   []kernel.ProfileCurve
	Fragments []*pather.Fragment
	// Neighbors are boundary curves of adjacent hosts that may close the
	// ends of an offset path.
	Neighbors []pather.Neighbor
	// Offset moves the path to the left of travel, into the host.
	Offset float64
	// Normal is the offset plane normal. Zero means +Z.
	Normal v3.Vec
}

// New returns a feature with a fresh id.
func New(name string, profile []kernel.ProfileCurve) *Feature {
	return &Feature{ID: uuid.NewString(), Name: name, Profile: profile}
}

func (f *Feature) String() string {
	return fmt.Sprintf("%s(%s)", f.Name, f.ID)
}

// Clone returns a copy with a fresh id. Fragment and profile values are
// shared; the slices are not.
func (f *Feature) Clone() *Feature {
	c := *f
	c.ID = uuid.NewString()
	c.Profile = append([]kernel.ProfileCurve(nil), f.Profile...)
	c.Fragments = append([]*pather.Fragment(nil), f.Fragments...)
	c.Neighbors = append([]pather.Neighbor(nil), f.Neighbors...)
	return &c
}

// InWall reports whether the path is offset into the host.
func (f *Feature) InWall() bool {
	return math.Abs(f.Offset) > geom.Epsilon
}

func (f *Feature) normal() v3.Vec {
	if f.Normal == (v3.Vec{}) {
		return v3.Vec{Z: 1}
	}
	return f.Normal
}

// SweepPath assembles the fragments and concatenates the chains in
// assembly order. With applyOffset and a non-zero offset the result is
// stitched to the neighbors and offset; offset links that collapse or
// duplicate a neighbor are dropped.
func (f *Feature) SweepPath(a *pather.Assembler, applyOffset bool) (pather.Chain, error) {
	chains, err := a.AssembleChains(f.Fragments)
	if err != nil {
		return pather.Chain{}, fmt.Errorf("feature %s: %w", f.Name, err)
	}
	return f.pathFrom(a, chains, applyOffset)
}

// pathFrom is SweepPath over chains the caller already assembled.
func (f *Feature) pathFrom(a *pather.Assembler, chains []pather.Chain, applyOffset bool) (pather.Chain, error) {
	var flat pather.Chain
	for _, ch := range chains {
		flat.Links = append(flat.Links, ch.Links...)
	}
	if !applyOffset || !f.InWall() || flat.Len() == 0 {
		return flat, nil
	}

	connected := a.ConnectToNeighbors(flat, f.Neighbors)
	out, err := a.OffsetLinks(connected, f.Offset, f.normal())
	if err != nil {
		return pather.Chain{}, fmt.Errorf("feature %s: %w", f.Name, err)
	}
	return out, nil
}

// AddFragment appends frag when the fragments still form one chain with
// it. A rejected fragment leaves the feature unchanged.
func (f *Feature) AddFragment(a *pather.Assembler, frag *pather.Fragment, r diag.Reporter) error {
	if frag.SweepPath() == nil {
		return fmt.Errorf("feature %s: add %s: %w", f.Name, frag, ErrEmptyFragment)
	}
	if len(f.Fragments) == 0 {
		f.Fragments = append(f.Fragments, frag)
		return nil
	}

	chains, err := a.AssembleChains(append(append([]*pather.Fragment(nil), f.Fragments...), frag))
	if err != nil {
		return fmt.Errorf("feature %s: add %s: %w", f.Name, frag, err)
	}
	if len(chains) > 1 {
		diag.Warn(diag.Or(r), diag.CodeDiscontinuous, frag.String(),
			"fragment does not connect to the %d fragments of %s", len(f.Fragments), f.Name)
		return fmt.Errorf("feature %s: add %s: %w", f.Name, frag, ErrDiscontinuous)
	}
	f.Fragments = append(f.Fragments, frag)
	return nil
}

// StartFragment returns the fragment at the start of the assembled path,
// or nil when there is none.
func (f *Feature) StartFragment(a *pather.Assembler) (*pather.Fragment, error) {
	frags, err := f.orderedFragments(a)
	if err != nil || len(frags) == 0 {
		return nil, err
	}
	return frags[0], nil
}

// EndFragment returns the fragment at the end of the assembled path, or
// nil when there is none.
func (f *Feature) EndFragment(a *pather.Assembler) (*pather.Fragment, error) {
	frags, err := f.orderedFragments(a)
	if err != nil || len(frags) == 0 {
		return nil, err
	}
	return frags[len(frags)-1], nil
}

func (f *Feature) orderedFragments(a *pather.Assembler) ([]*pather.Fragment, error) {
	path, err := f.SweepPath(a, false)
	if err != nil {
		return nil, err
	}
	return path.Fragments(), nil
}

// Exists reports whether a hosted feature still has a path to sweep.
// Free-standing features always exist.
func (f *Feature) Exists(a *pather.Assembler) bool {
	if f.Host == "" {
		return true
	}
	path, err := f.SweepPath(a, false)
	return err == nil && path.Len() > 0
}

// Split cuts the feature at point into one clone per fragment group. A
// point that misses the path yields a single clone holding every fragment
// and a split-parts finding.
func (f *Feature) Split(a *pather.Assembler, point v3.Vec) ([]*Feature, error) {
	if len(f.Fragments) == 0 {
		return nil, fmt.Errorf("feature %s: split: %w", f.Name, pather.ErrEmptySweepPath)
	}
	groups, err := a.SplitGroups(f.Fragments, point)
	if err != nil {
		return nil, fmt.Errorf("feature %s: split: %w", f.Name, err)
	}
	groups = lo.Filter(groups, func(g []*pather.Fragment, _ int) bool { return len(g) > 0 })
	return lo.Map(groups, func(g []*pather.Fragment, _ int) *Feature {
		c := f.Clone()
		c.Fragments = g
		return c
	}), nil
}
