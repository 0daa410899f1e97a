// Package topo assigns topology names to the faces, edges and coedges of a
// swept solid so that a re-evaluation can be correlated element by element
// with the previous one.
//
// Faces are named {curve}-{tag} after the profile curve and path position
// that produced them. Edges are named {lo}>{hi}>{ordinal} after their two
// faces in lexicographic order, except for the boundary chain of an
// asymmetric sweep, which is named {prefix}-{n} in path order from an
// anchor point. Coedges are named {face}>{edge}. Every name is checked
// against the names already issued in the pass; the first duplicate stops
// the pass.
package topo

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/trim/pkg/brep"
	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

// Cap face names.
const (
	CapStart = "cap-start"
	CapEnd   = "cap-end"
)

// ErrDuplicateName is matched by every *DuplicateNameError.
var ErrDuplicateName = errors.New("duplicate topology name")

// DuplicateNameError reports the first name issued twice in a pass.
type DuplicateNameError struct {
	Kind string // "face", "edge" or "coedge"
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("topo: duplicate %s name %q", e.Kind, e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// Namer runs naming passes. A Namer is not safe for concurrent use; each
// pass owns its solid exclusively.
type Namer struct {
	rules    Rules
	reporter diag.Reporter
	tol      float64

	cache map[string]struct{}
	// shared caches the edges a face pair shares, in scan order.
	shared map[[2]brep.FaceID][]brep.EdgeID
}

// NewNamer returns a Namer. A nil reporter logs findings; tol <= 0 means
// geom.Epsilon.
func NewNamer(rules Rules, reporter diag.Reporter, tol float64) *Namer {
	if tol <= 0 {
		tol = geom.Epsilon
	}
	return &Namer{rules: rules, reporter: diag.Or(reporter), tol: tol}
}

// Rules returns the naming rules in use.
func (n *Namer) Rules() Rules { return n.rules }

// ReconstructNames names every face, edge and coedge of res.Solid in
// place. Previous tags are dropped first and the solid is tagged with
// featureID. The first duplicate name is reported as an integrity
// violation and returned as a *DuplicateNameError; names issued before it
// stay on the solid.
func (n *Namer) ReconstructNames(res *kernel.SweepResult, featureID string) error {
	n.cache = make(map[string]struct{})
	n.shared = make(map[[2]brep.FaceID][]brep.EdgeID)
	s := res.Solid
	s.ResetTags(featureID)

	if err := n.nameFaces(res); err != nil {
		return err
	}
	if err := n.nameEdges(res); err != nil {
		return err
	}
	if err := n.nameCoedges(s); err != nil {
		return err
	}

	diag.Logger().Debug("names reconstructed",
		"feature", featureID,
		"faces", len(s.Tags.FaceNames),
		"edges", len(s.Tags.EdgeNames),
		"coedges", len(s.Tags.CoedgeNames),
	)
	return nil
}

// check records name in the pass cache, failing on reuse.
func (n *Namer) check(kind, name string) error {
	if _, dup := n.cache[name]; dup {
		diag.Violation(n.reporter, diag.CodeDuplicateName, name, "%s name issued twice in one pass", kind)
		return &DuplicateNameError{Kind: kind, Name: name}
	}
	n.cache[name] = struct{}{}
	return nil
}

// -------------------------------------------------------------------
// Faces
// -------------------------------------------------------------------

func (n *Namer) nameFaces(res *kernel.SweepResult) error {
	s := res.Solid
	for _, pc := range res.Profile {
		faces, ok := res.Faces[pc.ID]
		if !ok {
			continue
		}
		for pos, seg := range res.Path {
			if pos >= len(faces) || faces[pos] == brep.NoFace {
				continue
			}
			name := pc.ID + "-" + seg.Tag
			if err := n.check("face", name); err != nil {
				return err
			}
			s.Tags.FaceNames[faces[pos]] = name
			s.Tags.FaceIndex[faces[pos]] = pos
		}
	}

	for i, name := range []string{CapStart, CapEnd} {
		f := res.Caps[i]
		if f == brep.NoFace {
			continue
		}
		if err := n.check("face", name); err != nil {
			return err
		}
		s.Tags.FaceNames[f] = name
	}

	for f := range s.Faces {
		if _, ok := s.Tags.FaceNames[brep.FaceID(f)]; !ok {
			diag.Warn(n.reporter, diag.CodeUnnamedFace, fmt.Sprintf("face %d", f),
				"face is not in the curve to faces map")
		}
	}
	return nil
}

// -------------------------------------------------------------------
// Edges
// -------------------------------------------------------------------

func (n *Namer) nameEdges(res *kernel.SweepResult) error {
	s := res.Solid
	present := func(id string) []brep.FaceID {
		return lo.Filter(res.Faces[id], func(f brep.FaceID, _ int) bool { return f != brep.NoFace })
	}
	short, ref := present(n.rules.ShortCurve), present(n.rules.ReferenceCurve)
	shorter := len(short) > 0 && len(ref) > 0 && len(short) < len(ref)

	var deferred []brep.EdgeID
	for e := range s.Edges {
		eid := brep.EdgeID(e)
		f0, f1, ok := n.namedPair(s, eid)
		if !ok {
			continue
		}
		n0, n1 := s.FaceName(f0), s.FaceName(f1)
		boundary := between(n0, n1, n.rules.BoundaryPair)
		if boundary {
			s.Tags.BoundaryEdges.Add(uint32(eid))
			if shorter {
				deferred = append(deferred, eid)
				continue
			}
		}
		if err := n.nameOrdinary(s, eid, f0, f1); err != nil {
			return err
		}
	}

	if len(deferred) == 0 {
		return nil
	}
	return n.nameBoundaryChain(res, deferred)
}

// namedPair returns the two named faces of e.
func (n *Namer) namedPair(s *brep.Solid, e brep.EdgeID) (brep.FaceID, brep.FaceID, bool) {
	faces := s.EdgeFaces(e)
	if len(faces) != 2 || s.FaceName(faces[0]) == "" || s.FaceName(faces[1]) == "" {
		return brep.NoFace, brep.NoFace, false
	}
	return faces[0], faces[1], true
}

func (n *Namer) nameOrdinary(s *brep.Solid, e brep.EdgeID, f0, f1 brep.FaceID) error {
	lower, upper := f0, f1
	if s.FaceName(upper) < s.FaceName(lower) {
		lower, upper = upper, lower
	}
	ordinal := lo.IndexOf(n.sharedEdges(s, lower, upper), e)
	return n.assignEdge(s, e, fmt.Sprintf("%s>%s>%d", s.FaceName(lower), s.FaceName(upper), ordinal))
}

// sharedEdges lists the edges between lower and upper, scanning lower's
// wires in order.
func (n *Namer) sharedEdges(s *brep.Solid, lower, upper brep.FaceID) []brep.EdgeID {
	key := [2]brep.FaceID{lower, upper}
	if cached, ok := n.shared[key]; ok {
		return cached
	}
	var out []brep.EdgeID
	for _, e := range s.FaceEdges(lower) {
		fs := s.EdgeFaces(e)
		if len(fs) != 2 || lo.Contains(out, e) {
			continue
		}
		if fs[0] == lower && fs[1] == upper || fs[0] == upper && fs[1] == lower {
			out = append(out, e)
		}
	}
	n.shared[key] = out
	return out
}

func (n *Namer) assignEdge(s *brep.Solid, e brep.EdgeID, name string) error {
	if err := n.check("edge", name); err != nil {
		return err
	}
	s.Tags.EdgeNames[e] = name
	s.Tags.NamedEdges.Add(uint32(e))
	f0, f1, _ := n.namedPair(s, e)
	if between(s.FaceName(f0), s.FaceName(f1), n.rules.EdgeCurvePair) {
		s.Tags.EdgeToCurve.Add(uint32(e))
	}
	return nil
}

// nameBoundaryChain names the deferred boundary edges {prefix}-{n} in walk
// order from the anchor. Edges the walk cannot reach, or all of them when
// the anchor cannot be resolved, fall back to ordinary names.
func (n *Namer) nameBoundaryChain(res *kernel.SweepResult, deferred []brep.EdgeID) error {
	s := res.Solid
	var order []int
	if anchor, ok := n.resolveAnchor(res); ok {
		ends := func(i int) (a, b v3.Vec) {
			l := s.EdgeLine(deferred[i])
			return l.P0, l.P1
		}
		order, _ = geom.Walk(len(deferred), ends, anchor, n.tol)
	}

	chained := make(map[brep.EdgeID]bool, len(order))
	for i, idx := range order {
		e := deferred[idx]
		chained[e] = true
		if err := n.assignEdge(s, e, fmt.Sprintf("%s-%d", n.rules.BoundaryPrefix, i+1)); err != nil {
			return err
		}
	}

	rest := lo.Filter(deferred, func(e brep.EdgeID, _ int) bool { return !chained[e] })
	if len(rest) > 0 && len(order) > 0 {
		diag.Warn(n.reporter, diag.CodeUnchainedEdge, n.rules.BoundaryPrefix,
			"%d boundary edges are not connected to the chain from the anchor", len(rest))
	}
	for _, e := range rest {
		f0, f1, _ := n.namedPair(s, e)
		if err := n.nameOrdinary(s, e, f0, f1); err != nil {
			return err
		}
	}
	return nil
}

// -------------------------------------------------------------------
// Coedges
// -------------------------------------------------------------------

func (n *Namer) nameCoedges(s *brep.Solid) error {
	for f := range s.Faces {
		fid := brep.FaceID(f)
		fname := s.FaceName(fid)
		if fname == "" {
			continue
		}
		for _, c := range s.FaceCoedges(fid) {
			e := s.Coedges[c].Edge
			ename := s.EdgeName(e)
			if ename == "" {
				continue
			}
			name := fname + ">" + ename
			if err := n.check("coedge", name); err != nil {
				return err
			}
			s.Tags.CoedgeNames[c] = name
			if s.IsBoundaryEdge(e) && FaceType(fname) == n.rules.ShortCurve {
				s.Tags.BoundaryCoedges.Add(uint32(c))
			}
		}
	}
	return nil
}
