package topo

import (
	"math"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/brep"
	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

// resolveAnchor locates the anchor profile point on the solid. The start
// of the profile curve carrying the anchor marker is lifted through the
// sweep frame; a vertex of a boundary-pair edge at that position wins,
// otherwise the closest such vertex is used. Failures are reported as
// warnings and yield ok == false.
func (n *Namer) resolveAnchor(res *kernel.SweepResult) (v3.Vec, bool) {
	subject := "pt " + strconv.Itoa(n.rules.AnchorPoint)

	var curve *kernel.ProfileCurve
	for i := range res.Profile {
		if res.Profile[i].StartPoint == n.rules.AnchorPoint {
			curve = &res.Profile[i]
		}
	}
	if curve == nil {
		diag.Warn(n.reporter, diag.CodeAnchor, subject, "no profile curve starts at the anchor point")
		return v3.Vec{}, false
	}
	target := res.Frame.ToWorld(curve.Curve.Start())

	candidates := n.boundaryVertices(res.Solid)
	if len(candidates) == 0 {
		diag.Warn(n.reporter, diag.CodeAnchor, subject, "no vertex borders a %s/%s edge",
			n.rules.BoundaryPair[0], n.rules.BoundaryPair[1])
		return v3.Vec{}, false
	}

	best, bestDist := candidates[0], math.Inf(1)
	for _, p := range candidates {
		if geom.EqualTol(p, target, n.tol) {
			return target, true
		}
		if d := geom.Dist(p, target); d < bestDist {
			best, bestDist = p, d
		}
	}
	diag.Logger().Debug("anchor snapped to closest vertex", "anchor", subject, "distance", bestDist)
	return best, true
}

// boundaryVertices returns the points of vertices adjacent to an edge
// between the two boundary face types, in vertex order.
func (n *Namer) boundaryVertices(s *brep.Solid) []v3.Vec {
	var out []v3.Vec
	for _, v := range s.Vertices {
		for _, e := range v.Edges {
			f0, f1, ok := n.namedPair(s, e)
			if ok && between(s.FaceName(f0), s.FaceName(f1), n.rules.BoundaryPair) {
				out = append(out, v.Point)
				break
			}
		}
	}
	return out
}
