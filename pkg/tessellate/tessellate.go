// Package tessellate turns the named faces of a swept solid into triangle
// meshes, one mesh per face, so renderers can attach per-face state by
// topology name.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/brep"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

// ErrHoles is returned for faces with inner loops.
var ErrHoles = errors.New("faces with inner loops are not supported")

// Tessellate triangulates every named face of s in handle order. Unnamed
// faces are skipped. The tessellator never mutates the solid.
func Tessellate(s *brep.Solid) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for f := range s.Faces {
		fid := brep.FaceID(f)
		if s.FaceName(fid) == "" {
			continue
		}
		m, err := Face(s, fid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: face %s: %w", s.FaceName(fid), err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Face triangulates one planar face by ear clipping its outer loop.
func Face(s *brep.Solid, f brep.FaceID) (*kernel.Mesh, error) {
	face := s.Faces[f]
	if len(face.Wires) != 1 {
		return nil, ErrHoles
	}
	loop := loopPoints(s, face.Wires[0])
	if len(loop) < 3 {
		return nil, fmt.Errorf("loop has %d vertices", len(loop))
	}

	n := newellNormal(loop)
	if n.Length() <= geom.Epsilon {
		return nil, errors.New("degenerate loop")
	}
	n = geom.Unit(n)

	tris, err := earClip(project(loop, n))
	if err != nil {
		return nil, err
	}

	m := &kernel.Mesh{Face: s.FaceName(f)}
	for _, p := range loop {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return m, nil
}

// loopPoints returns the start point of each coedge of w in loop order.
func loopPoints(s *brep.Solid, w brep.WireID) []v3.Vec {
	coedges := s.Wires[w].Coedges
	out := make([]v3.Vec, len(coedges))
	for i, c := range coedges {
		ce := s.Coedges[c]
		e := s.Edges[ce.Edge]
		v := e.V0
		if ce.Reversed {
			v = e.V1
		}
		out[i] = s.Vertices[v].Point
	}
	return out
}

// newellNormal returns the area-weighted normal of a closed loop; its
// direction follows the loop's winding.
func newellNormal(loop []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// project maps the loop into the plane basis (u, n×u), where the loop
// winds counter-clockwise.
func project(loop []v3.Vec, n v3.Vec) [][2]float64 {
	u := v3.Vec{X: 1}
	if geom.Parallel(u, n) {
		u = v3.Vec{Y: 1}
	}
	u = geom.Unit(u.Sub(n.MulScalar(u.Dot(n))))
	v := n.Cross(u)
	out := make([][2]float64, len(loop))
	for i, p := range loop {
		out[i] = [2]float64{p.Dot(u), p.Dot(v)}
	}
	return out
}

func cross2(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// inTriangle reports whether p lies inside or on triangle abc (CCW).
func inTriangle(p, a, b, c [2]float64) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

// earClip triangulates a simple counter-clockwise polygon.
func earClip(pts [][2]float64) ([][3]int, error) {
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]int
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if cross2(pts[a], pts[b], pts[c]) <= geom.Epsilon {
				continue
			}
			ear := true
			for _, j := range idx {
				if j == a || j == b || j == c {
					continue
				}
				if inTriangle(pts[j], pts[a], pts[b], pts[c]) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped && !dropCollinear(pts, &idx) {
			return nil, errors.New("loop is not a simple polygon")
		}
	}
	return append(tris, [3]int{idx[0], idx[1], idx[2]}), nil
}

// dropCollinear removes one vertex lying on the segment between its
// neighbours. It reports false when there is none.
func dropCollinear(pts [][2]float64, idx *[]int) bool {
	ids := *idx
	for i := range ids {
		a, b, c := ids[(i+len(ids)-1)%len(ids)], ids[i], ids[(i+1)%len(ids)]
		if math.Abs(cross2(pts[a], pts[b], pts[c])) <= geom.Epsilon {
			*idx = append(ids[:i], ids[i+1:]...)
			return true
		}
	}
	return false
}
