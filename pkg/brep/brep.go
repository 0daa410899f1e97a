// Package brep is an arena boundary representation for swept solids.
//
// Vertices, edges, coedges, wires and faces are stored in flat slices and
// addressed by integer handles; back-references are handles too, so walking
// Face → Wire → Coedge → Edge → Face never follows an owning pointer.
// Names and flags assigned by the topology namer live in a Tags side table
// keyed by handle (see tags.go).
package brep

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
)

// Handle types. Negative values mean "none".
type (
	VertexID int
	EdgeID   int
	CoedgeID int
	WireID   int
	FaceID   int
)

const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoCoedge CoedgeID = -1
	NoWire   WireID   = -1
	NoFace   FaceID   = -1
)

// Vertex is a point shared by edges.
type Vertex struct {
	Point v3.Vec
	Edges []EdgeID
}

// Edge is a straight boundary segment between two vertices. It is used by
// at most two coedges, one per adjacent face.
type Edge struct {
	V0, V1  VertexID
	Coedges []CoedgeID
}

// Coedge is one oriented use of an edge on the boundary of a face.
type Coedge struct {
	Edge     EdgeID
	Face     FaceID
	Wire     WireID
	Reversed bool // traverses the edge from V1 to V0
}

// Wire is a closed loop of coedges on one face.
type Wire struct {
	Face    FaceID
	Coedges []CoedgeID
}

// Face is a bounded surface patch. The first wire is the outer loop.
type Face struct {
	Wires []WireID
}

// Use references an edge in a face loop, optionally reversed.
type Use struct {
	Edge     EdgeID
	Reversed bool
}

// Solid owns the arenas of one swept body.
type Solid struct {
	Vertices []Vertex
	Edges    []Edge
	Coedges  []Coedge
	Wires    []Wire
	Faces    []Face

	Tags Tags
}

// New returns an empty solid.
func New() *Solid {
	s := &Solid{}
	s.Tags.init()
	return s
}

// AddVertex appends a vertex and returns its handle.
func (s *Solid) AddVertex(p v3.Vec) VertexID {
	s.Vertices = append(s.Vertices, Vertex{Point: p})
	return VertexID(len(s.Vertices) - 1)
}

// AddEdge appends an edge between two existing vertices.
func (s *Solid) AddEdge(v0, v1 VertexID) EdgeID {
	id := EdgeID(len(s.Edges))
	s.Edges = append(s.Edges, Edge{V0: v0, V1: v1})
	s.Vertices[v0].Edges = append(s.Vertices[v0].Edges, id)
	s.Vertices[v1].Edges = append(s.Vertices[v1].Edges, id)
	return id
}

// AddFace appends a face bounded by the given loops. Each loop becomes a
// wire; each use becomes a coedge.
func (s *Solid) AddFace(loops ...[]Use) (FaceID, error) {
	fid := FaceID(len(s.Faces))
	s.Faces = append(s.Faces, Face{})
	for _, loop := range loops {
		wid := WireID(len(s.Wires))
		s.Wires = append(s.Wires, Wire{Face: fid})
		for _, u := range loop {
			if u.Edge < 0 || int(u.Edge) >= len(s.Edges) {
				return NoFace, fmt.Errorf("brep: face %d: edge %d out of range", fid, u.Edge)
			}
			if len(s.Edges[u.Edge].Coedges) >= 2 {
				return NoFace, fmt.Errorf("brep: face %d: edge %d already borders two faces", fid, u.Edge)
			}
			cid := CoedgeID(len(s.Coedges))
			s.Coedges = append(s.Coedges, Coedge{Edge: u.Edge, Face: fid, Wire: wid, Reversed: u.Reversed})
			s.Edges[u.Edge].Coedges = append(s.Edges[u.Edge].Coedges, cid)
			s.Wires[wid].Coedges = append(s.Wires[wid].Coedges, cid)
		}
		s.Faces[fid].Wires = append(s.Faces[fid].Wires, wid)
	}
	return fid, nil
}

// EdgeFaces returns the faces adjacent to e, in coedge order.
func (s *Solid) EdgeFaces(e EdgeID) []FaceID {
	out := make([]FaceID, 0, 2)
	for _, c := range s.Edges[e].Coedges {
		out = append(out, s.Coedges[c].Face)
	}
	return out
}

// FaceCoedges returns the coedges of f, wire by wire.
func (s *Solid) FaceCoedges(f FaceID) []CoedgeID {
	var out []CoedgeID
	for _, w := range s.Faces[f].Wires {
		out = append(out, s.Wires[w].Coedges...)
	}
	return out
}

// FaceEdges returns the edges of f in wire order.
func (s *Solid) FaceEdges(f FaceID) []EdgeID {
	cs := s.FaceCoedges(f)
	out := make([]EdgeID, len(cs))
	for i, c := range cs {
		out[i] = s.Coedges[c].Edge
	}
	return out
}

// EdgeLine returns the geometry of e as a line from V0 to V1.
func (s *Solid) EdgeLine(e EdgeID) geom.Line {
	ed := s.Edges[e]
	return geom.NewLine(s.Vertices[ed.V0].Point, s.Vertices[ed.V1].Point)
}

// FindVertex returns the vertex at p within tol, or NoVertex.
func (s *Solid) FindVertex(p v3.Vec, tol float64) VertexID {
	for i, v := range s.Vertices {
		if geom.EqualTol(v.Point, p, tol) {
			return VertexID(i)
		}
	}
	return NoVertex
}

// Validate checks handle consistency: every coedge points back at an edge
// that lists it, and no edge borders more than two faces.
func (s *Solid) Validate() error {
	for i, e := range s.Edges {
		if len(e.Coedges) > 2 {
			return fmt.Errorf("brep: edge %d has %d coedges", i, len(e.Coedges))
		}
		for _, c := range e.Coedges {
			if s.Coedges[c].Edge != EdgeID(i) {
				return fmt.Errorf("brep: coedge %d does not reference edge %d", c, i)
			}
		}
	}
	for i, w := range s.Wires {
		for _, c := range w.Coedges {
			if s.Coedges[c].Wire != WireID(i) || s.Coedges[c].Face != w.Face {
				return fmt.Errorf("brep: coedge %d inconsistent with wire %d", c, i)
			}
		}
	}
	return nil
}
