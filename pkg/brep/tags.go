package brep

import (
	"github.com/RoaringBitmap/roaring"
)

// Tags is the naming side table of a solid. Names are keyed by handle;
// boolean flags are bitmaps of handles.
type Tags struct {
	Solid string // owning feature id

	FaceNames   map[FaceID]string
	EdgeNames   map[EdgeID]string
	CoedgeNames map[CoedgeID]string

	// FaceIndex records the path position each named face was swept from.
	FaceIndex map[FaceID]int

	NamedEdges      *roaring.Bitmap // edges that received a name this pass
	BoundaryEdges   *roaring.Bitmap // edges on the sequential boundary chain
	EdgeToCurve     *roaring.Bitmap // edges between the edge-to-curve face pair
	BoundaryCoedges *roaring.Bitmap // coedges of boundary edges on the short face type
}

func (t *Tags) init() {
	t.FaceNames = make(map[FaceID]string)
	t.EdgeNames = make(map[EdgeID]string)
	t.CoedgeNames = make(map[CoedgeID]string)
	t.FaceIndex = make(map[FaceID]int)
	t.NamedEdges = roaring.New()
	t.BoundaryEdges = roaring.New()
	t.EdgeToCurve = roaring.New()
	t.BoundaryCoedges = roaring.New()
}

// ResetTags drops every name and flag and retags the solid.
func (s *Solid) ResetTags(owner string) {
	s.Tags.init()
	s.Tags.Solid = owner
}

// FaceName returns the name of f, or "" if unnamed.
func (s *Solid) FaceName(f FaceID) string { return s.Tags.FaceNames[f] }

// EdgeName returns the name of e, or "" if unnamed.
func (s *Solid) EdgeName(e EdgeID) string { return s.Tags.EdgeNames[e] }

// CoedgeName returns the name of c, or "" if unnamed.
func (s *Solid) CoedgeName(c CoedgeID) string { return s.Tags.CoedgeNames[c] }

// IsBoundaryEdge reports whether e was flagged as part of the sequential
// boundary chain.
func (s *Solid) IsBoundaryEdge(e EdgeID) bool {
	return s.Tags.BoundaryEdges.Contains(uint32(e))
}

// IsBoundaryCoedge reports whether c was flagged as part of the sequential
// boundary chain.
func (s *Solid) IsBoundaryCoedge(c CoedgeID) bool {
	return s.Tags.BoundaryCoedges.Contains(uint32(c))
}
