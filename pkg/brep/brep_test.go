package brep

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square builds two unit squares sharing the edge (1,0)-(1,1).
func square(t *testing.T) (*Solid, FaceID, FaceID, EdgeID) {
	t.Helper()
	s := New()
	p := func(x, y float64) VertexID { return s.AddVertex(v3.Vec{X: x, Y: y}) }
	v00, v10, v11, v01 := p(0, 0), p(1, 0), p(1, 1), p(0, 1)
	v20, v21 := p(2, 0), p(2, 1)

	e0 := s.AddEdge(v00, v10)
	shared := s.AddEdge(v10, v11)
	e2 := s.AddEdge(v11, v01)
	e3 := s.AddEdge(v01, v00)
	e4 := s.AddEdge(v10, v20)
	e5 := s.AddEdge(v20, v21)
	e6 := s.AddEdge(v21, v11)

	a, err := s.AddFace([]Use{{Edge: e0}, {Edge: shared}, {Edge: e2}, {Edge: e3}})
	require.NoError(t, err)
	b, err := s.AddFace([]Use{{Edge: e4}, {Edge: e5}, {Edge: e6}, {Edge: shared, Reversed: true}})
	require.NoError(t, err)
	return s, a, b, shared
}

func TestAddFaceWiresCoedges(t *testing.T) {
	s, a, b, shared := square(t)
	require.NoError(t, s.Validate())

	assert.Equal(t, []FaceID{a, b}, s.EdgeFaces(shared))
	assert.Len(t, s.FaceCoedges(a), 4)
	assert.Contains(t, s.FaceEdges(b), shared)

	c := s.Edges[shared].Coedges[1]
	assert.True(t, s.Coedges[c].Reversed)
	assert.Equal(t, b, s.Coedges[c].Face)
}

func TestAddFaceRejectsThirdFace(t *testing.T) {
	s, _, _, shared := square(t)
	_, err := s.AddFace([]Use{{Edge: shared}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already borders two faces")

	_, err = s.AddFace([]Use{{Edge: 99}})
	require.Error(t, err)
}

func TestFindVertexAndEdgeLine(t *testing.T) {
	s, _, _, shared := square(t)
	assert.Equal(t, VertexID(1), s.FindVertex(v3.Vec{X: 1, Y: 0, Z: 1e-9}, 1e-6))
	assert.Equal(t, NoVertex, s.FindVertex(v3.Vec{X: 5}, 1e-6))

	l := s.EdgeLine(shared)
	assert.Equal(t, v3.Vec{X: 1}, l.P0)
	assert.Equal(t, v3.Vec{X: 1, Y: 1}, l.P1)
}

func TestResetTags(t *testing.T) {
	s, a, _, shared := square(t)
	s.Tags.FaceNames[a] = "1-0"
	s.Tags.BoundaryEdges.Add(uint32(shared))
	require.True(t, s.IsBoundaryEdge(shared))

	s.ResetTags("feature-1")
	assert.Equal(t, "feature-1", s.Tags.Solid)
	assert.Empty(t, s.FaceName(a))
	assert.False(t, s.IsBoundaryEdge(shared))
	assert.True(t, s.Tags.NamedEdges.IsEmpty())
}
