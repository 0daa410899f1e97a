package geom

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func assertVec(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.True(t, EqualTol(want, got, 1e-9), "want %v, got %v", want, got)
}

func TestEqualWithinEpsilon(t *testing.T) {
	assert.True(t, Equal(vec(1, 2, 3), vec(1, 2, 3+5e-7)))
	assert.False(t, Equal(vec(1, 2, 3), vec(1, 2, 3+2e-6)))
}

func TestParallel(t *testing.T) {
	tests := []struct {
		name string
		a, b v3.Vec
		want bool
	}{
		{"same", vec(1, 0, 0), vec(3, 0, 0), true},
		{"opposite", vec(1, 0, 0), vec(-1, 0, 0), true},
		{"perpendicular", vec(1, 0, 0), vec(0, 1, 0), false},
		{"zero", vec(0, 0, 0), vec(1, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parallel(tt.a, tt.b))
		})
	}
}

func TestLineBasics(t *testing.T) {
	l := NewLine(vec(0, 0, 0), vec(2, 0, 0))
	assert.InDelta(t, 2, l.Length(), 1e-12)
	assertVec(t, vec(1, 0, 0), l.PointAt(0.5))
	assertVec(t, vec(1, 0, 0), l.TangentAt(0))
	assert.InDelta(t, 0.25, l.ParamAt(vec(0.5, 3, 0)), 1e-12)
	assert.InDelta(t, 1.5, l.ParamAt(vec(3, 0, 0)), 1e-12)

	sub := l.Subcurve(0.25, 0.75).(Line)
	assertVec(t, vec(0.5, 0, 0), sub.P0)
	assertVec(t, vec(1.5, 0, 0), sub.P1)

	r := l.Reversed()
	assertVec(t, l.End(), r.Start())
	assertVec(t, l.Start(), r.End())
}

func TestArcBasics(t *testing.T) {
	// Quarter circle from (1,0) to (0,1) around +Z.
	a := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), math.Pi/2)
	assertVec(t, vec(1, 0, 0), a.Start())
	assertVec(t, vec(0, 1, 0), a.End())
	assert.InDelta(t, math.Pi/2, a.Length(), 1e-12)
	assertVec(t, vec(0, 1, 0), a.TangentAt(0))
	assert.InDelta(t, 0.5, a.ParamAt(vec(math.Sqrt2, math.Sqrt2, 0)), 1e-9)

	r := a.Reversed()
	assertVec(t, vec(0, 1, 0), r.Start())
	assertVec(t, vec(1, 0, 0), r.End())
	assertVec(t, vec(1, 0, 0), r.TangentAt(0))

	neg := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), -math.Pi/2)
	assertVec(t, vec(0, -1, 0), neg.End())
}

func TestArcParamBeforeStartWrapsNegative(t *testing.T) {
	a := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), math.Pi/2)
	p := vec(math.Cos(-0.1), math.Sin(-0.1), 0)
	assert.Less(t, a.ParamAt(p), 0.0)
}

func TestColinear(t *testing.T) {
	a := NewLine(vec(0, 0, 0), vec(1, 0, 0))
	assert.True(t, Colinear(a, NewLine(vec(2, 0, 0), vec(1, 0, 0))))
	assert.False(t, Colinear(a, NewLine(vec(1, 0, 0), vec(1, 1, 0))))
	assert.False(t, Colinear(a, NewLine(vec(0, 1, 0), vec(1, 1, 0))))

	arc1 := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), 1)
	arc2 := NewArc(vec(0, 0, 0), vec(0, 0, -1), vec(0, 1, 0), 0.5)
	assert.True(t, Colinear(arc1, arc2))
	assert.False(t, Colinear(arc1, a))
}

func TestDistance(t *testing.T) {
	a := NewLine(vec(0, 0, 0), vec(2, 0, 0))
	assert.InDelta(t, 0.1, Distance(a, NewLine(vec(0, 0.1, 0), vec(2, 0.1, 0))), 1e-12)
	assert.InDelta(t, 1, Distance(a, NewLine(vec(3, 0, 0), vec(4, 0, 0))), 1e-12)
	assert.InDelta(t, 0, Distance(a, NewLine(vec(1, -1, 0), vec(1, 1, 0))), 1e-12)

	arc := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), math.Pi)
	assert.InDelta(t, 1, Distance(arc, NewLine(vec(-3, 2, 0), vec(3, 2, 0))), 1e-3)
}

func TestOnCurve(t *testing.T) {
	l := NewLine(vec(0, 0, 0), vec(4, 0, 0))
	u, ok := OnCurve(vec(1, 0, 0), l, Epsilon)
	require.True(t, ok)
	assert.InDelta(t, 0.25, u, 1e-12)

	_, ok = OnCurve(vec(1, 0.1, 0), l, Epsilon)
	assert.False(t, ok)
	_, ok = OnCurve(vec(5, 0, 0), l, Epsilon)
	assert.False(t, ok)
}

func TestFrameRoundTrip(t *testing.T) {
	f, ok := NewFrame(vec(1, 2, 3), vec(1, 0, 0), vec(0, 0, 1))
	require.True(t, ok)
	// Sweep along +X with Z up: profile X points left (+Y), profile Y is up.
	assertVec(t, vec(0, 1, 0), f.X)
	assertVec(t, vec(0, 0, 1), f.Y)

	p := vec(0.3, -0.7, 2)
	assertVec(t, p, f.ToLocal(f.ToWorld(p)))
	assertVec(t, vec(1, 2, 4), f.Point2D(v2.Vec{X: 0, Y: 1}))

	_, ok = NewFrame(vec(0, 0, 0), vec(0, 0, 1), vec(0, 0, 1))
	assert.False(t, ok)
}

func TestFrameCurveAndPlace(t *testing.T) {
	f, ok := NewFrame(vec(0, 0, 0), vec(1, 0, 0), vec(0, 0, 1))
	require.True(t, ok)
	arc := NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), math.Pi/2)
	w := f.Curve(arc)
	assertVec(t, f.ToWorld(arc.End()), w.End())

	moved := WorldFrame().Place(sdf.Translate3d(vec(5, 0, 0)))
	assertVec(t, vec(5, 0, 0), moved.Origin)
	assertVec(t, vec(1, 0, 0), moved.X)
}

func TestWalkOrdersFromAnchor(t *testing.T) {
	segs := []Line{
		NewLine(vec(2, 0, 0), vec(1, 0, 0)),
		NewLine(vec(0, 0, 0), vec(1, 0, 0)),
		NewLine(vec(9, 9, 0), vec(8, 8, 0)),
	}
	ends := func(i int) (v3.Vec, v3.Vec) { return segs[i].P0, segs[i].P1 }

	order, rev := Walk(len(segs), ends, vec(0, 0, 0), Epsilon)
	assert.Equal(t, []int{1, 0}, order)
	assert.Equal(t, []bool{false, true}, rev)

	order, _ = Walk(len(segs), ends, vec(5, 5, 5), Epsilon)
	assert.Empty(t, order)
}
