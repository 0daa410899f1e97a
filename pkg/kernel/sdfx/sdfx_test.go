package sdfx

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func line(x0, y0, x1, y1 float64) geom.Line {
	return geom.NewLine(vec(x0, y0, 0), vec(x1, y1, 0))
}

// squareProfile is a closed 1x1 section with curves "1".."4".
func squareProfile() []kernel.ProfileCurve {
	return []kernel.ProfileCurve{
		{ID: "1", Curve: line(0, 0, 1, 0)},
		{ID: "2", Curve: line(1, 0, 1, 1)},
		{ID: "3", Curve: line(1, 1, 0, 1)},
		{ID: "4", Curve: line(0, 1, 0, 0), StartPoint: 5},
	}
}

func path(pts ...v3.Vec) []kernel.PathSegment {
	var out []kernel.PathSegment
	for i := 0; i+1 < len(pts); i++ {
		out = append(out, kernel.PathSegment{Tag: string(rune('0' + i)), Curve: geom.NewLine(pts[i], pts[i+1])})
	}
	return out
}

func TestOffsetRejoinsCorner(t *testing.T) {
	k := New()
	in := []geom.Curve{line(0, 0, 2, 0), line(2, 0, 2, 1)}
	out, err := k.Offset(in, 0.1, vec(0, 0, 1))
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d curves, want 2", len(out))
	}
	first := out[0].(geom.Line)
	second := out[1].(geom.Line)
	if !geom.Equal(first.P0, vec(0, 0.1, 0)) || !geom.Equal(first.P1, vec(1.9, 0.1, 0)) {
		t.Errorf("first = %v, want (0,0.1)-(1.9,0.1)", first)
	}
	if !geom.Equal(second.P0, vec(1.9, 0.1, 0)) || !geom.Equal(second.P1, vec(1.9, 1, 0)) {
		t.Errorf("second = %v, want (1.9,0.1)-(1.9,1)", second)
	}
}

func TestOffsetNegativeGoesRight(t *testing.T) {
	k := New()
	out, err := k.Offset([]geom.Curve{line(0, 0, 2, 0)}, -0.5, vec(0, 0, 1))
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if got := out[0].Start(); !geom.Equal(got, vec(0, -0.5, 0)) {
		t.Errorf("start = %v, want (0,-0.5,0)", got)
	}
}

func TestOffsetArc(t *testing.T) {
	k := New()
	arc := geom.NewArc(vec(0, 0, 0), vec(0, 0, 1), vec(1, 0, 0), math.Pi/2)

	out, err := k.Offset([]geom.Curve{arc}, 0.1, vec(0, 0, 1))
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	got := out[0].(geom.Arc)
	if math.Abs(got.Radius-0.9) > 1e-12 {
		t.Errorf("radius = %f, want 0.9 (left of a CCW arc is inward)", got.Radius)
	}

	out, err = k.Offset([]geom.Curve{arc}, 2, vec(0, 0, 1))
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if out[0].Length() != 0 {
		t.Errorf("collapsed arc length = %f, want 0", out[0].Length())
	}

	_, err = k.Offset([]geom.Curve{arc}, 0.1, vec(1, 0, 0))
	if !errors.Is(err, ErrOffsetPlane) {
		t.Errorf("err = %v, want ErrOffsetPlane", err)
	}
}

func TestSweepCappedPrism(t *testing.T) {
	k := New()
	res, err := k.Sweep(squareProfile(), path(vec(0, 0, 0), vec(10, 0, 0), vec(10, 10, 0)), kernel.SweepOptions{Caps: true})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	s := res.Solid
	if len(s.Vertices) != 12 || len(s.Edges) != 20 || len(s.Faces) != 10 {
		t.Fatalf("V/E/F = %d/%d/%d, want 12/20/10", len(s.Vertices), len(s.Edges), len(s.Faces))
	}
	for i, e := range s.Edges {
		if len(e.Coedges) != 2 {
			t.Errorf("edge %d has %d coedges, want 2 (closed solid)", i, len(e.Coedges))
		}
	}
	for _, id := range []string{"1", "2", "3", "4"} {
		if len(res.Faces[id]) != 2 {
			t.Errorf("curve %s has %d faces, want 2", id, len(res.Faces[id]))
		}
	}
	if res.Caps[0] < 0 || res.Caps[1] < 0 {
		t.Errorf("caps = %v, want both present", res.Caps)
	}
}

func TestSweepMitresCorner(t *testing.T) {
	k := New()
	res, err := k.Sweep(squareProfile(), path(vec(0, 0, 0), vec(10, 0, 0), vec(10, 10, 0)), kernel.SweepOptions{})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	// Profile x = 1 lies one unit left of travel; at a left turn the inner
	// corner pulls back along the first segment.
	if res.Solid.FindVertex(vec(9, 1, 0), 1e-9) < 0 {
		t.Error("missing mitred inner corner at (9,1,0)")
	}
	if res.Solid.FindVertex(vec(10, 0, 1), 1e-9) < 0 {
		t.Error("missing outer corner at (10,0,1)")
	}
	if !geom.Equal(res.Frame.X, vec(0, 1, 0)) {
		t.Errorf("frame X = %v, want +Y", res.Frame.X)
	}
}

func TestSweepClosedPathWraps(t *testing.T) {
	k := New()
	p := path(vec(0, 0, 0), vec(10, 0, 0), vec(10, 10, 0), vec(0, 10, 0), vec(0, 0, 0))
	res, err := k.Sweep(squareProfile(), p, kernel.SweepOptions{Caps: true})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(res.Solid.Vertices) != 16 || len(res.Solid.Faces) != 16 {
		t.Fatalf("V/F = %d/%d, want 16/16", len(res.Solid.Vertices), len(res.Solid.Faces))
	}
	if res.Caps[0] >= 0 {
		t.Error("closed path must not be capped")
	}
}

func TestSweepErrors(t *testing.T) {
	k := New()
	tests := []struct {
		name    string
		profile []kernel.ProfileCurve
		path    []kernel.PathSegment
	}{
		{"empty profile", nil, path(vec(0, 0, 0), vec(1, 0, 0))},
		{"empty path", squareProfile(), nil},
		{"vertical path", squareProfile(), path(vec(0, 0, 0), vec(0, 0, 5))},
		{"gap", squareProfile(), append(path(vec(0, 0, 0), vec(1, 0, 0)), path(vec(2, 0, 0), vec(3, 0, 0))...)},
		{"reversal", squareProfile(), path(vec(0, 0, 0), vec(5, 0, 0), vec(1, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := k.Sweep(tt.profile, tt.path, kernel.SweepOptions{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEnvelopeBoundingBox(t *testing.T) {
	k := New()
	env, err := k.Envelope(squareProfile(), path(vec(0, 0, 0), vec(10, 0, 0)), kernel.SweepOptions{})
	if err != nil {
		t.Fatalf("Envelope failed: %v", err)
	}
	min, max := env.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{10, 1, 1}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestEnvelopeRotated(t *testing.T) {
	k := New()
	env, err := k.Envelope(squareProfile(), path(vec(0, 0, 0), vec(0, 10, 0)), kernel.SweepOptions{})
	if err != nil {
		t.Fatalf("Envelope failed: %v", err)
	}
	min, max := env.BoundingBox()

	// Travel along +Y puts the profile's left side on -X.
	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]
	const tol = 0.01
	if math.Abs(xExtent-1) > tol {
		t.Errorf("X extent = %f, expected ~1", xExtent)
	}
	if math.Abs(yExtent-10) > tol {
		t.Errorf("Y extent = %f, expected ~10", yExtent)
	}
	if min[0] > -1+tol {
		t.Errorf("min X = %f, expected ~-1", min[0])
	}
}
