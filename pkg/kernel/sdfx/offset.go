package sdfx

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
)

// ErrOffsetPlane is returned when an arc does not lie in the offset plane.
var ErrOffsetPlane = errors.New("arc axis not parallel to offset normal")

// Offset shifts each curve to the left of travel (normal × tangent) by
// distance. Consecutive lines that met before the offset are re-joined at
// the intersection of their carriers, including the wrap of a closed list.
// An arc that collapses becomes a zero-length line at its center.
func (k *SdfxKernel) Offset(curves []geom.Curve, distance float64, normal v3.Vec) ([]geom.Curve, error) {
	n := geom.Unit(normal)
	if n.Length() == 0 {
		return nil, errors.New("sdfx: offset: zero normal")
	}
	out := make([]geom.Curve, len(curves))
	for i, c := range curves {
		oc, err := offsetCurve(c, distance, n)
		if err != nil {
			return nil, fmt.Errorf("sdfx: offset curve %d: %w", i, err)
		}
		out[i] = oc
	}
	if distance == 0 || len(curves) < 2 {
		return out, nil
	}

	joined := func(i, j int) bool {
		return geom.Equal(curves[i].End(), curves[j].Start())
	}
	for i := 0; i+1 < len(out); i++ {
		if joined(i, i+1) {
			rejoin(out, i, i+1)
		}
	}
	if last := len(out) - 1; joined(last, 0) {
		rejoin(out, last, 0)
	}
	return out, nil
}

func offsetCurve(c geom.Curve, d float64, n v3.Vec) (geom.Curve, error) {
	switch cc := c.(type) {
	case geom.Line:
		side := geom.Unit(n.Cross(cc.Direction()))
		shift := side.MulScalar(d)
		return geom.NewLine(cc.P0.Add(shift), cc.P1.Add(shift)), nil
	case geom.Arc:
		if !geom.Parallel(cc.Axis, n) {
			return nil, ErrOffsetPlane
		}
		s := math.Copysign(1, cc.Axis.Dot(n))
		r := cc.Radius - d*s
		if r <= geom.Epsilon {
			return geom.NewLine(cc.Center, cc.Center), nil
		}
		out := cc
		out.Radius = r
		return out, nil
	}
	return nil, fmt.Errorf("unsupported curve %T", c)
}

// rejoin moves the shared end of two offset lines to the intersection of
// their carriers. Parallel lines and non-line pairs are left alone.
func rejoin(out []geom.Curve, i, j int) {
	a, okA := out[i].(geom.Line)
	b, okB := out[j].(geom.Line)
	if !okA || !okB || geom.Parallel(a.Direction(), b.Direction()) {
		return
	}
	x, ok := intersectLines(a, b)
	if !ok {
		return
	}
	a.P1 = x
	b.P0 = x
	out[i] = a
	out[j] = b
}

// intersectLines returns the midpoint of the closest points between the
// infinite carriers of a and b.
func intersectLines(a, b geom.Line) (v3.Vec, bool) {
	d1 := a.P1.Sub(a.P0)
	d2 := b.P1.Sub(b.P0)
	w := a.P0.Sub(b.P0)
	aa, bb, cc := d1.Dot(d1), d1.Dot(d2), d2.Dot(d2)
	dd, ee := d1.Dot(w), d2.Dot(w)
	denom := aa*cc - bb*bb
	if math.Abs(denom) <= geom.Epsilon*geom.Epsilon {
		return v3.Vec{}, false
	}
	t := (bb*ee - cc*dd) / denom
	s := (aa*ee - bb*dd) / denom
	p := a.P0.Add(d1.MulScalar(t))
	q := b.P0.Add(d2.MulScalar(s))
	return p.Add(q).MulScalar(0.5), true
}
