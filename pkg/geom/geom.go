// Package geom holds the tolerant geometric predicates shared by the path
// assembler and the topology namer: point equality within a length
// tolerance, line and arc curves, parallelism and distance tests, and the
// local frame used to lift 2D profile geometry into 3D.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the length tolerance for endpoint coincidence.
const Epsilon = 1e-6

// AngularEpsilon bounds |a × b| for unit vectors considered parallel.
const AngularEpsilon = 1e-6

// Equal reports whether a and b coincide within Epsilon.
func Equal(a, b v3.Vec) bool {
	return EqualTol(a, b, Epsilon)
}

// EqualTol reports whether a and b coincide within tol.
func EqualTol(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

// Dist returns the distance between two points.
func Dist(a, b v3.Vec) float64 {
	return a.Sub(b).Length()
}

// Unit returns v scaled to unit length, or the zero vector when v is
// shorter than Epsilon.
func Unit(v v3.Vec) v3.Vec {
	if v.Length() <= Epsilon {
		return v3.Vec{}
	}
	return v.Normalize()
}

// Parallel reports whether two directions are parallel or anti-parallel.
// Zero-length directions are never parallel.
func Parallel(a, b v3.Vec) bool {
	ua, ub := Unit(a), Unit(b)
	if ua.Length() == 0 || ub.Length() == 0 {
		return false
	}
	return ua.Cross(ub).Length() <= AngularEpsilon
}

// PointLineDistance returns the distance from p to the infinite line
// through l.
func PointLineDistance(p v3.Vec, l Line) float64 {
	d := Unit(l.P1.Sub(l.P0))
	if d.Length() == 0 {
		return Dist(p, l.P0)
	}
	return p.Sub(l.P0).Cross(d).Length()
}

// Colinear reports whether two curves lie on the same carrier: the same
// infinite line for two lines, or the same circle for two arcs.
func Colinear(a, b Curve) bool {
	switch ca := a.(type) {
	case Line:
		cb, ok := b.(Line)
		if !ok {
			return false
		}
		if !Parallel(ca.Direction(), cb.Direction()) {
			return false
		}
		return PointLineDistance(cb.P0, ca) <= Epsilon && PointLineDistance(cb.P1, ca) <= Epsilon
	case Arc:
		cb, ok := b.(Arc)
		if !ok {
			return false
		}
		return Equal(ca.Center, cb.Center) &&
			math.Abs(ca.Radius-cb.Radius) <= Epsilon &&
			Parallel(ca.Axis, cb.Axis)
	}
	return false
}

// Distance returns the minimum distance between two curves. Line pairs
// are solved exactly; any pair involving an arc is sampled.
func Distance(a, b Curve) float64 {
	la, okA := a.(Line)
	lb, okB := b.(Line)
	if okA && okB {
		return segmentDistance(la, lb)
	}
	return sampledDistance(a, b)
}

// segmentDistance computes the closest distance between two segments
// (Ericson, Real-Time Collision Detection, 5.1.9).
func segmentDistance(l1, l2 Line) float64 {
	d1 := l1.P1.Sub(l1.P0)
	d2 := l2.P1.Sub(l2.P0)
	r := l1.P0.Sub(l2.P0)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= Epsilon*Epsilon && e <= Epsilon*Epsilon:
		return Dist(l1.P0, l2.P0)
	case a <= Epsilon*Epsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= Epsilon*Epsilon {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	c1 := l1.P0.Add(d1.MulScalar(s))
	c2 := l2.P0.Add(d2.MulScalar(t))
	return Dist(c1, c2)
}

const distanceSamples = 64

func sampledDistance(a, b Curve) float64 {
	best := math.Inf(1)
	for i := 0; i <= distanceSamples; i++ {
		t := float64(i) / distanceSamples
		if d := pointCurveDistance(a.PointAt(t), b); d < best {
			best = d
		}
		if d := pointCurveDistance(b.PointAt(t), a); d < best {
			best = d
		}
	}
	return best
}

// pointCurveDistance returns the distance from p to the closest point of c
// within its parameter range.
func pointCurveDistance(p v3.Vec, c Curve) float64 {
	t := clamp01(c.ParamAt(p))
	return Dist(p, c.PointAt(t))
}

// OnCurve reports whether p lies on c within tol, returning its parameter.
func OnCurve(p v3.Vec, c Curve, tol float64) (float64, bool) {
	t := c.ParamAt(p)
	return t, Dist(p, c.PointAt(clamp01(t))) <= tol
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
