package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Curve is a bounded, directed 3D curve parameterized over [0, 1].
type Curve interface {
	Start() v3.Vec
	End() v3.Vec
	Length() float64
	// PointAt evaluates the curve at normalized parameter t.
	PointAt(t float64) v3.Vec
	// TangentAt returns the unit tangent at t, in the direction of travel.
	TangentAt(t float64) v3.Vec
	// ParamAt returns the normalized parameter of the point of the carrier
	// closest to p. The result is not clamped to [0, 1].
	ParamAt(p v3.Vec) float64
	// Subcurve returns the portion between t0 and t1 (t0 < t1).
	Subcurve(t0, t1 float64) Curve
	Reversed() Curve
}

// -------------------------------------------------------------------
// Line
// -------------------------------------------------------------------

// Line is a straight segment from P0 to P1.
type Line struct {
	P0, P1 v3.Vec
}

// NewLine creates a segment.
func NewLine(p0, p1 v3.Vec) Line {
	return Line{P0: p0, P1: p1}
}

func (l Line) Start() v3.Vec   { return l.P0 }
func (l Line) End() v3.Vec     { return l.P1 }
func (l Line) Length() float64 { return Dist(l.P0, l.P1) }

// Direction returns the unit direction, or zero for a degenerate segment.
func (l Line) Direction() v3.Vec {
	return Unit(l.P1.Sub(l.P0))
}

func (l Line) PointAt(t float64) v3.Vec {
	return l.P0.Add(l.P1.Sub(l.P0).MulScalar(t))
}

func (l Line) TangentAt(float64) v3.Vec {
	return l.Direction()
}

func (l Line) ParamAt(p v3.Vec) float64 {
	d := l.P1.Sub(l.P0)
	l2 := d.Dot(d)
	if l2 == 0 {
		return 0
	}
	return p.Sub(l.P0).Dot(d) / l2
}

func (l Line) Subcurve(t0, t1 float64) Curve {
	return Line{P0: l.PointAt(t0), P1: l.PointAt(t1)}
}

func (l Line) Reversed() Curve {
	return Line{P0: l.P1, P1: l.P0}
}

func (l Line) String() string {
	return fmt.Sprintf("line(%s -> %s)", fmtVec(l.P0), fmtVec(l.P1))
}

// -------------------------------------------------------------------
// Arc
// -------------------------------------------------------------------

// Arc is a circular arc. It starts at Center + Ref*Radius and turns by
// Sweep radians about Axis following the right-hand rule.
type Arc struct {
	Center v3.Vec
	Axis   v3.Vec // unit normal of the arc plane
	Ref    v3.Vec // unit vector from Center toward the start point
	Radius float64
	Sweep  float64 // positive turn angle in radians
}

// NewArc creates an arc through start, turning sweep radians about axis.
// A negative sweep turns the other way and is stored with a flipped axis.
func NewArc(center, axis, start v3.Vec, sweep float64) Arc {
	n := Unit(axis)
	if sweep < 0 {
		n = n.Neg()
		sweep = -sweep
	}
	r := start.Sub(center)
	// Drop any out-of-plane component of the start vector.
	r = r.Sub(n.MulScalar(r.Dot(n)))
	return Arc{
		Center: center,
		Axis:   n,
		Ref:    Unit(r),
		Radius: r.Length(),
		Sweep:  sweep,
	}
}

// binormal is Axis × Ref, the in-plane direction a quarter turn ahead.
func (a Arc) binormal() v3.Vec {
	return a.Axis.Cross(a.Ref)
}

func (a Arc) radial(angle float64) v3.Vec {
	return a.Ref.MulScalar(math.Cos(angle)).Add(a.binormal().MulScalar(math.Sin(angle)))
}

func (a Arc) Start() v3.Vec   { return a.PointAt(0) }
func (a Arc) End() v3.Vec     { return a.PointAt(1) }
func (a Arc) Length() float64 { return a.Radius * a.Sweep }

func (a Arc) PointAt(t float64) v3.Vec {
	return a.Center.Add(a.radial(t * a.Sweep).MulScalar(a.Radius))
}

func (a Arc) TangentAt(t float64) v3.Vec {
	ang := t * a.Sweep
	return a.Ref.MulScalar(-math.Sin(ang)).Add(a.binormal().MulScalar(math.Cos(ang)))
}

func (a Arc) ParamAt(p v3.Vec) float64 {
	if a.Sweep == 0 {
		return 0
	}
	q := p.Sub(a.Center)
	ang := math.Atan2(q.Dot(a.binormal()), q.Dot(a.Ref))
	if ang < 0 {
		ang += 2 * math.Pi
	}
	// Angles past the end that sit closer to the start wrap negative.
	if ang > a.Sweep && ang-a.Sweep > (2*math.Pi-ang) {
		ang -= 2 * math.Pi
	}
	return ang / a.Sweep
}

func (a Arc) Subcurve(t0, t1 float64) Curve {
	return Arc{
		Center: a.Center,
		Axis:   a.Axis,
		Ref:    a.radial(t0 * a.Sweep),
		Radius: a.Radius,
		Sweep:  (t1 - t0) * a.Sweep,
	}
}

func (a Arc) Reversed() Curve {
	return Arc{
		Center: a.Center,
		Axis:   a.Axis.Neg(),
		Ref:    a.radial(a.Sweep),
		Radius: a.Radius,
		Sweep:  a.Sweep,
	}
}

func (a Arc) String() string {
	return fmt.Sprintf("arc(c=%s r=%.4g sweep=%.4g)", fmtVec(a.Center), a.Radius, a.Sweep)
}

func fmtVec(v v3.Vec) string {
	return fmt.Sprintf("(%.4g,%.4g,%.4g)", v.X, v.Y, v.Z)
}
