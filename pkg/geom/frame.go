package geom

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frame is a right-handed local coordinate system. Profile geometry lives
// in the frame's XY plane; Z is the sweep direction at the frame origin.
type Frame struct {
	Origin  v3.Vec
	X, Y, Z v3.Vec
}

// WorldFrame is the identity frame.
func WorldFrame() Frame {
	return Frame{
		X: v3.Vec{X: 1},
		Y: v3.Vec{Y: 1},
		Z: v3.Vec{Z: 1},
	}
}

// NewFrame builds a frame at origin with the given Z axis. up seeds the
// Y direction; X = up × z. ok is false when z is degenerate or parallel
// to up.
func NewFrame(origin, z, up v3.Vec) (f Frame, ok bool) {
	zu := Unit(z)
	xu := Unit(up.Cross(zu))
	if zu.Length() == 0 || xu.Length() == 0 {
		return Frame{}, false
	}
	return Frame{Origin: origin, X: xu, Y: zu.Cross(xu), Z: zu}, true
}

// ToWorld maps a local point into world coordinates.
func (f Frame) ToWorld(p v3.Vec) v3.Vec {
	return f.Origin.
		Add(f.X.MulScalar(p.X)).
		Add(f.Y.MulScalar(p.Y)).
		Add(f.Z.MulScalar(p.Z))
}

// ToLocal maps a world point into frame coordinates.
func (f Frame) ToLocal(p v3.Vec) v3.Vec {
	d := p.Sub(f.Origin)
	return v3.Vec{X: d.Dot(f.X), Y: d.Dot(f.Y), Z: d.Dot(f.Z)}
}

// Point2D lifts a profile-space point onto the frame's XY plane.
func (f Frame) Point2D(p v2.Vec) v3.Vec {
	return f.ToWorld(v3.Vec{X: p.X, Y: p.Y})
}

// Direction maps a local direction into world coordinates.
func (f Frame) Direction(d v3.Vec) v3.Vec {
	return f.X.MulScalar(d.X).Add(f.Y.MulScalar(d.Y)).Add(f.Z.MulScalar(d.Z))
}

// Curve maps a local curve into world coordinates.
func (f Frame) Curve(c Curve) Curve {
	switch cc := c.(type) {
	case Line:
		return Line{P0: f.ToWorld(cc.P0), P1: f.ToWorld(cc.P1)}
	case Arc:
		return Arc{
			Center: f.ToWorld(cc.Center),
			Axis:   f.Direction(cc.Axis),
			Ref:    f.Direction(cc.Ref),
			Radius: cc.Radius,
			Sweep:  cc.Sweep,
		}
	}
	return c
}

// Place returns the frame moved by the placement matrix m.
func (f Frame) Place(m sdf.M44) Frame {
	o := m.MulPosition(f.Origin)
	dir := func(d v3.Vec) v3.Vec {
		return Unit(m.MulPosition(f.Origin.Add(d)).Sub(o))
	}
	return Frame{Origin: o, X: dir(f.X), Y: dir(f.Y), Z: dir(f.Z)}
}
