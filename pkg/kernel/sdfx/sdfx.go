// Package sdfx implements the kernel.Kernel interface on top of the
// github.com/deadsy/sdfx CAD library: exact curve offsetting, a mitred
// prism sweep producing a b-rep, and an SDF envelope of the swept volume.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxEnvelope wraps an sdf.SDF3 to implement kernel.Envelope.
type sdfxEnvelope struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (e *sdfxEnvelope) BoundingBox() (min, max [3]float64) {
	bb := e.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SDF exposes the underlying signed distance function.
func (e *sdfxEnvelope) SDF() sdf.SDF3 { return e.s }

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// Envelope extrudes the closed profile along each path segment and unions
// the pieces. Joints are not mitred, so the envelope slightly overshoots
// the b-rep at corners. Only a +Z up vector is supported.
func (k *SdfxKernel) Envelope(profile []kernel.ProfileCurve, path []kernel.PathSegment, opts kernel.SweepOptions) (kernel.Envelope, error) {
	p, err := newSweepPlan(profile, path, opts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: envelope: %w", err)
	}
	if !p.closedProfile {
		return nil, errors.New("sdfx: envelope: profile is not closed")
	}
	if !geom.Parallel(p.up, v3.Vec{Z: 1}) || p.up.Z < 0 {
		return nil, errors.New("sdfx: envelope: only +Z up is supported")
	}

	poly := make([]v2.Vec, len(p.points))
	for i, q := range p.points {
		poly[i] = v2.Vec{X: q.X, Y: q.Y}
	}
	section, err := sdf.Polygon2D(poly)
	if err != nil {
		return nil, fmt.Errorf("sdfx: envelope: profile polygon: %w", err)
	}

	parts := make([]sdf.SDF3, 0, p.segments())
	for i := 0; i < p.segments(); i++ {
		a, b := p.stations[i], p.stations[p.next(i)]
		d := b.Sub(a)
		length := d.Length()
		heading := math.Atan2(d.Y, d.X)
		pitch := math.Asin(d.Z / length)

		// Extrude3D centres the prism on z; shift it to [0, length], turn
		// local z onto +X with the profile facing left, then aim it.
		m := sdf.Translate3d(a).
			Mul(sdf.RotateZ(heading)).
			Mul(sdf.RotateY(-pitch)).
			Mul(sdf.RotateZ(math.Pi / 2)).
			Mul(sdf.RotateX(math.Pi / 2)).
			Mul(sdf.Translate3d(v3.Vec{Z: length / 2}))
		parts = append(parts, sdf.Transform3D(sdf.Extrude3D(section, length), m))
	}
	return &sdfxEnvelope{s: sdf.Union3D(parts...)}, nil
}
