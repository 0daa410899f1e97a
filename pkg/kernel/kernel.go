// Package kernel defines the geometry kernel handle used by the path
// assembler and the feature pipeline. Implementations provide curve
// offsetting and the sweep primitive behind this interface, so the rest
// of the system never reaches for an ambient math library.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/brep"
	"github.com/chazu/trim/pkg/geom"
)

// ProfileCurve is one edge of the cross-section. Curve lies in the profile
// plane (Z = 0) of the sweep frame: +X points to the left of travel, +Y
// points up.
type ProfileCurve struct {
	ID         string // stable id, "1".."N" by construction order
	StartPoint int    // logical start point marker, 0 if none
	Curve      geom.Curve
}

// PathSegment is one position along the sweep path.
type PathSegment struct {
	Tag   string // path position tag; "" when the segment carries none
	Curve geom.Curve
}

// SweepOptions controls the sweep primitive.
type SweepOptions struct {
	// Caps closes the ends of an open path when the profile is closed.
	Caps bool
	// Up orients the profile plane. Zero means +Z.
	Up v3.Vec
}

// SweepResult is the unnamed b-rep produced by a sweep together with the
// data the topology namer needs to name it.
type SweepResult struct {
	Solid *brep.Solid

	// Faces maps a profile curve id to the faces it generated, indexed by
	// path position. A position with no face holds brep.NoFace.
	Faces map[string][]brep.FaceID

	// Caps holds the start and end cap faces, brep.NoFace when uncapped.
	Caps [2]brep.FaceID

	Profile []ProfileCurve
	Path    []PathSegment

	// Frame maps profile space to world space at the start of the path.
	Frame geom.Frame
}

// Envelope is a volume approximation of a swept body.
type Envelope interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Offset shifts a connected list of curves by distance to the left of
	// travel (normal × tangent). The result has one curve per input curve;
	// neighbors are re-joined at their intersections.
	Offset(curves []geom.Curve, distance float64, normal v3.Vec) ([]geom.Curve, error)

	// Sweep moves the profile along the path and returns the unnamed solid.
	Sweep(profile []ProfileCurve, path []PathSegment, opts SweepOptions) (*SweepResult, error)

	// Envelope returns a volume approximation of the same sweep.
	Envelope(profile []ProfileCurve, path []PathSegment, opts SweepOptions) (Envelope, error)
}
