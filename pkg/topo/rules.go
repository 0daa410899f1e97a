package topo

import (
	"errors"
	"strings"
)

// Rules names the profile curves and face types that drive the special
// naming branches.
type Rules struct {
	// ShortCurve is the curve whose sweep may stop short of ReferenceCurve's.
	ShortCurve string
	// ReferenceCurve is the curve ShortCurve's face count is compared with.
	ReferenceCurve string
	// BoundaryPair is the face type pair named along the boundary chain
	// when ShortCurve's sweep is shorter.
	BoundaryPair [2]string
	// BoundaryPrefix prefixes the sequential boundary chain names.
	BoundaryPrefix string
	// AnchorPoint is the profile start-point marker the chain starts from.
	AnchorPoint int
	// EdgeCurvePair is the face type pair flagged edge-to-curve.
	EdgeCurvePair [2]string
}

// DefaultRules returns the light channel naming rules.
func DefaultRules() Rules {
	return Rules{
		ShortCurve:     "4",
		ReferenceCurve: "1",
		BoundaryPair:   [2]string{"4", "5"},
		BoundaryPrefix: "4>5",
		AnchorPoint:    5,
		EdgeCurvePair:  [2]string{"7", "1"},
	}
}

// Validate reports missing rule fields.
func (r Rules) Validate() error {
	var errs []error
	if r.ShortCurve == "" || r.ReferenceCurve == "" {
		errs = append(errs, errors.New("short and reference curves are required"))
	}
	if r.BoundaryPair[0] == "" || r.BoundaryPair[1] == "" {
		errs = append(errs, errors.New("boundary pair needs two face types"))
	}
	if r.BoundaryPrefix == "" {
		errs = append(errs, errors.New("boundary prefix is required"))
	}
	if r.AnchorPoint <= 0 {
		errs = append(errs, errors.New("anchor point must be positive"))
	}
	return errors.Join(errs...)
}

// FaceType returns the type prefix of a face name: everything before the
// first "-".
func FaceType(name string) string {
	t, _, _ := strings.Cut(name, "-")
	return t
}

// between reports whether two face names are of types a and b, in either
// order.
func between(n0, n1 string, pair [2]string) bool {
	t0, t1 := FaceType(n0), FaceType(n1)
	return (t0 == pair[0] && t1 == pair[1]) || (t0 == pair[1] && t1 == pair[0])
}
