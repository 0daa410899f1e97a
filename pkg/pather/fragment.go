package pather

import (
	"fmt"
	"sort"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
)

// Kind distinguishes primary run segments from auxiliary ones, such as the
// returns cut around an opening.
type Kind int

const (
	Primary Kind = iota
	Auxiliary
)

func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Auxiliary:
		return "auxiliary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fragment is an immutable reference to a piece of a host curve. The
// normalized range [from, to] selects the part of the base curve that is
// swept; recomputing a feature replaces its fragments wholesale.
type Fragment struct {
	host    string
	index   int
	kind    Kind
	opening string
	base    geom.Curve
	from    float64
	to      float64
}

// NewFragment references the whole of base.
func NewFragment(host string, index int, kind Kind, base geom.Curve) *Fragment {
	return &Fragment{host: host, index: index, kind: kind, base: base, from: 0, to: 1}
}

// WithRange returns a copy restricted to the normalized range [from, to].
func (f *Fragment) WithRange(from, to float64) *Fragment {
	c := *f
	c.from, c.to = from, to
	return &c
}

// WithOpening returns a copy tagged with the opening it runs around.
func (f *Fragment) WithOpening(id string) *Fragment {
	c := *f
	c.opening = id
	return &c
}

func (f *Fragment) Host() string     { return f.host }
func (f *Fragment) Index() int       { return f.index }
func (f *Fragment) Kind() Kind       { return f.kind }
func (f *Fragment) Opening() string  { return f.opening }
func (f *Fragment) Base() geom.Curve { return f.base }

// Range returns the normalized parameter range on the base curve.
func (f *Fragment) Range() (from, to float64) { return f.from, f.to }

// Tag is the path position tag of the fragment: its index, prefixed with
// "a" for auxiliary fragments.
func (f *Fragment) Tag() string {
	if f.kind == Auxiliary {
		return "a" + strconv.Itoa(f.index)
	}
	return strconv.Itoa(f.index)
}

// SweepPath returns the swept portion of the base curve, or nil when the
// range is empty.
func (f *Fragment) SweepPath() geom.Curve {
	if f.base == nil || f.from >= f.to {
		return nil
	}
	if f.from == 0 && f.to == 1 {
		return f.base
	}
	return f.base.Subcurve(f.from, f.to)
}

// Start returns the start point of the swept portion.
func (f *Fragment) Start() v3.Vec { return f.base.PointAt(f.from) }

// End returns the end point of the swept portion.
func (f *Fragment) End() v3.Vec { return f.base.PointAt(f.to) }

// SplitByPoints cuts the fragment at every point that lies on the base
// curve strictly inside the current range. Parts share host, index, kind
// and opening. A fragment with no such point comes back as a single part.
func (f *Fragment) SplitByPoints(points []v3.Vec, tol float64) []*Fragment {
	length := f.base.Length()
	if length <= tol {
		return []*Fragment{f}
	}
	pad := tol / length
	var cuts []float64
	for _, p := range points {
		t, ok := geom.OnCurve(p, f.base, tol)
		if !ok || t <= f.from+pad || t >= f.to-pad {
			continue
		}
		cuts = append(cuts, t)
	}
	sort.Float64s(cuts)

	parts := make([]*Fragment, 0, len(cuts)+1)
	from := f.from
	for _, t := range cuts {
		if t-from <= pad {
			continue
		}
		parts = append(parts, f.WithRange(from, t))
		from = t
	}
	return append(parts, f.WithRange(from, f.to))
}

// Record is a flat diagnostic view of a fragment.
type Record struct {
	Host    string  `json:"host"`
	Index   string  `json:"index"`
	Aux     bool    `json:"aux"`
	Opening string  `json:"opening,omitempty"`
	From    float64 `json:"from"`
	To      float64 `json:"to"`
}

// Dump returns the diagnostic record of the fragment.
func (f *Fragment) Dump() Record {
	return Record{
		Host:    f.host,
		Index:   strconv.Itoa(f.index),
		Aux:     f.kind == Auxiliary,
		Opening: f.opening,
		From:    f.from,
		To:      f.to,
	}
}

func (f *Fragment) String() string {
	return fmt.Sprintf("fragment %s [%.4g, %.4g]", f.Tag(), f.from, f.to)
}
