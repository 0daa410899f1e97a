package pather

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/geom"
)

// Neighbor is a boundary curve of an adjacent host surface that may be
// borrowed to close the end of a chain.
type Neighbor struct {
	Host  string
	Curve geom.Curve
}

// Link is one directed curve of a chain. Exactly one of Fragment and
// Neighbor is set; Neighbor marks a borrowed boundary segment.
type Link struct {
	Curve    geom.Curve
	Fragment *Fragment
	Neighbor *Neighbor
	Reversed bool // Curve runs against the neighbor's own direction
}

// Borrowed reports whether the link came from a neighbor surface.
func (l Link) Borrowed() bool { return l.Neighbor != nil }

// Chain is an ordered run of links where each link ends where the next
// starts.
type Chain struct {
	Links []Link
}

// Len returns the number of links.
func (c Chain) Len() int { return len(c.Links) }

// Curves returns the link curves in order.
func (c Chain) Curves() []geom.Curve {
	out := make([]geom.Curve, len(c.Links))
	for i, l := range c.Links {
		out[i] = l.Curve
	}
	return out
}

// Fragments returns the fragments of the chain, skipping borrowed links.
func (c Chain) Fragments() []*Fragment {
	var out []*Fragment
	for _, l := range c.Links {
		if l.Fragment != nil {
			out = append(out, l.Fragment)
		}
	}
	return out
}

// Start returns the start point of the first link.
func (c Chain) Start() v3.Vec { return c.Links[0].Curve.Start() }

// End returns the end point of the last link.
func (c Chain) End() v3.Vec { return c.Links[len(c.Links)-1].Curve.End() }

// Length returns the total curve length.
func (c Chain) Length() float64 {
	var sum float64
	for _, l := range c.Links {
		sum += l.Curve.Length()
	}
	return sum
}

// Closed reports whether the chain ends where it starts.
func (c Chain) Closed(tol float64) bool {
	return len(c.Links) > 1 && geom.EqualTol(c.Start(), c.End(), tol)
}

// Tags returns the path position tags of the links. Borrowed links carry
// no tag.
func (c Chain) Tags() []string {
	out := make([]string, len(c.Links))
	for i, l := range c.Links {
		if l.Fragment != nil {
			out[i] = l.Fragment.Tag()
		}
	}
	return out
}
