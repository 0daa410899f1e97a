// Package pather assembles path fragments into continuous sweep paths.
//
// Fragments are chained by endpoint coincidence alone. A chain can be
// stitched to the boundary of a neighboring host surface, offset through
// the kernel, and split in two at a point. The package is synchronous and
// does no I/O; the kernel handle and the diagnostic reporter are injected
// through New.
package pather

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

var (
	// ErrAmbiguousJoin is returned in strict mode when more than one
	// fragment qualifies for the same join.
	ErrAmbiguousJoin = errors.New("ambiguous join")
	// ErrSplitParts is returned when a split does not produce two parts.
	ErrSplitParts = errors.New("split did not produce two parts")
	// ErrEmptySweepPath is returned when nothing is left to sweep.
	ErrEmptySweepPath = errors.New("empty sweep path")
)

// Options configures an Assembler.
type Options struct {
	// Epsilon is the endpoint coincidence tolerance. Zero means geom.Epsilon.
	Epsilon float64
	// Strict turns ambiguous joins into errors instead of warnings.
	Strict bool
	// Reporter receives integrity findings. Nil logs them.
	Reporter diag.Reporter
}

// Assembler chains, stitches, offsets and splits path fragments.
type Assembler struct {
	k    kernel.Kernel
	opts Options
}

// New returns an Assembler that offsets through k.
func New(k kernel.Kernel, opts Options) *Assembler {
	if opts.Epsilon <= 0 {
		opts.Epsilon = geom.Epsilon
	}
	opts.Reporter = diag.Or(opts.Reporter)
	return &Assembler{k: k, opts: opts}
}

// Epsilon returns the endpoint tolerance in use.
func (a *Assembler) Epsilon() float64 { return a.opts.Epsilon }

func (a *Assembler) equal(p, q v3.Vec) bool {
	return geom.EqualTol(p, q, a.opts.Epsilon)
}

// -------------------------------------------------------------------
// Assembly
// -------------------------------------------------------------------

type item struct {
	frag  *Fragment
	curve geom.Curve
}

// AssembleChains partitions fragments into maximal chains. Each unplaced
// fragment seeds a chain which then grows backwards, prepending fragments
// whose end meets its head, and forwards, appending fragments whose start
// meets its tail. Fragments with an empty range are ignored.
//
// When several fragments qualify for one join the first in input order
// wins and an ambiguous-join finding is reported; in strict mode the call
// fails with ErrAmbiguousJoin instead.
func (a *Assembler) AssembleChains(fragments []*Fragment) ([]Chain, error) {
	items := make([]item, 0, len(fragments))
	for _, f := range fragments {
		if c := f.SweepPath(); c != nil {
			items = append(items, item{frag: f, curve: c})
		}
	}

	consumed := roaring.New()
	var chains []Chain
	for i := range items {
		if consumed.Contains(uint32(i)) {
			continue
		}
		consumed.Add(uint32(i))
		links := []Link{{Curve: items[i].curve, Fragment: items[i].frag}}

		for {
			head := links[0].Curve.Start()
			j, err := a.pick(items, consumed, func(it item) bool { return a.equal(it.curve.End(), head) }, "head", head)
			if err != nil {
				return nil, err
			}
			if j < 0 {
				break
			}
			consumed.Add(uint32(j))
			links = append([]Link{{Curve: items[j].curve, Fragment: items[j].frag}}, links...)
		}
		for {
			tail := links[len(links)-1].Curve.End()
			j, err := a.pick(items, consumed, func(it item) bool { return a.equal(it.curve.Start(), tail) }, "tail", tail)
			if err != nil {
				return nil, err
			}
			if j < 0 {
				break
			}
			consumed.Add(uint32(j))
			links = append(links, Link{Curve: items[j].curve, Fragment: items[j].frag})
		}
		chains = append(chains, Chain{Links: links})
	}

	diag.Logger().Debug("chains assembled", "fragments", len(items), "chains", len(chains))
	return chains, nil
}

// pick returns the first unconsumed item matching ok, or -1.
func (a *Assembler) pick(items []item, consumed *roaring.Bitmap, ok func(item) bool, end string, at v3.Vec) (int, error) {
	var found []int
	for j, it := range items {
		if consumed.Contains(uint32(j)) || !ok(it) {
			continue
		}
		found = append(found, j)
	}
	if len(found) == 0 {
		return -1, nil
	}
	if len(found) > 1 {
		subject := fmt.Sprintf("%s (%.6g,%.6g,%.6g)", end, at.X, at.Y, at.Z)
		if a.opts.Strict {
			f := diag.Violation(a.opts.Reporter, diag.CodeAmbiguousJoin, subject, "%d fragments qualify", len(found))
			return -1, fmt.Errorf("pather: %w: %s", ErrAmbiguousJoin, f.Error())
		}
		diag.Warn(a.opts.Reporter, diag.CodeAmbiguousJoin, subject,
			"%d fragments qualify, taking %s", len(found), items[found[0]].frag.Tag())
	}
	return found[0], nil
}

// -------------------------------------------------------------------
// Neighbors
// -------------------------------------------------------------------

// ConnectToNeighbors extends each open end of chain with at most one
// neighbor boundary curve. A neighbor is accepted when one of its
// endpoints meets the open end and it is not collinear with the chain's
// end link; it is reversed when needed to keep the chain directed. A
// neighbor is borrowed at one end at most.
func (a *Assembler) ConnectToNeighbors(chain Chain, neighbors []Neighbor) Chain {
	if chain.Len() == 0 || chain.Closed(a.opts.Epsilon) {
		return chain
	}
	links := append([]Link(nil), chain.Links...)
	startDone, endDone := false, false

	for i := range neighbors {
		n := &neighbors[i]
		first := links[0]
		if !startDone && !geom.Colinear(n.Curve, first.Curve) {
			switch {
			case a.equal(n.Curve.End(), first.Curve.Start()):
				links = append([]Link{{Curve: n.Curve, Neighbor: n}}, links...)
				startDone = true
			case a.equal(n.Curve.Start(), first.Curve.Start()):
				links = append([]Link{{Curve: n.Curve.Reversed(), Neighbor: n, Reversed: true}}, links...)
				startDone = true
			}
			if startDone && links[0].Neighbor == n {
				// A neighbor spanning both open ends closes only the start.
				continue
			}
		}

		last := links[len(links)-1]
		if !endDone && !geom.Colinear(n.Curve, last.Curve) {
			switch {
			case a.equal(n.Curve.Start(), last.Curve.End()):
				links = append(links, Link{Curve: n.Curve, Neighbor: n})
				endDone = true
			case a.equal(n.Curve.End(), last.Curve.End()):
				links = append(links, Link{Curve: n.Curve.Reversed(), Neighbor: n, Reversed: true})
				endDone = true
			}
		}
	}
	return Chain{Links: links}
}

// -------------------------------------------------------------------
// Offset
// -------------------------------------------------------------------

// OffsetChain offsets the whole chain by distance to the left of travel
// about normal, then drops offset curves that collapsed or that reproduce
// a borrowed neighbor segment: a parallel line at exactly |distance| from
// it, or an arc sharing its center. An empty result is reported as an
// empty-sweep-path finding and returned without error.
func (a *Assembler) OffsetChain(chain Chain, distance float64, normal v3.Vec) ([]geom.Curve, error) {
	out, err := a.OffsetLinks(chain, distance, normal)
	if err != nil {
		return nil, err
	}
	return out.Curves(), nil
}

// OffsetLinks is OffsetChain keeping each surviving curve on the link it
// came from, so fragment tags and borrowed markers carry over.
func (a *Assembler) OffsetLinks(chain Chain, distance float64, normal v3.Vec) (Chain, error) {
	if chain.Len() == 0 {
		return Chain{}, nil
	}
	offset, err := a.k.Offset(chain.Curves(), distance, normal)
	if err != nil {
		return Chain{}, fmt.Errorf("pather: offset chain: %w", err)
	}
	if len(offset) != chain.Len() {
		return Chain{}, fmt.Errorf("pather: offset chain: kernel returned %d curves for %d", len(offset), chain.Len())
	}

	var borrowed []geom.Curve
	for _, l := range chain.Links {
		if l.Borrowed() {
			borrowed = append(borrowed, l.Curve)
		}
	}

	out := make([]Link, 0, len(offset))
	for i, c := range offset {
		if c.Length() <= a.opts.Epsilon || a.duplicatesBorrowed(c, borrowed, distance) {
			continue
		}
		l := chain.Links[i]
		l.Curve = c
		out = append(out, l)
	}
	if len(out) == 0 {
		diag.Warn(a.opts.Reporter, diag.CodeEmptySweepPath, "",
			"offset of %d curves by %.6g left nothing to sweep", chain.Len(), distance)
	}
	return Chain{Links: out}, nil
}

func (a *Assembler) duplicatesBorrowed(c geom.Curve, borrowed []geom.Curve, distance float64) bool {
	for _, b := range borrowed {
		switch oc := c.(type) {
		case geom.Line:
			bl, ok := b.(geom.Line)
			if ok && geom.Parallel(oc.Direction(), bl.Direction()) &&
				math.Abs(geom.Distance(oc, bl)-math.Abs(distance)) < a.opts.Epsilon {
				return true
			}
		case geom.Arc:
			ba, ok := b.(geom.Arc)
			if ok && a.equal(oc.Center, ba.Center) {
				return true
			}
		}
	}
	return false
}
