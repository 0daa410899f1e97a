package pather

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/diag"
)

// Split cuts f in two at point. When point is not strictly inside the
// fragment the result is the unsplit fragment together with ErrSplitParts,
// and a split-parts finding is reported.
func (a *Assembler) Split(f *Fragment, point v3.Vec) ([]*Fragment, error) {
	parts := f.SplitByPoints([]v3.Vec{point}, a.opts.Epsilon)
	if len(parts) != 2 {
		diag.Warn(a.opts.Reporter, diag.CodeSplitParts, f.String(),
			"split at (%.6g,%.6g,%.6g) produced %d parts", point.X, point.Y, point.Z, len(parts))
		return []*Fragment{f}, fmt.Errorf("pather: split %s: %w", f.Tag(), ErrSplitParts)
	}
	return parts, nil
}

// SplitGroups walks the assembled fragments in path order and starts a new
// group at point. The fragment whose span contains point is split in two;
// a point on the junction of two fragments separates them without a cut.
// A fragment that fails to split stays whole in the current group.
func (a *Assembler) SplitGroups(fragments []*Fragment, point v3.Vec) ([][]*Fragment, error) {
	chains, err := a.AssembleChains(fragments)
	if err != nil {
		return nil, fmt.Errorf("pather: split groups: %w", err)
	}

	groups := [][]*Fragment{nil}
	push := func(f *Fragment) { groups[len(groups)-1] = append(groups[len(groups)-1], f) }
	cut := func() { groups = append(groups, nil) }

	for _, ch := range chains {
		for _, f := range ch.Fragments() {
			c := f.SweepPath()
			pad := a.opts.Epsilon / c.Length()
			t := c.ParamAt(point)
			switch {
			case a.equal(point, c.Start()) && len(groups[len(groups)-1]) > 0:
				cut()
				push(f)
			case t > pad && t < 1-pad:
				parts, err := a.Split(f, point)
				if err != nil {
					push(f)
					continue
				}
				push(parts[0])
				cut()
				push(parts[1])
			default:
				push(f)
			}
		}
	}

	if len(groups) != 2 {
		diag.Warn(a.opts.Reporter, diag.CodeSplitParts, "",
			"split at (%.6g,%.6g,%.6g) produced %d groups", point.X, point.Y, point.Z, len(groups))
	}
	return groups, nil
}

// SplitChains splits at point and assembles each group on its own, so the
// first group's chains end at point and the second group's chains start
// there.
func (a *Assembler) SplitChains(fragments []*Fragment, point v3.Vec) ([][]Chain, error) {
	groups, err := a.SplitGroups(fragments, point)
	if err != nil {
		return nil, err
	}
	out := make([][]Chain, 0, len(groups))
	for i, g := range groups {
		chains, err := a.AssembleChains(g)
		if err != nil {
			return nil, fmt.Errorf("pather: split chains: group %d: %w", i, err)
		}
		out = append(out, chains)
	}
	return out, nil
}
