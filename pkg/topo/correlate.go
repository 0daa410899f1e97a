package topo

import (
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/trim/pkg/brep"
)

// Snapshot is the name → handle index of one naming pass.
type Snapshot struct {
	Feature string
	Faces   map[string]brep.FaceID
	Edges   map[string]brep.EdgeID
	Coedges map[string]brep.CoedgeID
}

// TakeSnapshot indexes the current names of s.
func TakeSnapshot(s *brep.Solid) Snapshot {
	return Snapshot{
		Feature: s.Tags.Solid,
		Faces:   lo.Invert(s.Tags.FaceNames),
		Edges:   lo.Invert(s.Tags.EdgeNames),
		Coedges: lo.Invert(s.Tags.CoedgeNames),
	}
}

// Correlation maps the elements of a previous pass onto the current one by
// equal name.
type Correlation struct {
	Faces   map[brep.FaceID]brep.FaceID
	Edges   map[brep.EdgeID]brep.EdgeID
	Coedges map[brep.CoedgeID]brep.CoedgeID

	// Added and Removed list names present in only one pass, sorted.
	Added   []string
	Removed []string
}

// Correlate matches prev against cur. Only the immediately prior pass is
// meaningful; names carry no identity across unrelated edits.
func Correlate(prev, cur Snapshot) Correlation {
	c := Correlation{
		Faces:   match(prev.Faces, cur.Faces),
		Edges:   match(prev.Edges, cur.Edges),
		Coedges: match(prev.Coedges, cur.Coedges),
	}
	c.Added = append(c.Added, missing(cur.Faces, prev.Faces)...)
	c.Added = append(c.Added, missing(cur.Edges, prev.Edges)...)
	c.Added = append(c.Added, missing(cur.Coedges, prev.Coedges)...)
	c.Removed = append(c.Removed, missing(prev.Faces, cur.Faces)...)
	c.Removed = append(c.Removed, missing(prev.Edges, cur.Edges)...)
	c.Removed = append(c.Removed, missing(prev.Coedges, cur.Coedges)...)
	slices.Sort(c.Added)
	slices.Sort(c.Removed)
	return c
}

func match[H comparable](prev, cur map[string]H) map[H]H {
	out := make(map[H]H, len(prev))
	for name, p := range prev {
		if c, ok := cur[name]; ok {
			out[p] = c
		}
	}
	return out
}

// missing returns the names of a that are not in b.
func missing[H any](a, b map[string]H) []string {
	return lo.Filter(lo.Keys(a), func(name string, _ int) bool {
		_, ok := b[name]
		return !ok
	})
}
