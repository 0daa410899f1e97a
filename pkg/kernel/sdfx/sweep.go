package sdfx

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trim/pkg/brep"
	"github.com/chazu/trim/pkg/diag"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
)

var (
	ErrEmptyProfile = errors.New("empty profile")
	ErrEmptyPath    = errors.New("empty path")
)

// sweepPlan holds the validated inputs shared by Sweep and Envelope.
type sweepPlan struct {
	profile []kernel.ProfileCurve
	path    []kernel.PathSegment
	up      v3.Vec

	points        []v3.Vec // profile points in profile space
	closedProfile bool
	closedPath    bool

	stations []v3.Vec // path points, one per station
	tangents []v3.Vec // per segment
	frames   []geom.Frame
}

func newSweepPlan(profile []kernel.ProfileCurve, path []kernel.PathSegment, opts kernel.SweepOptions) (*sweepPlan, error) {
	if len(profile) == 0 {
		return nil, ErrEmptyProfile
	}
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	p := &sweepPlan{profile: profile, path: path, up: opts.Up}
	if p.up.Length() == 0 {
		p.up = v3.Vec{Z: 1}
	}

	for i, pc := range profile {
		if pc.Curve.Length() <= geom.Epsilon {
			return nil, fmt.Errorf("profile curve %q is degenerate", pc.ID)
		}
		if i > 0 && !geom.Equal(profile[i-1].Curve.End(), pc.Curve.Start()) {
			return nil, fmt.Errorf("profile curve %q does not start where %q ends", pc.ID, profile[i-1].ID)
		}
		p.points = append(p.points, pc.Curve.Start())
	}
	last := profile[len(profile)-1].Curve.End()
	p.closedProfile = len(profile) > 2 && geom.Equal(last, p.points[0])
	if !p.closedProfile {
		p.points = append(p.points, last)
	}

	for i, seg := range path {
		if seg.Curve.Length() <= geom.Epsilon {
			return nil, fmt.Errorf("path segment %d is degenerate", i)
		}
		if i > 0 && !geom.Equal(path[i-1].Curve.End(), seg.Curve.Start()) {
			return nil, fmt.Errorf("path segment %d: %w", i, errDiscontinuous)
		}
		// Arcs sweep along their chord.
		p.stations = append(p.stations, seg.Curve.Start())
		p.tangents = append(p.tangents, geom.Unit(seg.Curve.End().Sub(seg.Curve.Start())))
	}
	end := path[len(path)-1].Curve.End()
	p.closedPath = len(path) > 2 && geom.Equal(end, p.stations[0])
	if !p.closedPath {
		p.stations = append(p.stations, end)
	}

	for i, t := range p.tangents {
		f, ok := geom.NewFrame(p.stations[i], t, p.up)
		if !ok {
			return nil, fmt.Errorf("path segment %d is parallel to the up vector", i)
		}
		p.frames = append(p.frames, f)
	}
	return p, nil
}

var errDiscontinuous = errors.New("does not start where the previous segment ends")

func (p *sweepPlan) segments() int { return len(p.path) }

// next returns the station at the far end of segment i.
func (p *sweepPlan) next(i int) int {
	return (i + 1) % len(p.stations)
}

// vertex returns the mitred position of profile point k at station j.
func (p *sweepPlan) vertex(j, k int) (v3.Vec, error) {
	q := p.points[k]
	n := p.segments()

	in, out := j-1, j
	if p.closedPath {
		in = (j - 1 + n) % n
	}
	switch {
	case out >= n: // end of an open path
		f := p.frames[in]
		f.Origin = p.stations[j]
		return f.ToWorld(q), nil
	case in < 0: // start of an open path
		return p.frames[out].ToWorld(q), nil
	}

	f := p.frames[in]
	f.Origin = p.stations[j]
	pt := f.ToWorld(q)
	m := geom.Unit(p.tangents[in].Add(p.tangents[out]))
	denom := p.tangents[in].Dot(m)
	if m.Length() == 0 || math.Abs(denom) <= geom.Epsilon {
		return v3.Vec{}, fmt.Errorf("path reverses at station %d", j)
	}
	t := -pt.Sub(p.stations[j]).Dot(m) / denom
	return pt.Add(p.tangents[in].MulScalar(t)), nil
}

// Sweep builds a mitred prism solid: one planar face per (profile curve,
// path segment), with optional end caps for a closed profile on an open
// path.
func (k *SdfxKernel) Sweep(profile []kernel.ProfileCurve, path []kernel.PathSegment, opts kernel.SweepOptions) (*kernel.SweepResult, error) {
	p, err := newSweepPlan(profile, path, opts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sweep: %w", err)
	}

	s := brep.New()
	nP, nS := len(p.points), len(p.stations)

	verts := make([][]brep.VertexID, nS)
	for j := range verts {
		verts[j] = make([]brep.VertexID, nP)
		for kk := range verts[j] {
			pt, err := p.vertex(j, kk)
			if err != nil {
				return nil, fmt.Errorf("sdfx: sweep: %w", err)
			}
			verts[j][kk] = s.AddVertex(pt)
		}
	}

	pk := func(kk int) int { return (kk + 1) % nP }

	// Section edges: profile curve kk at station j.
	sect := make([][]brep.EdgeID, nS)
	for j := range sect {
		sect[j] = make([]brep.EdgeID, len(profile))
		for kk := range profile {
			sect[j][kk] = s.AddEdge(verts[j][kk], verts[j][pk(kk)])
		}
	}
	// Long edges: profile point kk along segment i.
	long := make([][]brep.EdgeID, p.segments())
	for i := range long {
		long[i] = make([]brep.EdgeID, nP)
		for kk := 0; kk < nP; kk++ {
			long[i][kk] = s.AddEdge(verts[i][kk], verts[p.next(i)][kk])
		}
	}

	res := &kernel.SweepResult{
		Solid:   s,
		Faces:   make(map[string][]brep.FaceID, len(profile)),
		Caps:    [2]brep.FaceID{brep.NoFace, brep.NoFace},
		Profile: profile,
		Path:    path,
		Frame:   p.frames[0],
	}
	for kk, pc := range profile {
		faces := make([]brep.FaceID, p.segments())
		for i := range faces {
			f, err := s.AddFace([]brep.Use{
				{Edge: sect[i][kk]},
				{Edge: long[i][pk(kk)]},
				{Edge: sect[p.next(i)][kk], Reversed: true},
				{Edge: long[i][kk], Reversed: true},
			})
			if err != nil {
				return nil, fmt.Errorf("sdfx: sweep: curve %q segment %d: %w", pc.ID, i, err)
			}
			faces[i] = f
		}
		res.Faces[pc.ID] = faces
	}

	if opts.Caps && p.closedProfile && !p.closedPath {
		start := make([]brep.Use, 0, len(profile))
		for kk := len(profile) - 1; kk >= 0; kk-- {
			start = append(start, brep.Use{Edge: sect[0][kk], Reversed: true})
		}
		end := make([]brep.Use, 0, len(profile))
		for kk := range profile {
			end = append(end, brep.Use{Edge: sect[nS-1][kk]})
		}
		if res.Caps[0], err = s.AddFace(start); err != nil {
			return nil, fmt.Errorf("sdfx: sweep: start cap: %w", err)
		}
		if res.Caps[1], err = s.AddFace(end); err != nil {
			return nil, fmt.Errorf("sdfx: sweep: end cap: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: sweep: %w", err)
	}
	diag.Logger().Debug("sweep built",
		"profile", len(profile),
		"segments", p.segments(),
		"faces", len(s.Faces),
		"edges", len(s.Edges),
	)
	return res, nil
}
