package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trim/pkg/feature"
	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/kernel"
	"github.com/chazu/trim/pkg/pather"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms trim Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: start-point -> start_point
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec wraps a point. Two-dimensional points lie in Z = 0.
type sexpVec struct {
	v    v3.Vec
	dims int
}

func (v *sexpVec) SexpString(ps *zygo.PrintState) string {
	if v.dims == 2 {
		return fmt.Sprintf("(vec2 %g %g)", v.v.X, v.v.Y)
	}
	return fmt.Sprintf("(vec3 %g %g %g)", v.v.X, v.v.Y, v.v.Z)
}
func (v *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpCurve wraps a line or an arc.
type sexpCurve struct {
	c geom.Curve
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(curve %v)", c.c)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpProfileCurve is a curve with its profile id, returned by `curve`.
type sexpProfileCurve struct {
	pc kernel.ProfileCurve
}

func (p *sexpProfileCurve) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(curve %q %v)", p.pc.ID, p.pc.Curve)
}
func (p *sexpProfileCurve) Type() *zygo.RegisteredType { return nil }

// sexpProfile wraps a complete cross-section.
type sexpProfile struct {
	curves []kernel.ProfileCurve
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(profile %d curves)", len(p.curves))
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

type sexpFragment struct {
	f *pather.Fragment
}

func (f *sexpFragment) SexpString(ps *zygo.PrintState) string {
	return "(" + f.f.String() + ")"
}
func (f *sexpFragment) Type() *zygo.RegisteredType { return nil }

type sexpNeighbor struct {
	n pather.Neighbor
}

func (n *sexpNeighbor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(neighbor %q %v)", n.n.Host, n.n.Curve)
}
func (n *sexpNeighbor) Type() *zygo.RegisteredType { return nil }

type sexpFeature struct {
	f *feature.Feature
}

func (f *sexpFeature) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(feature %q)", f.f.Name)
}
func (f *sexpFeature) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float reads an optional numeric keyword into dst.
func (a kwArgs) float(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// str reads an optional string keyword into dst.
func (a kwArgs) str(key string, dst *string) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = s
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare trailing keyword (nil value) counts as
// true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec extracts a point from a vec2 or vec3.
func toVec(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.v, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec2 or vec3, got %T (%s)", s, s.SexpString(nil))
}

// toCurve extracts a curve from a line, arc or profile curve.
func toCurve(s zygo.Sexp) (geom.Curve, error) {
	switch v := s.(type) {
	case *sexpCurve:
		return v.c, nil
	case *sexpProfileCurve:
		return v.pc.Curve, nil
	}
	return nil, fmt.Errorf("expected line or arc, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands list and array arguments in place, so builtins accept
// both (f a b) and (f (list a b)).
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all trim DSL builtins into a zygomys environment.
// Features defined by the source are appended to p.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *Program) {

	// -----------------------------------------------------------------------
	// (vec2 1 2) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	vec := func(dims int) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != dims {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly %d arguments, got %d", name, dims, len(args))
			}
			var c [3]float64
			for i, a := range args {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %c: %w", name, "xyz"[i], err)
				}
				c[i] = f
			}
			return &sexpVec{v: v3.Vec{X: c[0], Y: c[1], Z: c[2]}, dims: dims}, nil
		}
	}
	env.AddFunction("vec2", vec(2))
	env.AddFunction("vec3", vec(3))

	// -----------------------------------------------------------------------
	// (line (vec2 0 0) (vec2 10 0))
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("line requires a start and an end point")
		}
		p0, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: start: %w", err)
		}
		p1, err := toVec(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: end: %w", err)
		}
		if geom.Equal(p0, p1) {
			return zygo.SexpNull, fmt.Errorf("line: start and end coincide")
		}
		return &sexpCurve{c: geom.NewLine(p0, p1)}, nil
	})

	// -----------------------------------------------------------------------
	// (arc center start 90 :axis (vec3 0 0 1))
	//
	// The sweep is in degrees; a negative sweep turns clockwise about axis.
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("arc requires a center, a start point and a sweep")
		}
		center, err := toVec(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: center: %w", err)
		}
		start, err := toVec(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: start: %w", err)
		}
		deg, err := toFloat64(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: sweep: %w", err)
		}
		axis := v3.Vec{Z: 1}
		if v, ok := pa.kw["axis"]; ok {
			if axis, err = toVec(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: axis: %w", err)
			}
		}
		a := geom.NewArc(center, axis, start, deg*math.Pi/180)
		if a.Radius <= geom.Epsilon || a.Sweep <= geom.AngularEpsilon {
			return zygo.SexpNull, fmt.Errorf("arc: degenerate arc")
		}
		return &sexpCurve{c: a}, nil
	})

	// -----------------------------------------------------------------------
	// (curve "5" (line ...) :start-point 5)
	// -----------------------------------------------------------------------
	env.AddFunction("curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("curve requires an id and a line or arc")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve: id: %w", err)
		}
		c, err := toCurve(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve %s: %w", id, err)
		}
		pc := kernel.ProfileCurve{ID: id, Curve: c}
		if v, ok := pa.kw["start-point"]; ok {
			if pc.StartPoint, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("curve %s: start-point: %w", id, err)
			}
		}
		return &sexpProfileCurve{pc: pc}, nil
	})

	// -----------------------------------------------------------------------
	// (profile (curve "1" ...) (line ...) ...)
	//
	// Bare lines and arcs take their 1-based position as id.
	// -----------------------------------------------------------------------
	env.AddFunction("profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("profile: %w", err)
		}
		if len(items) == 0 {
			return zygo.SexpNull, fmt.Errorf("profile requires at least one curve")
		}
		seen := make(map[string]bool, len(items))
		curves := make([]kernel.ProfileCurve, 0, len(items))
		for i, item := range items {
			var pc kernel.ProfileCurve
			switch v := item.(type) {
			case *sexpProfileCurve:
				pc = v.pc
			case *sexpCurve:
				pc = kernel.ProfileCurve{ID: strconv.Itoa(i + 1), Curve: v.c}
			default:
				return zygo.SexpNull, fmt.Errorf("profile: curve %d: expected curve, line or arc, got %T (%s)",
					i+1, item, item.SexpString(nil))
			}
			if seen[pc.ID] {
				return zygo.SexpNull, fmt.Errorf("profile: duplicate curve id %q", pc.ID)
			}
			seen[pc.ID] = true
			curves = append(curves, pc)
		}
		return &sexpProfile{curves: curves}, nil
	})

	// -----------------------------------------------------------------------
	// (fragment (line ...) :host "wall-1" :index 0 :aux true
	//           :from 0 :to 0.5 :opening "door-1")
	//
	// The index defaults to the number of fragments created before.
	// -----------------------------------------------------------------------
	env.AddFunction("fragment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("fragment requires one base curve")
		}
		base, err := toCurve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fragment: base: %w", err)
		}

		var host, opening string
		index, kind := p.fragments, pather.Primary
		from, to := 0.0, 1.0
		if err := pa.str("host", &host); err != nil {
			return zygo.SexpNull, fmt.Errorf("fragment: %w", err)
		}
		if err := pa.str("opening", &opening); err != nil {
			return zygo.SexpNull, fmt.Errorf("fragment: %w", err)
		}
		if v, ok := pa.kw["index"]; ok {
			if index, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("fragment: index: %w", err)
			}
		}
		if v, ok := pa.kw["aux"]; ok {
			aux, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fragment: aux: %w", err)
			}
			if aux {
				kind = pather.Auxiliary
			}
		}
		if err := pa.float("from", &from); err != nil {
			return zygo.SexpNull, fmt.Errorf("fragment: %w", err)
		}
		if err := pa.float("to", &to); err != nil {
			return zygo.SexpNull, fmt.Errorf("fragment: %w", err)
		}
		if from < 0 || to > 1 || from > to {
			return zygo.SexpNull, fmt.Errorf("fragment: range [%g, %g] is outside [0, 1]", from, to)
		}

		p.fragments++
		f := pather.NewFragment(host, index, kind, base).WithRange(from, to)
		if opening != "" {
			f = f.WithOpening(opening)
		}
		return &sexpFragment{f: f}, nil
	})

	// -----------------------------------------------------------------------
	// (neighbor "wall-2" (line ...))
	// -----------------------------------------------------------------------
	env.AddFunction("neighbor", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("neighbor requires a host and a boundary curve")
		}
		host, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("neighbor: host: %w", err)
		}
		c, err := toCurve(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("neighbor %s: %w", host, err)
		}
		return &sexpNeighbor{n: pather.Neighbor{Host: host, Curve: c}}, nil
	})

	// -----------------------------------------------------------------------
	// (feature "baseboard" :profile p :host "wall-1" :offset 0.5
	//          :normal (vec3 0 0 1) (fragment ...) (neighbor ...) ...)
	//
	// Fragments and neighbors may be given positionally or in lists.
	// -----------------------------------------------------------------------
	env.AddFunction("feature", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("feature requires a name argument")
		}
		fname, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("feature: name: %w", err)
		}
		if p.Lookup(fname) != nil {
			return zygo.SexpNull, fmt.Errorf("feature: %q is already defined", fname)
		}

		v, ok := pa.kw["profile"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("feature %s: :profile is required", fname)
		}
		prof, ok := v.(*sexpProfile)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("feature %s: profile: expected profile, got %T (%s)", fname, v, v.SexpString(nil))
		}
		f := feature.New(fname, append([]kernel.ProfileCurve(nil), prof.curves...))

		if err := pa.str("host", &f.Host); err != nil {
			return zygo.SexpNull, fmt.Errorf("feature %s: %w", fname, err)
		}
		if err := pa.float("offset", &f.Offset); err != nil {
			return zygo.SexpNull, fmt.Errorf("feature %s: %w", fname, err)
		}
		if v, ok := pa.kw["normal"]; ok {
			if f.Normal, err = toVec(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("feature %s: normal: %w", fname, err)
			}
		}

		parts := pa.positional[1:]
		for _, key := range []string{"fragments", "neighbors"} {
			if v, ok := pa.kw[key]; ok {
				parts = append(parts, v)
			}
		}
		items, err := flatten(parts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("feature %s: %w", fname, err)
		}
		for _, item := range items {
			switch v := item.(type) {
			case *sexpFragment:
				f.Fragments = append(f.Fragments, v.f)
			case *sexpNeighbor:
				f.Neighbors = append(f.Neighbors, v.n)
			default:
				return zygo.SexpNull, fmt.Errorf("feature %s: expected fragment or neighbor, got %T (%s)",
					fname, item, item.SexpString(nil))
			}
		}

		p.Features = append(p.Features, f)
		return &sexpFeature{f: f}, nil
	})
}
