package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/trim/pkg/geom"
	"github.com/chazu/trim/pkg/pather"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(fragment c :host "wall-1")`,
			expect: `(fragment c "__kw_host" "wall-1")`,
		},
		{
			name:   "multiple keywords",
			input:  `(fragment c :from 0 :to 0.5)`,
			expect: `(fragment c "__kw_from" 0 "__kw_to" 0.5)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def left-wall :host)`,
			expect: `(def left_wall "__kw_host")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 0 -10 0)`,
			expect: `(vec3 0 -10 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:start-point`,
			expect: `"__kw_start-point"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Feature definition
// ---------------------------------------------------------------------------

const baseboardSource = `
;; 12 x 80 baseboard section
(def base (profile
  (line (vec2 0 0) (vec2 12 0))
  (line (vec2 12 0) (vec2 12 80))
  (curve "3" (line (vec2 12 80) (vec2 0 80)))
  (curve "4" (line (vec2 0 80) (vec2 0 0)) :start-point 5)))

(feature "baseboard" :profile base :host "wall-1" :offset 0.5
  (fragment (line (vec3 0 0 0) (vec3 4000 0 0)) :host "wall-1")
  (fragment (line (vec3 4000 0 0) (vec3 4000 3000 0))
            :index 7 :aux true :from 0 :to 0.5 :opening "door-1")
  :neighbors (list (neighbor "wall-2" (line (vec3 0 -10 0) (vec3 0 0 0)))))
`

func TestFeatureDefinition(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate(baseboardSource)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(p.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(p.Features))
	}

	f := p.Lookup("baseboard")
	if f == nil {
		t.Fatal("expected feature named 'baseboard'")
	}
	if f.ID == "" {
		t.Error("expected a feature id")
	}
	if f.Host != "wall-1" {
		t.Errorf("host = %q, want wall-1", f.Host)
	}
	if f.Offset != 0.5 {
		t.Errorf("offset = %g, want 0.5", f.Offset)
	}

	if len(f.Profile) != 4 {
		t.Fatalf("expected 4 profile curves, got %d", len(f.Profile))
	}
	for i, want := range []string{"1", "2", "3", "4"} {
		if f.Profile[i].ID != want {
			t.Errorf("profile curve %d id = %q, want %q", i, f.Profile[i].ID, want)
		}
	}
	if f.Profile[3].StartPoint != 5 {
		t.Errorf("start point = %d, want 5", f.Profile[3].StartPoint)
	}

	if len(f.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(f.Fragments))
	}
	if tag := f.Fragments[0].Tag(); tag != "0" {
		t.Errorf("first fragment tag = %q, want 0", tag)
	}
	second := f.Fragments[1]
	if second.Tag() != "a7" || second.Kind() != pather.Auxiliary {
		t.Errorf("second fragment = %s, want auxiliary a7", second)
	}
	if second.Opening() != "door-1" {
		t.Errorf("opening = %q, want door-1", second.Opening())
	}
	if from, to := second.Range(); from != 0 || to != 0.5 {
		t.Errorf("range = [%g, %g], want [0, 0.5]", from, to)
	}

	if len(f.Neighbors) != 1 || f.Neighbors[0].Host != "wall-2" {
		t.Errorf("neighbors = %v, want one on wall-2", f.Neighbors)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", p.Warnings)
	}
}

func TestArc(t *testing.T) {
	eng := NewEngine()

	source := `
(def p (profile (line (vec2 0 0) (vec2 1 0))))
(feature "curved" :profile p
  (fragment (arc (vec2 0 0) (vec2 2 0) 90)))
`
	p, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	a, ok := p.Lookup("curved").Fragments[0].Base().(geom.Arc)
	if !ok {
		t.Fatalf("expected an arc base, got %T", p.Lookup("curved").Fragments[0].Base())
	}
	if math.Abs(a.Radius-2) > 1e-9 || math.Abs(a.Sweep-math.Pi/2) > 1e-9 {
		t.Errorf("arc radius %g sweep %g, want 2 and pi/2", a.Radius, a.Sweep)
	}
	end := a.End()
	if math.Abs(end.X) > 1e-9 || math.Abs(end.Y-2) > 1e-9 {
		t.Errorf("arc end = %v, want (0, 2, 0)", end)
	}
}

func TestFragmentDefaultIndexCountsUp(t *testing.T) {
	eng := NewEngine()

	source := `
(def p (profile (line (vec2 0 0) (vec2 1 0))))
(feature "run" :profile p :fragments (list
  (fragment (line (vec3 0 0 0) (vec3 1 0 0)))
  (fragment (line (vec3 1 0 0) (vec3 2 0 0)))
  (fragment (line (vec3 2 0 0) (vec3 3 0 0)))))
`
	p, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	for i, f := range p.Lookup("run").Fragments {
		if f.Index() != i {
			t.Errorf("fragment %d has index %d", i, f.Index())
		}
	}
}

func TestFeatureWithoutFragmentsWarns(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate(`(feature "empty" :profile (profile (line (vec2 0 0) (vec2 1 0))))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(p.Warnings) != 1 || p.Warnings[0].Feature != "empty" {
		t.Fatalf("expected one warning for 'empty', got %v", p.Warnings)
	}
}

func TestBuiltinErrors(t *testing.T) {
	profile := `(def p (profile (line (vec2 0 0) (vec2 1 0))))` + "\n"
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing profile", `(feature "f")`, "profile is required"},
		{"duplicate feature", profile + `(feature "f" :profile p) (feature "f" :profile p)`, "already defined"},
		{"degenerate line", `(line (vec2 1 1) (vec2 1 1))`, "coincide"},
		{"degenerate arc", `(arc (vec2 0 0) (vec2 1 0) 0)`, "degenerate"},
		{"duplicate curve id", `(profile (curve "2" (line (vec2 0 0) (vec2 1 0))) (line (vec2 1 0) (vec2 1 1)) (line (vec2 1 1) (vec2 0 0)))`, `duplicate curve id "2"`},
		{"bad range", `(fragment (line (vec3 0 0 0) (vec3 1 0 0)) :from 0.8 :to 0.2)`, "outside"},
		{"wrong item", profile + `(feature "f" :profile p (vec3 0 0 0))`, "expected fragment or neighbor"},
		{"vec arity", `(vec3 1 2)`, "exactly 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine()
			p, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if p != nil {
				t.Fatal("expected nil program on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			var msgs []string
			for _, e := range evalErrs {
				msgs = append(msgs, e.Message)
			}
			if joined := strings.Join(msgs, "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("errors %q do not mention %q", joined, tt.want)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	eng := NewEngine()

	source := `
(def x (+ 10 20))
(def p (profile (line (vec2 0 0) (vec2 x 0))))
(feature "f" :profile p (fragment (line (vec3 0 0 0) (vec3 (* x 2) 0 0))))
`
	p, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if l := p.Lookup("f").Fragments[0].Base().Length(); l != 60 {
		t.Errorf("fragment length = %g, want 60", l)
	}
}
