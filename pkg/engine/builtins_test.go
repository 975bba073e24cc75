package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/chazu/talus/pkg/recipe"
	"github.com/chazu/talus/pkg/subdivide"
	"github.com/go-gl/mathgl/mgl64"
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
			input:  `(sphere :radius 2)`,
			expect: `(sphere "__kw_radius" 2)`,
		},
		{
			name:   "keyword value",
			input:  `(subdivide :strategy :jittered :depth 3)`,
			expect: `(subdivide "__kw_strategy" "__kw_jittered" "__kw_depth" 3)`,
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
			input:  `(def big-rock (sphere 1))`,
			expect: `(def big_rock (sphere 1))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:base-shake`,
			expect: `"__kw_base-shake"`,
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

// mustEval evaluates source and fails the test on any error.
func mustEval(t *testing.T, source string) *recipe.Book {
	t.Helper()
	b, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if b == nil {
		t.Fatal("expected non-nil book")
	}
	return b
}

// evalError evaluates source and returns the first eval error message.
func evalError(t *testing.T, source string) string {
	t.Helper()
	b, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if b != nil {
		t.Fatal("expected nil book on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs[0].Message
}

// ---------------------------------------------------------------------------
// Rock recipes
// ---------------------------------------------------------------------------

func TestHullRock(t *testing.T) {
	b := mustEval(t, `
(rock "boulder"
  (hull (points :count 300 :radii (vec3 3 2 1.5) :seed 4 :roughness 0.2))
  (subdivide :depth 3 :strategy :jittered :base-shake 0.05 :normal-shake 0.1
             :area 0.02 :seed 9)
  (sphereize :radius 2))
`)
	if b.Len() != 1 {
		t.Fatalf("expected 1 recipe, got %d", b.Len())
	}
	r := b.Lookup("boulder")
	if r == nil {
		t.Fatal("expected recipe named 'boulder'")
	}

	hs, ok := r.Source.(recipe.HullSource)
	if !ok {
		t.Fatalf("expected HullSource, got %T", r.Source)
	}
	ps, ok := hs.Of.(recipe.PointsSource)
	if !ok {
		t.Fatalf("expected PointsSource inside hull, got %T", hs.Of)
	}
	want := recipe.PointCloud{Count: 300, Radii: mgl64.Vec3{3, 2, 1.5}, Seed: 4, Roughness: 0.2}
	if ps.Cloud != want {
		t.Errorf("cloud = %+v, want %+v", ps.Cloud, want)
	}

	if len(r.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(r.Stages))
	}
	sd, ok := r.Stages[0].(recipe.SubdivideStage)
	if !ok {
		t.Fatalf("expected SubdivideStage, got %T", r.Stages[0])
	}
	cfg := sd.Config
	if cfg.Depth != 3 {
		t.Errorf("expected depth=3, got %d", cfg.Depth)
	}
	if cfg.Strategy != subdivide.Jittered {
		t.Errorf("expected jittered strategy, got %s", cfg.Strategy)
	}
	if cfg.Jitter.BaseShake != 0.05 || cfg.Jitter.NormalShake != 0.1 {
		t.Errorf("jitter = %+v", cfg.Jitter)
	}
	// Unset jitter keywords keep their defaults.
	if cfg.Jitter.BaseExponent != subdivide.DefaultConfig().Jitter.BaseExponent {
		t.Errorf("base exponent = %f, want default", cfg.Jitter.BaseExponent)
	}
	if cfg.AreaThreshold == nil || *cfg.AreaThreshold != 0.02 {
		t.Errorf("expected area threshold 0.02, got %v", cfg.AreaThreshold)
	}
	if cfg.Seed != 9 {
		t.Errorf("expected seed=9, got %d", cfg.Seed)
	}

	sp, ok := r.Stages[1].(recipe.SphereStage)
	if !ok {
		t.Fatalf("expected SphereStage, got %T", r.Stages[1])
	}
	if !sp.Options.Enabled || sp.Options.Radius != 2 || sp.Options.Center != nil {
		t.Errorf("sphere options = %+v", sp.Options)
	}

	if errs := recipe.Validate(b); len(errs) != 0 {
		t.Errorf("expected a valid book, got %v", errs)
	}
}

func TestSolidRock(t *testing.T) {
	b := mustEval(t, `
(rock "holed"
  (solid (difference (box :size (vec3 2 2 2))
                     (rotate (cylinder :height 3 :radius 0.5) (vec3 90 0 0)))
         :cells 24)
  (subdivide :variant :hex :strategy :spline))
`)
	r := b.MustLookup("holed")
	ss, ok := r.Source.(recipe.SolidSource)
	if !ok {
		t.Fatalf("expected SolidSource, got %T", r.Source)
	}
	if ss.Cells != 24 {
		t.Errorf("expected cells=24, got %d", ss.Cells)
	}
	sh := ss.Shape
	if sh.Kind != recipe.ShapeDifference || len(sh.Children) != 2 {
		t.Fatalf("expected difference of 2 shapes, got %s with %d", sh.Kind, len(sh.Children))
	}
	if box := sh.Children[0]; box.Kind != recipe.ShapeBox || box.Size != (mgl64.Vec3{2, 2, 2}) {
		t.Errorf("first child = %+v, want 2x2x2 box", box)
	}
	rot := sh.Children[1]
	if rot.Kind != recipe.ShapeRotate || rot.Vector != (mgl64.Vec3{90, 0, 0}) {
		t.Errorf("second child = %+v, want rotate by (90,0,0)", rot)
	}
	if cyl := rot.Children[0]; cyl.Kind != recipe.ShapeCylinder || cyl.Height != 3 || cyl.Radius != 0.5 {
		t.Errorf("rotated child = %+v, want cylinder h=3 r=0.5", cyl)
	}

	cfg := r.Stages[0].(recipe.SubdivideStage).Config
	if cfg.Variant != subdivide.Hex || cfg.Strategy != subdivide.Spline {
		t.Errorf("expected hex/spline, got %s/%s", cfg.Variant, cfg.Strategy)
	}
	if cfg.Depth != 1 {
		t.Errorf("expected default depth=1, got %d", cfg.Depth)
	}
}

func TestBareShapeIsSolid(t *testing.T) {
	b := mustEval(t, `(rock "ball" (sphere 1.5))`)
	ss, ok := b.MustLookup("ball").Source.(recipe.SolidSource)
	if !ok {
		t.Fatalf("expected SolidSource, got %T", b.MustLookup("ball").Source)
	}
	if ss.Shape.Kind != recipe.ShapeSphere || ss.Shape.Radius != 1.5 || ss.Cells != 0 {
		t.Errorf("source = %+v", ss)
	}
}

func TestSubdivideKeywords(t *testing.T) {
	b := mustEval(t, `
(rock "r" (hull (sphere 1))
  (subdivide :distance 0.1 :viewpoint (vec3 0 0 10) :clamp
             :noise :perlin :frequency 2.5 :normal-bias 0.25
             :base-exponent 0.7 :normal-exponent 0.6
             :sphereize :sphere-radius 3))
`)
	cfg := b.MustLookup("r").Stages[0].(recipe.SubdivideStage).Config
	if cfg.Distance == nil || cfg.Distance.Value != 0.1 || cfg.Distance.Viewpoint != (mgl64.Vec3{0, 0, 10}) {
		t.Errorf("distance = %+v", cfg.Distance)
	}
	if !cfg.ClampBoundaryEdges {
		t.Error("expected clamp flag to be set")
	}
	j := cfg.Jitter
	if j.Noise != subdivide.NoisePerlin || j.Frequency != 2.5 || j.NormalBias != 0.25 {
		t.Errorf("jitter = %+v", j)
	}
	if j.BaseExponent != 0.7 || j.NormalExponent != 0.6 {
		t.Errorf("exponents = %f, %f", j.BaseExponent, j.NormalExponent)
	}
	if !cfg.Sphere.Enabled || cfg.Sphere.Radius != 3 {
		t.Errorf("sphere = %+v", cfg.Sphere)
	}
	if cfg.AreaThreshold != nil {
		t.Error("area threshold should be unset")
	}
}

func TestSurfaceFlag(t *testing.T) {
	b := mustEval(t, `(rock "shell" (hull (points :count 40 :radius 2 :surface :seed 1)))`)
	pc := b.MustLookup("shell").Source.(recipe.HullSource).Of.(recipe.PointsSource).Cloud
	if !pc.Surface {
		t.Error("expected surface flag to be set")
	}
	if pc.Radii != (mgl64.Vec3{2, 2, 2}) || pc.Count != 40 || pc.Seed != 1 {
		t.Errorf("cloud = %+v", pc)
	}
}

func TestTranslateAndBooleans(t *testing.T) {
	b := mustEval(t, `
(def lump (union (sphere 1) (translate (sphere 0.8) (vec3 1 0 0))))
(rock "pair" (solid (intersection lump (box (vec3 3 3 1.5)))))
`)
	sh := b.MustLookup("pair").Source.(recipe.SolidSource).Shape
	if sh.Kind != recipe.ShapeIntersection {
		t.Fatalf("expected intersection, got %s", sh.Kind)
	}
	union := sh.Children[0]
	if union.Kind != recipe.ShapeUnion {
		t.Fatalf("expected union, got %s", union.Kind)
	}
	tr := union.Children[1]
	if tr.Kind != recipe.ShapeTranslate || tr.Vector != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("translate = %+v", tr)
	}
	if sh.Children[1].Size != (mgl64.Vec3{3, 3, 1.5}) {
		t.Errorf("box size = %v", sh.Children[1].Size)
	}
}

func TestVariableStages(t *testing.T) {
	b := mustEval(t, `
(def smooth (subdivide :depth 2 :strategy :spline))
(rock "a" (hull (points :count 20 :seed 1)) smooth)
(rock "b" (hull (points :count 20 :seed 2)) (list smooth (sphereize)))
`)
	if b.Len() != 2 {
		t.Fatalf("expected 2 recipes, got %d", b.Len())
	}
	if got := strings.Join(b.Names(), ","); got != "a,b" {
		t.Errorf("names = %s, want a,b", got)
	}
	if n := len(b.MustLookup("a").Stages); n != 1 {
		t.Errorf("a: expected 1 stage, got %d", n)
	}
	stages := b.MustLookup("b").Stages
	if len(stages) != 2 {
		t.Fatalf("b: expected 2 stages, got %d", len(stages))
	}
	if _, ok := stages[1].(recipe.SphereStage); !ok {
		t.Errorf("b: expected SphereStage second, got %T", stages[1])
	}
}

func TestVec3(t *testing.T) {
	b := mustEval(t, `(rock "v" (hull (points :count 8 :radii (vec3 1.5 -2 3))))`)
	pc := b.MustLookup("v").Source.(recipe.HullSource).Of.(recipe.PointsSource).Cloud
	if pc.Radii != (mgl64.Vec3{1.5, -2, 3}) {
		t.Errorf("radii = %v", pc.Radii)
	}
	// Negative radii evaluate fine and are rejected by validation.
	if !recipe.HasErrors(recipe.Validate(b)) {
		t.Error("expected validation to reject negative radii")
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 "a" 2)`, "vec3: y"},
		{"box without size", `(box)`, "box requires :size"},
		{"union arity", `(union (sphere 1))`, "union requires exactly 2 shapes"},
		{"difference type", `(difference (sphere 1) 3)`, "difference: second"},
		{"translate without vector", `(translate (sphere 1))`, "translate requires a vec3"},
		{"points count type", `(points :count 2.5)`, "points: count: expected integer"},
		{"unknown strategy", `(subdivide :strategy :wobbly)`, `unknown strategy "wobbly"`},
		{"unknown variant", `(subdivide :variant :tri)`, `unknown variant "tri"`},
		{"clamp type", `(subdivide :clamp 3)`, "subdivide: clamp: expected boolean"},
		{"rock without source", `(rock "x")`, "rock requires a name and a source"},
		{"rock bad source", `(rock "x" 42)`, "expected source"},
		{"rock bad stage", `(rock "x" (sphere 1) (vec3 1 2 3))`, "expected stage"},
		{"hull of number", `(hull 1)`, "hull: expected source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalError(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want containing %q", msg, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Regressions
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	b := mustEval(t, "")
	if b.Len() != 0 {
		t.Errorf("expected empty book, got %d recipes", b.Len())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	b := mustEval(t, "(+ 1 2)")
	if b.Len() != 0 {
		t.Errorf("expected empty book, got %d recipes", b.Len())
	}
}

func TestEvaluationsAreIsolated(t *testing.T) {
	eng := NewEngine()
	for i := 0; i < 3; i++ {
		b, evalErrs, err := eng.Evaluate(context.Background(), `(rock "r" (sphere 1))`)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		if b.Len() != 1 {
			t.Fatalf("iteration %d: expected 1 recipe, got %d", i, b.Len())
		}
	}
}
