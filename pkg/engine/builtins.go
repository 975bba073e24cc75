package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/talus/pkg/recipe"
	"github.com/chazu/talus/pkg/subdivide"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms recipe source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: my-rock -> my_rock
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

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps an SDF shape tree so it can be returned from `sphere`,
// `union`, `translate` and friends and consumed by `solid`.
type sexpShape struct {
	shape *recipe.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.shape.Kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpSource wraps a recipe.Source.
type sexpSource struct {
	src recipe.Source
}

func (s *sexpSource) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.src.Kind())
}
func (s *sexpSource) Type() *zygo.RegisteredType { return nil }

// sexpStage wraps a recipe.Stage.
type sexpStage struct {
	stage recipe.Stage
	name  string
}

func (s *sexpStage) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.name)
}
func (s *sexpStage) Type() *zygo.RegisteredType { return nil }

// sexpRecipeRef is returned by `rock`.
type sexpRecipeRef struct {
	name string
}

func (r *sexpRecipeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rock %q)", r.name)
}
func (r *sexpRecipeRef) Type() *zygo.RegisteredType { return nil }

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
// A keyword whose value is another keyword, or that ends the list, is a
// flag and maps to true.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			if _, next := isKW(args[i+1]); !next || !isFlagKW(name) {
				result.kw[name] = args[i+1]
				i += 2
				continue
			}
		}
		result.kw[name] = &zygo.SexpBool{Val: true}
		i++
	}
	return result
}

// flagKeywords may appear without a value.
var flagKeywords = map[string]bool{
	"surface":   true,
	"clamp":     true,
	"sphereize": true,
}

func isFlagKW(name string) bool {
	return flagKeywords[name]
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
func toInt(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
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

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_linear) and plain strings ("linear").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts an SDF shape from a sexpShape.
func toShape(s zygo.Sexp) (*recipe.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toSource extracts a recipe source. A bare shape is accepted and
// tessellated at the kernel's default resolution.
func toSource(s zygo.Sexp) (recipe.Source, error) {
	switch v := s.(type) {
	case *sexpSource:
		return v.src, nil
	case *sexpShape:
		return recipe.SolidSource{Shape: v.shape}, nil
	}
	return nil, fmt.Errorf("expected source (points, solid or hull), got %T (%s)", s, s.SexpString(nil))
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

// floatKW reads an optional numeric keyword into dst.
func floatKW(pa kwArgs, fn, key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all recipe DSL builtins into a zygomys
// environment. The builtins populate the provided Book during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *recipe.Book) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: mgl64.Vec3{x, y, z}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 2)  or  (sphere 2)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sh := &recipe.Shape{Kind: recipe.ShapeSphere}

		if len(pa.positional) > 0 {
			r, err := toFloat64(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			sh.Radius = r
		}
		if err := floatKW(pa, "sphere", "radius", &sh.Radius); err != nil {
			return zygo.SexpNull, err
		}

		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 2 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sh := &recipe.Shape{Kind: recipe.ShapeBox}

		v, ok := pa.kw["size"]
		if !ok && len(pa.positional) > 0 {
			v, ok = pa.positional[0], true
		}
		if !ok {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		sh.Size = size

		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 3 :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sh := &recipe.Shape{Kind: recipe.ShapeCylinder}

		if err := floatKW(pa, "cylinder", "height", &sh.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "cylinder", "radius", &sh.Radius); err != nil {
			return zygo.SexpNull, err
		}

		return &sexpShape{shape: sh}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b)  (difference a b)  (intersection a b)
	// -----------------------------------------------------------------------
	booleans := map[string]recipe.ShapeKind{
		"union":        recipe.ShapeUnion,
		"difference":   recipe.ShapeDifference,
		"intersection": recipe.ShapeIntersection,
	}
	for fname, kind := range booleans {
		env.AddFunction(fname, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 shapes, got %d", fname, len(args))
			}
			a, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: first: %w", fname, err)
			}
			c, err := toShape(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: second: %w", fname, err)
			}
			return &sexpShape{shape: &recipe.Shape{Kind: kind, Children: []*recipe.Shape{a, c}}}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate shape (vec3 1 0 0))  (rotate shape (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transforms := map[string]recipe.ShapeKind{
		"translate": recipe.ShapeTranslate,
		"rotate":    recipe.ShapeRotate,
	}
	for fname, kind := range transforms {
		env.AddFunction(fname, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape as first argument", fname)
			}
			child, err := toShape(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: shape: %w", fname, err)
			}
			v, ok := pa.kw["by"]
			if !ok && len(pa.positional) > 1 {
				v, ok = pa.positional[1], true
			}
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s requires a vec3", fname)
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: by: %w", fname, err)
			}
			return &sexpShape{shape: &recipe.Shape{Kind: kind, Vector: vec, Children: []*recipe.Shape{child}}}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (points :count 300 :radii (vec3 3 2 1) :seed 4 :surface :roughness 0.2)
	// -----------------------------------------------------------------------
	env.AddFunction("points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pc := recipe.PointCloud{Radii: mgl64.Vec3{1, 1, 1}}

		if v, ok := pa.kw["count"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: count: %w", err)
			}
			pc.Count = int(n)
		}
		if v, ok := pa.kw["radii"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: radii: %w", err)
			}
			pc.Radii = vec
		}
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: radius: %w", err)
			}
			pc.Radii = mgl64.Vec3{r, r, r}
		}
		if v, ok := pa.kw["seed"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: seed: %w", err)
			}
			pc.Seed = n
		}
		if v, ok := pa.kw["surface"]; ok {
			f, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: surface: %w", err)
			}
			pc.Surface = f
		}
		if err := floatKW(pa, "points", "roughness", &pc.Roughness); err != nil {
			return zygo.SexpNull, err
		}

		return &sexpSource{src: recipe.PointsSource{Cloud: pc}}, nil
	})

	// -----------------------------------------------------------------------
	// (solid (difference ...) :cells 48)
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a shape argument")
		}
		sh, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: shape: %w", err)
		}
		src := recipe.SolidSource{Shape: sh}
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("solid: cells: %w", err)
			}
			src.Cells = int(n)
		}
		return &sexpSource{src: src}, nil
	})

	// -----------------------------------------------------------------------
	// (hull (points ...))
	// -----------------------------------------------------------------------
	env.AddFunction("hull", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("hull requires exactly 1 source, got %d", len(args))
		}
		of, err := toSource(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hull: %w", err)
		}
		return &sexpSource{src: recipe.HullSource{Of: of}}, nil
	})

	// -----------------------------------------------------------------------
	// (subdivide :depth 3 :strategy :jittered :variant :quad :area 0.02
	//            :distance 0.1 :viewpoint (vec3 0 0 10) :clamp
	//            :base-shake 0.05 :base-exponent 0.5 :normal-shake 0.1
	//            :normal-exponent 0.5 :normal-bias 0 :noise :perlin
	//            :frequency 2 :seed 9 :sphereize :sphere-radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("subdivide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cfg := subdivide.DefaultConfig()

		if v, ok := pa.kw["depth"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: depth: %w", err)
			}
			cfg.Depth = int(n)
		}
		if v, ok := pa.kw["strategy"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: strategy: %w", err)
			}
			if cfg.Strategy, err = subdivide.ParseStrategy(s); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["variant"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: variant: %w", err)
			}
			if cfg.Variant, err = subdivide.ParseVariant(s); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["noise"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: noise: %w", err)
			}
			if cfg.Jitter.Noise, err = subdivide.ParseNoiseSource(s); err != nil {
				return zygo.SexpNull, err
			}
		}
		if _, ok := pa.kw["area"]; ok {
			var area float64
			if err := floatKW(pa, "subdivide", "area", &area); err != nil {
				return zygo.SexpNull, err
			}
			cfg.AreaThreshold = &area
		}
		if _, ok := pa.kw["distance"]; ok {
			d := &subdivide.DistanceThreshold{}
			if err := floatKW(pa, "subdivide", "distance", &d.Value); err != nil {
				return zygo.SexpNull, err
			}
			if v, ok := pa.kw["viewpoint"]; ok {
				vec, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("subdivide: viewpoint: %w", err)
				}
				d.Viewpoint = vec
			}
			cfg.Distance = d
		}
		if v, ok := pa.kw["clamp"]; ok {
			f, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: clamp: %w", err)
			}
			cfg.ClampBoundaryEdges = f
		}
		if v, ok := pa.kw["seed"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: seed: %w", err)
			}
			cfg.Seed = n
		}
		if v, ok := pa.kw["sphereize"]; ok {
			f, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: sphereize: %w", err)
			}
			cfg.Sphere.Enabled = f
		}
		floats := []struct {
			key string
			dst *float64
		}{
			{"base-shake", &cfg.Jitter.BaseShake},
			{"base-exponent", &cfg.Jitter.BaseExponent},
			{"normal-shake", &cfg.Jitter.NormalShake},
			{"normal-exponent", &cfg.Jitter.NormalExponent},
			{"normal-bias", &cfg.Jitter.NormalBias},
			{"frequency", &cfg.Jitter.Frequency},
			{"sphere-radius", &cfg.Sphere.Radius},
		}
		for _, j := range floats {
			if err := floatKW(pa, "subdivide", j.key, j.dst); err != nil {
				return zygo.SexpNull, err
			}
		}

		return &sexpStage{stage: recipe.SubdivideStage{Config: cfg}, name: "subdivide"}, nil
	})

	// -----------------------------------------------------------------------
	// (sphereize :radius 2 :center (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("sphereize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts := subdivide.SphereOptions{Enabled: true}

		if err := floatKW(pa, "sphereize", "radius", &opts.Radius); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["center"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphereize: center: %w", err)
			}
			opts.Center = &vec
		}

		return &sexpStage{stage: recipe.SphereStage{Options: opts}, name: "sphereize"}, nil
	})

	// -----------------------------------------------------------------------
	// (rock "name" source stage...)
	// -----------------------------------------------------------------------
	env.AddFunction("rock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("rock requires a name and a source")
		}

		rockName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rock: name: %w", err)
		}
		src, err := toSource(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rock %q: %w", rockName, err)
		}

		r := &recipe.Recipe{Name: rockName, Source: src}
		for i := 2; i < len(args); i++ {
			items := []zygo.Sexp{args[i]}
			// A list of stages is spliced in place.
			if _, isStage := args[i].(*sexpStage); !isStage {
				if list, err := sexpListToSlice(args[i]); err == nil {
					items = list
				}
			}
			for _, item := range items {
				st, ok := item.(*sexpStage)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("rock %q: argument %d: expected stage, got %T (%s)",
						rockName, i, item, item.SexpString(nil))
				}
				r.Stages = append(r.Stages, st.stage)
			}
		}
		b.Add(r)

		return &sexpRecipeRef{name: rockName}, nil
	})
}
