package engine

import (
	"fmt"
	"math"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a footprint point (x, z).
type sexpPoint struct {
	pt v2.Vec
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.pt.X, p.pt.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpZoneRef names a zone defined earlier in the script.
type sexpZoneRef struct {
	id string
}

func (z *sexpZoneRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(zoneref %q)", z.id)
}
func (z *sexpZoneRef) Type() *zygo.RegisteredType { return nil }

// sexpSection wraps a section plane.
type sexpSection struct {
	plane geom.SectionPlane
}

func (s *sexpSection) SexpString(ps *zygo.PrintState) string {
	d := s.plane.Dir
	return fmt.Sprintf("(section :dir (vec3 %g %g %g) :dist %g)", d.X, d.Y, d.Z, s.plane.Dist)
}
func (s *sexpSection) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// zoneOptions reads the keyword arguments shared by zone and rect.
func zoneOptions(fn string, pa scriptArgs, p *zone.Params) error {
	if v, ok := pa.kw["altitude"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("%s: altitude: %w", fn, err)
		}
		p.Geometry.Altitude = f
	}
	v, ok := pa.kw["height"]
	if !ok {
		return fmt.Errorf("%s: height is required", fn)
	}
	h, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: height: %w", fn, err)
	}
	p.Geometry.Height = h
	if v, ok := pa.kw["color"]; ok {
		s, err := toString(v)
		if err != nil {
			return fmt.Errorf("%s: color: %w", fn, err)
		}
		p.Color = s
	}
	if v, ok := pa.kw["alpha"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("%s: alpha: %w", fn, err)
		}
		p.Alpha = zone.Alpha(f)
	}
	return nil
}

// zoneID reads the leading id argument of zone and rect.
func zoneID(fn string, pa scriptArgs) (string, error) {
	if len(pa.pos) < 1 {
		return "", fmt.Errorf("%s requires an id as first argument", fn)
	}
	id, err := toString(pa.pos[0])
	if err != nil {
		return "", fmt.Errorf("%s: id: %w", fn, err)
	}
	return id, nil
}

// registerBuiltins installs the zone script builtins into a zygomys
// environment. The builtins populate doc during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, doc *Document) {

	// -----------------------------------------------------------------------
	// (pt 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		z, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: z: %w", err)
		}
		return &sexpPoint{pt: v2.Vec{X: x, Y: z}}, nil
	})

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

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (zone "lobby" :altitude 0 :height 3 :color "#00bbff" :alpha 0.5
	//       :points (list (pt 0 0) (pt 10 0) (pt 10 10)))
	// -----------------------------------------------------------------------
	env.AddFunction("zone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		id, err := zoneID("zone", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p := zone.Params{ID: id}
		if err := zoneOptions("zone", pa, &p); err != nil {
			return zygo.SexpNull, err
		}

		v, ok := pa.kw["points"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("zone: points are required")
		}
		items, err := toSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("zone: points: %w", err)
		}
		for i, item := range items {
			pt, err := toPoint(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("zone: point %d: %w", i, err)
			}
			p.Geometry.Footprint = append(p.Geometry.Footprint, pt)
		}

		if err := doc.addZone(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("zone: %w", err)
		}
		return &sexpZoneRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (rect "office" :from (pt 0 0) :to (pt 4 3) :height 2.5)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		id, err := zoneID("rect", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p := zone.Params{ID: id}
		if err := zoneOptions("rect", pa, &p); err != nil {
			return zygo.SexpNull, err
		}

		var corners [2]v2.Vec
		for i, key := range []string{"from", "to"} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("rect: %s is required", key)
			}
			pt, err := toPoint(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rect: %s: %w", key, err)
			}
			corners[i] = pt
		}
		if corners[0].X == corners[1].X || corners[0].Y == corners[1].Y {
			doc.warn(id, "rect corners %v and %v span no area", corners[0], corners[1])
		}
		p.Geometry.Footprint = geom.Rect(
			v3.Vec{X: corners[0].X, Z: corners[0].Y},
			v3.Vec{X: corners[1].X, Z: corners[1].Y},
		)

		if err := doc.addZone(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		return &sexpZoneRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (section :dir (vec3 0 1 0) :dist 0)
	// -----------------------------------------------------------------------
	env.AddFunction("section", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		var plane geom.SectionPlane

		v, ok := pa.kw["dir"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("section: dir is required")
		}
		dir, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("section: dir: %w", err)
		}
		if l := dir.Length(); l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return zygo.SexpNull, fmt.Errorf("section: dir must be a finite non-zero vector")
		}
		// dist is measured along the unit direction.
		plane.Dir = dir.Normalize()
		if v, ok := pa.kw["dist"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("section: dist: %w", err)
			}
			plane.Dist = f
		}

		doc.addSection(plane)
		return &sexpSection{plane: plane}, nil
	})

	// -----------------------------------------------------------------------
	// (duplicate "lobby" "lobby-2" :dx 12 :dz 0)
	// -----------------------------------------------------------------------
	env.AddFunction("duplicate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		if len(pa.pos) < 2 {
			return zygo.SexpNull, fmt.Errorf("duplicate requires a source zone and a new id")
		}
		srcID, err := toZoneID(pa.pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: source: %w", err)
		}
		id, err := toString(pa.pos[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: id: %w", err)
		}
		src, ok := doc.Lookup(srcID)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("duplicate: no zone named %q", srcID)
		}

		var dx, dz float64
		if v, ok := pa.kw["dx"]; ok {
			if dx, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("duplicate: dx: %w", err)
			}
		}
		if v, ok := pa.kw["dz"]; ok {
			if dz, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("duplicate: dz: %w", err)
			}
		}

		p := src
		p.ID = id
		p.Geometry = src.Geometry.Clone()
		p.Geometry.Footprint = src.Geometry.Footprint.Translate(dx, dz)
		if src.Alpha != nil {
			p.Alpha = zone.Alpha(*src.Alpha)
		}
		if err := doc.addZone(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: %w", err)
		}
		if dx == 0 && dz == 0 {
			doc.warn(id, "duplicate of %q without an offset coincides with it", srcID)
		}
		return &sexpZoneRef{id: id}, nil
	})
}
