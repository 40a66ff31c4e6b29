// Package lower rewrites texture samples of YCbCr-converted bindings into
// per-plane samples followed by inline color conversion.
//
// A sample is lowered when its texture reference resolves to a descriptor
// binding whose layout carries an enabled conversion for the selected
// array element:
//
//	%4 = tex sample vec4<f32> coord=%0 texture=%3 sampler=%3
//
// becomes one sample per plane with an added plane source, a combiner
// that routes and swizzles the plane results, and the range expansion and
// matrix of the conversion's color model. Every use of %4 is redirected to
// the converted value and the original instruction is removed.
//
// Samples the pass cannot lower, such as those indexing a texture array
// with a runtime value, are left unchanged and sample as if no conversion
// were bound.
package lower

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/format"
	"github.com/gogpu/ycbcr/ir"
)

// Options configures the lowering pass.
type Options struct {
	// ChromaReconstruction offsets the coordinates of subsampled planes
	// toward co-sited chroma samples. Disabling it samples every plane at
	// the original coordinate.
	ChromaReconstruction bool
}

// DefaultOptions returns the default pass options.
func DefaultOptions() Options {
	return Options{ChromaReconstruction: true}
}

// YCbCrTextures lowers every eligible texture sample in m with the default
// options. It reports whether any instruction was rewritten.
func YCbCrTextures(m *ir.Module, layout conversion.Layout) (bool, error) {
	return YCbCrTexturesWithOptions(m, layout, DefaultOptions())
}

// YCbCrTexturesWithOptions lowers every eligible texture sample in m.
//
// On error the function being processed may hold fully lowered sites
// preceding the failing one; the failing site itself is left untouched.
func YCbCrTexturesWithOptions(m *ir.Module, layout conversion.Layout, opts Options) (bool, error) {
	if m == nil {
		return false, errors.New("ycbcr lowering: nil module")
	}
	if layout == nil {
		return false, nil
	}

	progress := false
	for _, fn := range m.Functions {
		n, err := lowerFunction(m, fn, layout, opts)
		if n > 0 {
			fn.Invalidate(ir.MetadataAll)
			progress = true
			Logger().Info("ycbcr: lowered samples",
				slog.String("function", fn.Name),
				slog.Int("sites", n))
		}
		if err != nil {
			return progress, err
		}
	}
	return progress, nil
}

func lowerFunction(m *ir.Module, fn *ir.Function, layout conversion.Layout, opts Options) (int, error) {
	b := ir.NewBuilder(fn)
	lowered := 0
	for _, blk := range fn.Blocks {
		for _, h := range blk.Snapshot() {
			inst := fn.Instr(h)
			if inst == nil {
				continue
			}
			tex, ok := inst.Kind.(*ir.Tex)
			if !ok {
				continue
			}
			done, err := lowerTex(m, fn, b, layout, opts, h, tex)
			if err != nil {
				return lowered, err
			}
			if done {
				lowered++
			}
		}
	}
	return lowered, nil
}

// lowerTex lowers one texture instruction when its binding carries a
// conversion. It reports whether the instruction was replaced.
func lowerTex(m *ir.Module, fn *ir.Function, b *ir.Builder, layout conversion.Layout, opts Options, h ir.InstrHandle, tex *ir.Tex) (bool, error) {
	// Plane samples produced by an earlier run.
	if _, ok := tex.Src(ir.SrcPlane); ok {
		return false, nil
	}

	ref, ok := resolveTexture(fn, tex)
	if !ok {
		return false, nil
	}
	v := m.Variable(ref.variable)
	if v == nil {
		return false, invariantf(fn, h, "texture reference names unknown variable %d", ref.variable)
	}
	convs := layout.Lookup(v.Set, v.Binding)
	if convs == nil {
		return false, nil
	}
	if tex.Op.IsQuery() {
		skipped(fn, h, v, "image query")
		return false, nil
	}

	size := len(convs)
	if v.ArraySize > 0 {
		size = min(size, int(v.ArraySize))
	}
	index, ok := constIndex(fn, ref, size)
	if !ok {
		skipped(fn, h, v, "dynamic array index")
		return false, nil
	}
	conv := lookupConversion(convs, index)
	if conv == nil {
		skipped(fn, h, v, "element has no conversion")
		return false, nil
	}

	s := &site{
		module: m,
		fn:     fn,
		b:      b,
		opts:   opts,
		h:      h,
		tex:    tex,
		dest:   fn.Instr(h).Type,
		ref:    ref,
		conv:   conv,
	}
	bits, err := s.check()
	if err != nil {
		return false, err
	}

	b.SetCursor(ir.Before(h))
	planes := make([]ir.Value, len(s.desc.Planes))
	for p := range planes {
		planes[p] = s.planeSample(p)
	}
	result := s.combine(planes)
	if conv.Model != conversion.ModelRGBIdentity {
		result = s.convert(result, bits)
	}
	if err := b.Err(); err != nil {
		return false, fmt.Errorf("ycbcr lowering: in function %s: %w", fn.Name, err)
	}

	old := ir.ValueOf(h)
	fn.ReplaceAllUses(old, result)
	if err := fn.Remove(h); err != nil {
		return false, fmt.Errorf("ycbcr lowering: in function %s: %w", fn.Name, err)
	}

	Logger().Debug("ycbcr: lowered sample",
		slog.String("function", fn.Name),
		slog.Int("instr", int(h)),
		slog.String("variable", v.Name),
		slog.Uint64("set", uint64(v.Set)),
		slog.Uint64("binding", uint64(v.Binding)),
		slog.Int("element", index),
		slog.String("format", conv.Format.String()),
		slog.String("model", conv.Model.String()),
		slog.Int("planes", len(planes)))
	return true, nil
}

func skipped(fn *ir.Function, h ir.InstrHandle, v *ir.Variable, reason string) {
	Logger().Debug("ycbcr: sample left unchanged",
		slog.String("function", fn.Name),
		slog.Int("instr", int(h)),
		slog.String("variable", v.Name),
		slog.String("reason", reason))
}

// check verifies that the site's conversion and instruction can be
// lowered and returns the bit depth of plane 0. Nothing is emitted before
// the checks pass.
func (s *site) check() (uint8, error) {
	c := s.conv
	desc, ok := format.Describe(c.Format)
	if !ok {
		return 0, invariantf(s.fn, s.h, "unknown format %d", c.Format)
	}
	if n := len(desc.Planes); n < 1 || n > 3 {
		return 0, invariantf(s.fn, s.h, "unsupported plane count %d for format %s", n, c.Format)
	}
	if c.Model > conversion.ModelYCbCr2020 {
		return 0, invariantf(s.fn, s.h, "unknown color model %d", c.Model)
	}
	if c.Model != conversion.ModelRGBIdentity && c.Range > conversion.RangeNarrow {
		return 0, invariantf(s.fn, s.h, "unknown range %d", c.Range)
	}
	for i, sw := range c.Components {
		if sw > conversion.SwizzleA {
			return 0, invariantf(s.fn, s.h, "unknown swizzle %d for component %d", sw, i)
		}
	}
	bits, ok := c.Format.PlaneBits(0)
	if !ok || bits < 8 {
		return 0, invariantf(s.fn, s.h, "format %s has no usable bit depth", c.Format)
	}
	if s.dest.Components != 4 || s.dest.Kind != ir.ScalarFloat {
		return 0, invariantf(s.fn, s.h, "sample result must be a 4-component float vector")
	}
	s.desc = desc
	return bits, nil
}
