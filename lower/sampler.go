package lower

import (
	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/format"
	"github.com/gogpu/ycbcr/ir"
)

// site holds the state for lowering one texture instruction.
type site struct {
	module *ir.Module
	fn     *ir.Function
	b      *ir.Builder
	opts   Options

	h    ir.InstrHandle
	tex  *ir.Tex
	dest ir.ValueType

	ref  binding
	conv *conversion.Conversion
	desc format.Description

	// imageSize is the float size of the full-resolution image, built on
	// first use and shared by every plane and axis of the site.
	imageSize ir.Value
}

// textureSize emits a size query on the original texture reference and
// converts the result to float.
func (s *site) textureSize() ir.Value {
	if s.imageSize.Valid() {
		return s.imageSize
	}
	v := s.module.Variable(s.ref.variable)

	q := &ir.Tex{
		Op:      ir.TexSize,
		Dim:     v.Dim,
		Arrayed: v.Arrayed,
		Shadow:  v.Shadow,
	}
	q.Sources[ir.SrcTextureDeref] = s.ref.deref

	n := ir.DimComponents(v.Dim)
	if v.Arrayed {
		n++
	}
	size := s.b.Tex(q, ir.Int32.Vec(n))
	s.imageSize = s.b.I2F32(size)
	return s.imageSize
}

// downsampledCoord offsets one coordinate component toward the co-sited
// chroma sample: value + 1 / (2 * divisor * size).
func (s *site) downsampledCoord(value, size ir.Value, divisor uint32) ir.Value {
	b := s.b
	return b.FAdd(value,
		b.FDiv(b.ImmFloat(1),
			b.FMul(b.ImmFloat(float32(2*divisor)), size)))
}

// downsampledCoords rebuilds the coordinate for a subsampled plane.
func (s *site) downsampledCoords(coord ir.Value) ir.Value {
	def := s.fn.Def(coord)
	if def == nil || def.Type.Kind != ir.ScalarFloat {
		return coord
	}
	n := int(def.Type.Components)
	divisors := s.conv.Format.Divisors()

	adjust := false
	for c := 0; c < n && c < len(divisors); c++ {
		if divisors[c] > 1 && s.conv.ChromaOffsets[c] == conversion.ChromaCositedEven {
			adjust = true
		}
	}
	if !adjust {
		return coord
	}

	comps := make([]ir.Value, n)
	for c := range comps {
		ch := s.b.Channel(coord, uint8(c))
		if c < len(divisors) && divisors[c] > 1 && s.conv.ChromaOffsets[c] == conversion.ChromaCositedEven {
			size := s.b.Channel(s.textureSize(), uint8(c))
			ch = s.downsampledCoord(ch, size, divisors[c])
		}
		comps[c] = ch
	}
	return s.b.Vec(comps...)
}

// planeSample clones the original instruction for one plane. Every source
// is copied except the coordinate of subsampled planes, and a plane
// selector is added.
func (s *site) planeSample(plane int) ir.Value {
	t := s.tex.Clone()

	if plane > 0 && s.opts.ChromaReconstruction {
		if coord, ok := s.tex.Src(ir.SrcCoord); ok {
			t.Sources[ir.SrcCoord] = s.downsampledCoords(coord)
		}
	}
	t.Sources[ir.SrcPlane] = s.b.ImmInt(int32(plane))

	return s.b.Tex(t, s.dest)
}
