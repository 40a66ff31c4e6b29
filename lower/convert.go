package lower

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/ir"
)

// Matrix is a row-major 3x4 YCbCr to RGB matrix applied to (Cr, Y, Cb, 1).
type Matrix [3][4]float32

var (
	// BT601 is the ITU-R BT.601 conversion matrix.
	BT601 = Matrix{
		{1.402, 1, 0, 0},
		{-0.714136286201022, 1, -0.344136286201022, 0},
		{0, 1, 1.772, 0},
	}

	// BT709 is the ITU-R BT.709 conversion matrix.
	BT709 = Matrix{
		{1.5748031496063, 1, 0, 0},
		{-0.468125209181067, 1, -0.187327487470334, 0},
		{0, 1, 1.85563184264242, 0},
	}

	// BT2020 is the ITU-R BT.2020 conversion matrix.
	BT2020 = Matrix{
		{1.4746, 1, 0, 0},
		{-0.571353126843658, 1, -0.164553126843658, 0},
		{0, 1, 1.8814, 0},
	}
)

// ModelMatrix returns the matrix for a color model. It reports false for
// models without a matrix.
func ModelMatrix(m conversion.ColorModel) (*Matrix, bool) {
	switch m {
	case conversion.ModelYCbCr601:
		return &BT601, true
	case conversion.ModelYCbCr709:
		return &BT709, true
	case conversion.ModelYCbCr2020:
		return &BT2020, true
	default:
		return nil, false
	}
}

func pow2(e int) float32 {
	return math32.Pow(2, float32(e))
}

// LumaRange returns the scale and bias of narrow-range luma expansion,
// y' = (y*scale + bias) / div. Full range leaves luma unchanged.
func LumaRange(bits uint8) (scale, bias, div float32) {
	b := int(bits)
	return pow2(b) - 1, -16 * pow2(b-8), 219 * pow2(b-8)
}

// ChromaRange returns the narrow-range chroma expansion terms, laid out
// as in LumaRange.
func ChromaRange(bits uint8) (scale, bias, div float32) {
	b := int(bits)
	return pow2(b) - 1, -128 * pow2(b-8), 224 * pow2(b-8)
}

// ChromaFullBias is the offset re-centering full-range chroma on zero.
func ChromaFullBias(bits uint8) float32 {
	b := int(bits)
	return -pow2(b-1) / (pow2(b) - 1)
}

func (s *site) yRange(y ir.Value, bits uint8) ir.Value {
	if s.conv.Range == conversion.RangeFull {
		return y
	}
	b := s.b
	scale, bias, div := LumaRange(bits)
	return b.FMul(
		b.FAdd(b.FMul(y, b.ImmFloat(scale)), b.ImmFloat(bias)),
		b.FRcp(b.ImmFloat(div)))
}

func (s *site) chromaRange(c ir.Value, bits uint8) ir.Value {
	b := s.b
	if s.conv.Range == conversion.RangeFull {
		return b.FAdd(c, b.ImmFloat(ChromaFullBias(bits)))
	}
	scale, bias, div := ChromaRange(bits)
	return b.FMul(
		b.FAdd(b.FMul(c, b.ImmFloat(scale)), b.ImmFloat(bias)),
		b.FRcp(b.ImmFloat(div)))
}

// convert expands the combined (Cr, Y, Cb, A) channels and applies the
// color model. Alpha is replaced by 1.
func (s *site) convert(raw ir.Value, bits uint8) ir.Value {
	b := s.b
	expanded := b.Vec(
		s.chromaRange(b.Channel(raw, 0), bits),
		s.yRange(b.Channel(raw, 1), bits),
		s.chromaRange(b.Channel(raw, 2), bits),
		b.ImmFloat(1),
	)
	if s.conv.Model == conversion.ModelYCbCrIdentity {
		return expanded
	}

	m, _ := ModelMatrix(s.conv.Model)
	var rgb [3]ir.Value
	for row := range rgb {
		rgb[row] = b.FDot4(expanded, b.ImmFloats(m[row][:]...))
	}
	return b.Vec(rgb[0], rgb[1], rgb[2], b.ImmFloat(1))
}
