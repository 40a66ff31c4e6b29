package asm

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ycbcr/ir"
)

var aluNames = map[ir.ALUOp]string{
	ir.OpMov:   "mov",
	ir.OpFAdd:  "fadd",
	ir.OpFMul:  "fmul",
	ir.OpFDiv:  "fdiv",
	ir.OpFRcp:  "frcp",
	ir.OpFNeg:  "fneg",
	ir.OpFDot4: "fdot4",
	ir.OpI2F32: "i2f32",
	ir.OpVec2:  "vec2",
	ir.OpVec3:  "vec3",
	ir.OpVec4:  "vec4",
}

var texOpNames = map[ir.TexOp]string{
	ir.TexSample:      "sample",
	ir.TexSampleBias:  "sample_bias",
	ir.TexSampleLod:   "sample_lod",
	ir.TexFetch:       "fetch",
	ir.TexSize:        "size",
	ir.TexQueryLevels: "query_levels",
	ir.TexLod:         "lod",
}

var srcRoleNames = [ir.NumSrcRoles]string{
	ir.SrcCoord:        "coord",
	ir.SrcTextureDeref: "texture",
	ir.SrcSamplerDeref: "sampler",
	ir.SrcBias:         "bias",
	ir.SrcLod:          "lod",
	ir.SrcComparator:   "comparator",
	ir.SrcOffset:       "offset",
	ir.SrcPlane:        "plane",
}

var dimNames = map[gputypes.TextureViewDimension]string{
	gputypes.TextureViewDimension1D: "1d",
	gputypes.TextureViewDimension2D: "2d",
	gputypes.TextureViewDimension3D: "3d",
}

var scalarNames = map[ir.ScalarKind]string{
	ir.ScalarSint:  "i32",
	ir.ScalarUint:  "u32",
	ir.ScalarFloat: "f32",
}

const swizzleLetters = "xyzw"

// invert returns the reverse lookup of a name table.
func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var (
	aluOps   = invert(aluNames)
	texOps   = invert(texOpNames)
	dims     = invert(dimNames)
	scalars  = invert(scalarNames)
	srcRoles = func() map[string]ir.SrcRole {
		out := make(map[string]ir.SrcRole, len(srcRoleNames))
		for r, name := range srcRoleNames {
			out[name] = ir.SrcRole(r)
		}
		return out
	}()
)
