package lower

import (
	"github.com/gogpu/ycbcr/conversion"
	"github.com/gogpu/ycbcr/ir"
)

// binding is a texture reference resolved to its descriptor binding.
type binding struct {
	deref    ir.Value // the texture reference itself
	variable ir.VariableHandle
	index    ir.Value // array index, NoValue for a direct variable reference
}

// resolveTexture follows the texture reference of tex back to the
// variable it names. It fails for chains with more than one array step.
func resolveTexture(fn *ir.Function, tex *ir.Tex) (binding, bool) {
	ref, ok := tex.Src(ir.SrcTextureDeref)
	if !ok {
		return binding{}, false
	}
	def := fn.Def(ref)
	if def == nil {
		return binding{}, false
	}
	d, ok := def.Kind.(*ir.Deref)
	if !ok {
		return binding{}, false
	}

	switch d.Kind {
	case ir.DerefVar:
		return binding{deref: ref, variable: d.Var}, true
	case ir.DerefArray:
		parent := fn.Def(d.Parent)
		if parent == nil {
			return binding{}, false
		}
		root, ok := parent.Kind.(*ir.Deref)
		if !ok || root.Kind != ir.DerefVar {
			return binding{}, false
		}
		return binding{deref: ref, variable: root.Var, index: d.Index}, true
	default:
		return binding{}, false
	}
}

// constIndex returns the array element selected by b clamped to
// [0, size-1]. It fails when the index is not a compile-time constant.
func constIndex(fn *ir.Function, b binding, size int) (int, bool) {
	if !b.index.Valid() {
		return 0, true
	}
	def := fn.Def(b.index)
	if def == nil {
		return 0, false
	}
	c, ok := def.Kind.(*ir.Const)
	if !ok || def.Type.Components != 1 {
		return 0, false
	}

	var idx int64
	switch def.Type.Kind {
	case ir.ScalarSint:
		idx = int64(int32(uint32(c.Bits[0])))
	case ir.ScalarUint:
		idx = int64(uint32(c.Bits[0]))
	default:
		return 0, false
	}
	return int(max(0, min(idx, int64(size-1)))), true
}

// lookupConversion returns the conversion bound to element index of the
// binding, or nil when the element samples ordinary RGB.
func lookupConversion(convs []conversion.Conversion, index int) *conversion.Conversion {
	if index < 0 || index >= len(convs) {
		return nil
	}
	c := &convs[index]
	if !c.Enabled() {
		return nil
	}
	return c
}
