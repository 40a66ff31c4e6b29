// Package interp evaluates straight-line IR functions with float32
// semantics. It backs the numeric tests of the lowering passes.
package interp

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/ycbcr/ir"
)

// Vec4 is a four-component value. Unused components are zero.
type Vec4 [4]float32

// Sampler supplies texel data to texture instructions.
type Sampler interface {
	// Sample returns the texel of plane at coord for element of variable.
	// Plane is 0 for unlowered samples.
	Sample(v *ir.Variable, element, plane int, op ir.TexOp, coord []float32) Vec4

	// Size returns the full-resolution size of the image, followed by the
	// layer count for arrayed images.
	Size(v *ir.Variable, element int) []int32
}

// Machine evaluates one function.
type Machine struct {
	Module  *ir.Module
	Sampler Sampler
	Inputs  map[uint32]Vec4

	// Outputs collects store_output results by location.
	Outputs map[uint32]Vec4

	// Samples counts texture instructions by op.
	Samples map[ir.TexOp]int

	vals []value
}

type value struct {
	bits [4]uint32
	n    int
	kind ir.ScalarKind

	// For references.
	variable ir.VariableHandle
	element  int
}

func (v value) float(c int) float32 {
	return math32.Float32frombits(v.bits[c])
}

func (v value) floats() []float32 {
	out := make([]float32, v.n)
	for c := range out {
		out[c] = v.float(c)
	}
	return out
}

func floatValue(fs ...float32) value {
	v := value{n: len(fs), kind: ir.ScalarFloat}
	for c, f := range fs {
		v.bits[c] = math32.Float32bits(f)
	}
	return v
}

// Run evaluates the blocks of fn in order and returns the outputs.
func (m *Machine) Run(fn *ir.Function) (map[uint32]Vec4, error) {
	if m.Outputs == nil {
		m.Outputs = make(map[uint32]Vec4)
	}
	if m.Samples == nil {
		m.Samples = make(map[ir.TexOp]int)
	}
	m.vals = make([]value, fn.ArenaLen())
	for _, blk := range fn.Blocks {
		for _, h := range blk.Instrs {
			if err := m.step(fn, h); err != nil {
				return nil, fmt.Errorf("interp: %s instruction %d: %w", fn.Name, h, err)
			}
		}
	}
	return m.Outputs, nil
}

// Value returns the float components computed for v by the last Run.
func (m *Machine) Value(v ir.Value) []float32 {
	return m.vals[v.Instr()].floats()
}

func (m *Machine) get(v ir.Value) value {
	return m.vals[v.Instr()]
}

func (m *Machine) step(fn *ir.Function, h ir.InstrHandle) error {
	inst := fn.Instr(h)
	var out value
	switch k := inst.Kind.(type) {
	case *ir.Const:
		out = value{n: int(inst.Type.Components), kind: inst.Type.Kind}
		for c := range out.n {
			out.bits[c] = uint32(k.Bits[c])
		}

	case *ir.LoadInput:
		in := m.Inputs[k.Location]
		out = floatValue(in[:inst.Type.Components]...)

	case *ir.StoreOutput:
		var o Vec4
		copy(o[:], m.get(k.Src).floats())
		m.Outputs[k.Location] = o
		return nil

	case *ir.Swizzle:
		src := m.get(k.Src)
		out = value{n: len(k.Components), kind: src.kind}
		for i, c := range k.Components {
			out.bits[i] = src.bits[c]
		}

	case *ir.Deref:
		switch k.Kind {
		case ir.DerefVar:
			out = value{n: 1, kind: ir.ScalarRef, variable: k.Var}
		default:
			parent := m.get(k.Parent)
			idx := m.get(k.Index)
			out = parent
			out.element = int(int32(idx.bits[0]))
		}

	case *ir.ALU:
		v, err := m.alu(k, inst.Type)
		if err != nil {
			return err
		}
		out = v

	case *ir.Tex:
		v, err := m.tex(k, inst.Type)
		if err != nil {
			return err
		}
		out = v

	default:
		return fmt.Errorf("unsupported instruction %T", k)
	}
	m.vals[h] = out
	return nil
}

func (m *Machine) alu(a *ir.ALU, typ ir.ValueType) (value, error) {
	arg := func(i int) value { return m.get(a.Args[i]) }
	n := int(typ.Components)

	if a.Op.IsVec() || a.Op == ir.OpMov {
		out := value{n: len(a.Args), kind: typ.Kind}
		for i := range a.Args {
			out.bits[i] = arg(i).bits[0]
		}
		return out, nil
	}

	res := make([]float32, n)
	switch a.Op {
	case ir.OpFAdd, ir.OpFMul, ir.OpFDiv:
		x, y := arg(0), arg(1)
		for c := range res {
			xc, yc := x.float(c), y.float(min(c, y.n-1))
			switch a.Op {
			case ir.OpFAdd:
				res[c] = xc + yc
			case ir.OpFMul:
				res[c] = xc * yc
			default:
				res[c] = xc / yc
			}
		}
	case ir.OpFRcp:
		x := arg(0)
		for c := range res {
			res[c] = 1 / x.float(c)
		}
	case ir.OpFNeg:
		x := arg(0)
		for c := range res {
			res[c] = -x.float(c)
		}
	case ir.OpFDot4:
		x, y := arg(0), arg(1)
		var sum float32
		for c := range 4 {
			sum += x.float(c) * y.float(c)
		}
		res[0] = sum
	case ir.OpI2F32:
		x := arg(0)
		for c := range res {
			res[c] = float32(int32(x.bits[c]))
		}
	default:
		return value{}, fmt.Errorf("unsupported alu op %d", a.Op)
	}
	return floatValue(res...), nil
}

func (m *Machine) tex(t *ir.Tex, typ ir.ValueType) (value, error) {
	if m.Sampler == nil {
		return value{}, fmt.Errorf("texture instruction without sampler")
	}
	refVal, ok := t.Src(ir.SrcTextureDeref)
	if !ok {
		return value{}, fmt.Errorf("texture instruction without texture reference")
	}
	ref := m.get(refVal)
	v := m.Module.Variable(ref.variable)
	m.Samples[t.Op]++

	if t.Op == ir.TexSize {
		size := m.Sampler.Size(v, ref.element)
		out := value{n: int(typ.Components), kind: ir.ScalarSint}
		for c := 0; c < out.n && c < len(size); c++ {
			out.bits[c] = uint32(size[c])
		}
		return out, nil
	}

	plane := 0
	if p, ok := t.Src(ir.SrcPlane); ok {
		plane = int(int32(m.get(p).bits[0]))
	}
	var coord []float32
	if c, ok := t.Src(ir.SrcCoord); ok {
		coord = m.get(c).floats()
	}
	texel := m.Sampler.Sample(v, ref.element, plane, t.Op, coord)
	return floatValue(texel[:typ.Components]...), nil
}
