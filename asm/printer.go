package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gogpu/ycbcr/ir"
)

// Print returns the textual form of m. Values are numbered densely in
// program order, so printing is stable regardless of arena layout.
func Print(m *ir.Module) string {
	var sb strings.Builder
	for i := range m.Variables {
		printVariable(&sb, &m.Variables[i])
	}
	for i, fn := range m.Functions {
		if i > 0 || len(m.Variables) > 0 {
			sb.WriteByte('\n')
		}
		printFunction(&sb, m, fn)
	}
	return sb.String()
}

func printVariable(sb *strings.Builder, v *ir.Variable) {
	fmt.Fprintf(sb, "var @%s set=%d binding=%d", v.Name, v.Set, v.Binding)
	if v.ArraySize > 0 {
		fmt.Fprintf(sb, " array=%d", v.ArraySize)
	}
	if name, ok := dimNames[v.Dim]; ok {
		fmt.Fprintf(sb, " dim=%s", name)
	}
	if v.Arrayed {
		sb.WriteString(" arrayed")
	}
	if v.Shadow {
		sb.WriteString(" shadow")
	}
	sb.WriteByte('\n')
}

type funcPrinter struct {
	sb     *strings.Builder
	module *ir.Module
	fn     *ir.Function
	names  map[ir.Value]int
}

func printFunction(sb *strings.Builder, m *ir.Module, fn *ir.Function) {
	p := &funcPrinter{sb: sb, module: m, fn: fn, names: make(map[ir.Value]int)}
	for _, h := range fn.Instructions() {
		if fn.Instr(h).Type.HasResult() {
			p.names[ir.ValueOf(h)] = len(p.names)
		}
	}

	fmt.Fprintf(sb, "func @%s {\n", fn.Name)
	for _, blk := range fn.Blocks {
		fmt.Fprintf(sb, "block%d:", blk.Handle)
		for i, s := range blk.Succs {
			if i == 0 {
				sb.WriteString(" -> ")
			} else {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "block%d", s)
		}
		sb.WriteByte('\n')
		for _, h := range blk.Instrs {
			sb.WriteString("  ")
			p.instruction(h)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("}\n")
}

func (p *funcPrinter) value(v ir.Value) string {
	if n, ok := p.names[v]; ok {
		return "%" + strconv.Itoa(n)
	}
	return "%undef"
}

func (p *funcPrinter) instruction(h ir.InstrHandle) {
	inst := p.fn.Instr(h)
	sb := p.sb
	if inst.Type.HasResult() {
		fmt.Fprintf(sb, "%s = ", p.value(ir.ValueOf(h)))
	}

	switch k := inst.Kind.(type) {
	case *ir.Const:
		fmt.Fprintf(sb, "const %s ", typeName(inst.Type))
		for c := range int(inst.Type.Components) {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(literal(k.Bits[c], inst.Type.Kind))
		}

	case *ir.LoadInput:
		fmt.Fprintf(sb, "load_input %s location=%d", typeName(inst.Type), k.Location)

	case *ir.StoreOutput:
		fmt.Fprintf(sb, "store_output location=%d %s", k.Location, p.value(k.Src))

	case *ir.Deref:
		if k.Kind == ir.DerefVar {
			name := "undef"
			if v := p.module.Variable(k.Var); v != nil {
				name = v.Name
			}
			fmt.Fprintf(sb, "deref_var @%s", name)
		} else {
			fmt.Fprintf(sb, "deref_array %s %s", p.value(k.Parent), p.value(k.Index))
		}

	case *ir.Swizzle:
		mask := make([]byte, len(k.Components))
		for i, c := range k.Components {
			mask[i] = swizzleLetters[c&3]
		}
		fmt.Fprintf(sb, "swizzle %s %s %s", typeName(inst.Type), p.value(k.Src), mask)

	case *ir.ALU:
		fmt.Fprintf(sb, "%s %s", aluNames[k.Op], typeName(inst.Type))
		for _, a := range k.Args {
			sb.WriteByte(' ')
			sb.WriteString(p.value(a))
		}

	case *ir.Tex:
		p.tex(k, inst.Type)

	default:
		fmt.Fprintf(sb, "unknown %T", k)
	}
}

func (p *funcPrinter) tex(t *ir.Tex, typ ir.ValueType) {
	sb := p.sb
	fmt.Fprintf(sb, "tex %s %s", texOpNames[t.Op], typeName(typ))
	if name, ok := dimNames[t.Dim]; ok {
		fmt.Fprintf(sb, " dim=%s", name)
	}
	if t.Arrayed {
		sb.WriteString(" arrayed")
	}
	if t.Shadow {
		sb.WriteString(" shadow")
	}
	if t.Component != 0 {
		fmt.Fprintf(sb, " component=%d", t.Component)
	}
	if t.CoordComponents != 0 {
		fmt.Fprintf(sb, " coord_components=%d", t.CoordComponents)
	}
	if t.TextureIndex != 0 {
		fmt.Fprintf(sb, " texture_index=%d", t.TextureIndex)
	}
	if t.SamplerIndex != 0 {
		fmt.Fprintf(sb, " sampler_index=%d", t.SamplerIndex)
	}
	for role, v := range t.Sources {
		if v.Valid() {
			fmt.Fprintf(sb, " %s=%s", srcRoleNames[role], p.value(v))
		}
	}
}

func typeName(t ir.ValueType) string {
	scalar, ok := scalarNames[t.Kind]
	if !ok {
		scalar = "ref"
	}
	if t.Components <= 1 {
		return scalar
	}
	return fmt.Sprintf("vec%d<%s>", t.Components, scalar)
}

func literal(bits uint64, kind ir.ScalarKind) string {
	switch kind {
	case ir.ScalarFloat:
		f := math32.Float32frombits(uint32(bits))
		return strconv.FormatFloat(float64(f), 'g', -1, 32)
	case ir.ScalarSint:
		return strconv.FormatInt(int64(int32(uint32(bits))), 10)
	default:
		return strconv.FormatUint(uint64(uint32(bits)), 10)
	}
}
