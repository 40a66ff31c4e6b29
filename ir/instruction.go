package ir

import "github.com/gogpu/gputypes"

// Instruction is a node in a function's instruction stream.
type Instruction struct {
	Kind InstructionKind

	// Type is the type of the defined value; zero for instructions
	// without a result.
	Type ValueType

	block BlockHandle
}

// Block returns the block the instruction was inserted into.
func (i *Instruction) Block() BlockHandle {
	return i.block
}

// Operands returns the values read by the instruction in slot order.
func (i *Instruction) Operands() []Value {
	var ops []Value
	i.Kind.operands(func(_ int, v *Value) {
		ops = append(ops, *v)
	})
	return ops
}

// InstructionKind represents the different kinds of instructions.
type InstructionKind interface {
	instructionKind()

	// operands visits every value slot the instruction reads.
	operands(fn func(slot int, v *Value))
}

// Const defines an immediate value. Bits holds one entry per component:
// float32 bits for 32-bit floats, two's complement for integers.
type Const struct {
	Bits [4]uint64
}

func (*Const) instructionKind()                  {}
func (*Const) operands(func(slot int, v *Value)) {}

// ALUOp represents an arithmetic operation.
type ALUOp uint8

const (
	OpMov ALUOp = iota
	OpFAdd
	OpFMul
	OpFDiv
	OpFRcp
	OpFNeg
	OpFDot4
	OpI2F32
	OpVec2
	OpVec3
	OpVec4
)

// NumArgs returns the number of operands the op reads.
func (op ALUOp) NumArgs() int {
	switch op {
	case OpMov, OpFRcp, OpFNeg, OpI2F32:
		return 1
	case OpFAdd, OpFMul, OpFDiv, OpFDot4, OpVec2:
		return 2
	case OpVec3:
		return 3
	case OpVec4:
		return 4
	default:
		return 0
	}
}

// IsVec reports whether op builds a vector from scalars.
func (op ALUOp) IsVec() bool {
	return op == OpVec2 || op == OpVec3 || op == OpVec4
}

// VecOp returns the vector-construction op for n components.
// A single component is a move.
func VecOp(n int) ALUOp {
	switch n {
	case 2:
		return OpVec2
	case 3:
		return OpVec3
	case 4:
		return OpVec4
	default:
		return OpMov
	}
}

// ALU applies an arithmetic operation to its arguments.
type ALU struct {
	Op   ALUOp
	Args []Value
}

func (*ALU) instructionKind() {}

func (a *ALU) operands(fn func(slot int, v *Value)) {
	for i := range a.Args {
		fn(i, &a.Args[i])
	}
}

// Swizzle selects components of Src. A single component extracts a
// channel.
type Swizzle struct {
	Src        Value
	Components []uint8
}

func (*Swizzle) instructionKind() {}

func (s *Swizzle) operands(fn func(slot int, v *Value)) {
	fn(0, &s.Src)
}

// DerefKind distinguishes the steps of a resource reference chain.
type DerefKind uint8

const (
	DerefVar   DerefKind = iota // Root: names a variable
	DerefArray                  // Indexes the element produced by Parent
)

// Deref produces a reference to a resource variable or one of its array
// elements.
type Deref struct {
	Kind   DerefKind
	Var    VariableHandle // DerefVar only
	Parent Value          // DerefArray only
	Index  Value          // DerefArray only
}

func (*Deref) instructionKind() {}

func (d *Deref) operands(fn func(slot int, v *Value)) {
	if d.Kind != DerefArray {
		return
	}
	fn(0, &d.Parent)
	fn(1, &d.Index)
}

// TexOp represents a texture operation.
type TexOp uint8

const (
	TexSample TexOp = iota
	TexSampleBias
	TexSampleLod
	TexFetch
	TexSize
	TexQueryLevels
	TexLod
)

// IsQuery reports whether op reports image shape rather than texel data.
func (op TexOp) IsQuery() bool {
	return op == TexSize || op == TexQueryLevels || op == TexLod
}

// SrcRole names the role of a texture instruction source.
type SrcRole uint8

const (
	SrcCoord SrcRole = iota
	SrcTextureDeref
	SrcSamplerDeref
	SrcBias
	SrcLod
	SrcComparator
	SrcOffset
	SrcPlane

	// NumSrcRoles is the number of source roles.
	NumSrcRoles
)

// TexSources maps each role to its source value; NoValue marks an absent
// source.
type TexSources [NumSrcRoles]Value

// Tex is a texture sample or query.
type Tex struct {
	Op      TexOp
	Sources TexSources

	Dim             gputypes.TextureViewDimension
	Arrayed         bool
	Shadow          bool
	Component       uint8
	CoordComponents uint8

	TextureIndex uint32
	SamplerIndex uint32
}

func (*Tex) instructionKind() {}

func (t *Tex) operands(fn func(slot int, v *Value)) {
	for role := range t.Sources {
		if t.Sources[role].Valid() {
			fn(role, &t.Sources[role])
		}
	}
}

// Src returns the source for role.
func (t *Tex) Src(role SrcRole) (Value, bool) {
	v := t.Sources[role]
	return v, v.Valid()
}

// Clone returns a copy of the instruction with the same sources and shape.
func (t *Tex) Clone() *Tex {
	c := *t
	return &c
}

// LoadInput reads a shader stage input.
type LoadInput struct {
	Location uint32
}

func (*LoadInput) instructionKind()                  {}
func (*LoadInput) operands(func(slot int, v *Value)) {}

// StoreOutput writes a shader stage output.
type StoreOutput struct {
	Location uint32
	Src      Value
}

func (*StoreOutput) instructionKind() {}

func (s *StoreOutput) operands(fn func(slot int, v *Value)) {
	fn(0, &s.Src)
}
