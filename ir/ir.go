// Package ir defines the SSA intermediate representation used by the
// texture lowering passes.
//
// A Module holds resource variables and functions. Each function owns an
// arena of instructions addressed by stable handles, an ordered list of
// basic blocks, and a use-list per defined value.
package ir

import "github.com/gogpu/gputypes"

// Module represents a shader program in IR form.
type Module struct {
	// Variables holds module-scope resource variables (textures, samplers)
	Variables []Variable

	// Functions holds all function bodies
	Functions []*Function
}

// Handle types for referencing IR objects
type (
	VariableHandle uint32
	BlockHandle    uint32
	InstrHandle    uint32
)

// Value names the SSA value defined by an instruction.
// The zero Value is not defined by any instruction.
type Value uint32

// NoValue is the absent value.
const NoValue Value = 0

// ValueOf returns the value defined by the instruction h.
func ValueOf(h InstrHandle) Value {
	return Value(h + 1)
}

// Instr returns the handle of the defining instruction.
func (v Value) Instr() InstrHandle {
	return InstrHandle(v - 1)
}

// Valid reports whether v names a value.
func (v Value) Valid() bool {
	return v != NoValue
}

// Variable represents a resource variable bound through a descriptor set.
type Variable struct {
	Name    string
	Set     uint32
	Binding uint32

	// ArraySize is the declared element count, 0 for non-arrayed bindings.
	ArraySize uint32

	// Image shape of the bound texture.
	Dim     gputypes.TextureViewDimension
	Arrayed bool
	Shadow  bool
}

// AddVariable appends a variable and returns its handle.
func (m *Module) AddVariable(v Variable) VariableHandle {
	m.Variables = append(m.Variables, v)
	return VariableHandle(len(m.Variables) - 1)
}

// AddFunction appends an empty function and returns it.
func (m *Module) AddFunction(name string) *Function {
	fn := NewFunction(name)
	m.Functions = append(m.Functions, fn)
	return fn
}

// Variable returns the variable for handle, or nil if out of range.
func (m *Module) Variable(h VariableHandle) *Variable {
	if int(h) >= len(m.Variables) {
		return nil
	}
	return &m.Variables[h]
}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarRef                     // Reference produced by a deref
)

// ValueType describes the value produced by an instruction.
// Components is 0 for instructions without a result.
type ValueType struct {
	Components uint8
	BitSize    uint8
	Kind       ScalarKind
}

// HasResult reports whether the type describes a value.
func (t ValueType) HasResult() bool {
	return t.Components != 0
}

// Common value types.
var (
	Float32 = ValueType{Components: 1, BitSize: 32, Kind: ScalarFloat}
	Int32   = ValueType{Components: 1, BitSize: 32, Kind: ScalarSint}
	Uint32  = ValueType{Components: 1, BitSize: 32, Kind: ScalarUint}
	RefType = ValueType{Components: 1, BitSize: 32, Kind: ScalarRef}
)

// Vec returns t widened to n components.
func (t ValueType) Vec(n int) ValueType {
	t.Components = uint8(n)
	return t
}

// DimComponents returns the number of coordinate components addressing a
// texture of the given dimension, not counting the array layer.
func DimComponents(dim gputypes.TextureViewDimension) int {
	switch dim {
	case gputypes.TextureViewDimension1D:
		return 1
	case gputypes.TextureViewDimension3D:
		return 3
	default:
		return 2
	}
}
