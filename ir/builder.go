package ir

import (
	"fmt"

	"github.com/chewxy/math32"
)

type cursorMode uint8

const (
	cursorBefore cursorMode = iota
	cursorAfter
	cursorAtEnd
)

// Cursor is an insertion point within a function.
type Cursor struct {
	mode  cursorMode
	instr InstrHandle
	block BlockHandle
}

// Before returns a cursor inserting immediately before h. Successive
// insertions keep program order and stay before h.
func Before(h InstrHandle) Cursor {
	return Cursor{mode: cursorBefore, instr: h}
}

// After returns a cursor inserting immediately after h. The cursor
// advances past each inserted instruction.
func After(h InstrHandle) Cursor {
	return Cursor{mode: cursorAfter, instr: h}
}

// AtEnd returns a cursor appending to block b.
func AtEnd(b BlockHandle) Cursor {
	return Cursor{mode: cursorAtEnd, block: b}
}

// Builder inserts instructions into a function at a cursor.
type Builder struct {
	Func   *Function
	cursor Cursor
	err    error
}

// NewBuilder creates a builder appending to the function's first block.
func NewBuilder(fn *Function) *Builder {
	return &Builder{Func: fn, cursor: AtEnd(0)}
}

// SetCursor moves the insertion point.
func (b *Builder) SetCursor(c Cursor) {
	b.cursor = c
}

// Err returns the first insertion error, if any. After an error every
// helper returns NoValue.
func (b *Builder) Err() error {
	return b.err
}

// Insert adds an instruction at the cursor and returns its value.
func (b *Builder) Insert(kind InstructionKind, typ ValueType) Value {
	if b.err != nil {
		return NoValue
	}
	fn := b.Func

	switch b.cursor.mode {
	case cursorAtEnd:
		if fn.Block(b.cursor.block) == nil {
			b.err = fmt.Errorf("insert: block %d out of range", b.cursor.block)
			return NoValue
		}
		return fn.Append(b.cursor.block, kind, typ)

	case cursorBefore:
		blk, idx, err := fn.position(b.cursor.instr)
		if err != nil {
			b.err = fmt.Errorf("insert: %w", err)
			return NoValue
		}
		return fn.insert(blk, idx, kind, typ)

	default:
		blk, idx, err := fn.position(b.cursor.instr)
		if err != nil {
			b.err = fmt.Errorf("insert: %w", err)
			return NoValue
		}
		v := fn.insert(blk, idx+1, kind, typ)
		b.cursor.instr = v.Instr()
		return v
	}
}

// typeOf returns the type of v, or the zero type if v is undefined.
func (b *Builder) typeOf(v Value) ValueType {
	if inst := b.Func.Def(v); inst != nil {
		return inst.Type
	}
	return ValueType{}
}

// ImmFloat inserts a 32-bit float constant.
func (b *Builder) ImmFloat(f float32) Value {
	return b.ImmFloats(f)
}

// ImmFloats inserts a 32-bit float vector constant of len(fs) components.
func (b *Builder) ImmFloats(fs ...float32) Value {
	c := &Const{}
	for i, f := range fs {
		c.Bits[i] = uint64(math32.Float32bits(f))
	}
	return b.Insert(c, Float32.Vec(len(fs)))
}

// ImmInt inserts a 32-bit signed integer constant.
func (b *Builder) ImmInt(i int32) Value {
	c := &Const{}
	c.Bits[0] = uint64(uint32(i))
	return b.Insert(c, Int32)
}

// Channel extracts component c of v.
func (b *Builder) Channel(v Value, c uint8) Value {
	return b.Insert(&Swizzle{Src: v, Components: []uint8{c}}, b.typeOf(v).Vec(1))
}

// Vec builds a vector from scalar values. A single value is moved.
func (b *Builder) Vec(vals ...Value) Value {
	args := append([]Value(nil), vals...)
	return b.Insert(&ALU{Op: VecOp(len(args)), Args: args}, b.typeOf(vals[0]).Vec(len(args)))
}

func (b *Builder) alu(op ALUOp, typ ValueType, args ...Value) Value {
	return b.Insert(&ALU{Op: op, Args: args}, typ)
}

// FAdd inserts x + y.
func (b *Builder) FAdd(x, y Value) Value {
	return b.alu(OpFAdd, b.typeOf(x), x, y)
}

// FMul inserts x * y.
func (b *Builder) FMul(x, y Value) Value {
	return b.alu(OpFMul, b.typeOf(x), x, y)
}

// FDiv inserts x / y.
func (b *Builder) FDiv(x, y Value) Value {
	return b.alu(OpFDiv, b.typeOf(x), x, y)
}

// FRcp inserts 1 / x.
func (b *Builder) FRcp(x Value) Value {
	return b.alu(OpFRcp, b.typeOf(x), x)
}

// FNeg inserts -x.
func (b *Builder) FNeg(x Value) Value {
	return b.alu(OpFNeg, b.typeOf(x), x)
}

// FDot4 inserts the dot product of two 4-component vectors.
func (b *Builder) FDot4(x, y Value) Value {
	return b.alu(OpFDot4, b.typeOf(x).Vec(1), x, y)
}

// I2F32 converts an integer vector to 32-bit floats.
func (b *Builder) I2F32(x Value) Value {
	n := int(b.typeOf(x).Components)
	return b.alu(OpI2F32, Float32.Vec(n), x)
}

// Tex inserts a texture instruction with a destination of typ.
func (b *Builder) Tex(t *Tex, typ ValueType) Value {
	return b.Insert(t, typ)
}
