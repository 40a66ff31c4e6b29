package ir

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrValueInUse is returned when removing an instruction whose value
	// still has uses.
	ErrValueInUse = errors.New("ir: value still has uses")

	// ErrRemoved is returned when operating on a removed instruction.
	ErrRemoved = errors.New("ir: instruction has been removed")
)

// Use records that operand Slot of instruction User reads a value.
type Use struct {
	User InstrHandle
	Slot int
}

// Block is a basic block: an ordered list of instructions and the blocks
// control may transfer to afterwards.
type Block struct {
	Handle BlockHandle
	Instrs []InstrHandle
	Succs  []BlockHandle
}

// Snapshot returns a copy of the block's instruction order. Instructions
// may be inserted or removed while iterating over the copy.
func (b *Block) Snapshot() []InstrHandle {
	return slices.Clone(b.Instrs)
}

// Function represents a function body in SSA form.
type Function struct {
	Name   string
	Blocks []*Block

	instrs []*Instruction
	uses   [][]Use

	metadata metadataState
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// AddBlock appends a block and returns it.
func (f *Function) AddBlock() *Block {
	b := &Block{Handle: BlockHandle(len(f.Blocks))}
	f.Blocks = append(f.Blocks, b)
	f.Invalidate(MetadataAll)
	return b
}

// Block returns the block for handle, or nil if out of range.
func (f *Function) Block(h BlockHandle) *Block {
	if int(h) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[h]
}

// Instr returns the live instruction for handle, or nil if the handle is
// out of range or the instruction was removed.
func (f *Function) Instr(h InstrHandle) *Instruction {
	if int(h) >= len(f.instrs) {
		return nil
	}
	return f.instrs[h]
}

// Def returns the instruction defining v, or nil.
func (f *Function) Def(v Value) *Instruction {
	if !v.Valid() {
		return nil
	}
	return f.Instr(v.Instr())
}

// ArenaLen returns the number of handles allocated so far, including
// removed instructions.
func (f *Function) ArenaLen() int {
	return len(f.instrs)
}

// Uses returns a copy of the use-list of v.
func (f *Function) Uses(v Value) []Use {
	if !v.Valid() || int(v.Instr()) >= len(f.uses) {
		return nil
	}
	return slices.Clone(f.uses[v.Instr()])
}

// NumUses returns the number of operand slots reading v.
func (f *Function) NumUses(v Value) int {
	if !v.Valid() || int(v.Instr()) >= len(f.uses) {
		return 0
	}
	return len(f.uses[v.Instr()])
}

// Append adds an instruction at the end of block b.
func (f *Function) Append(b BlockHandle, kind InstructionKind, typ ValueType) Value {
	return f.insert(b, len(f.Blocks[b].Instrs), kind, typ)
}

// insert places a new instruction at position pos of block b and
// registers the uses of its operands.
func (f *Function) insert(b BlockHandle, pos int, kind InstructionKind, typ ValueType) Value {
	h := InstrHandle(len(f.instrs))
	f.instrs = append(f.instrs, &Instruction{Kind: kind, Type: typ, block: b})
	f.uses = append(f.uses, nil)

	kind.operands(func(slot int, v *Value) {
		f.addUse(*v, Use{User: h, Slot: slot})
	})

	blk := f.Blocks[b]
	blk.Instrs = slices.Insert(blk.Instrs, pos, h)

	f.metadata.valid &^= MetadataInstrIndex
	return ValueOf(h)
}

// position returns the index of h within its block.
func (f *Function) position(h InstrHandle) (BlockHandle, int, error) {
	inst := f.Instr(h)
	if inst == nil {
		return 0, 0, fmt.Errorf("instruction %d: %w", h, ErrRemoved)
	}
	idx := slices.Index(f.Blocks[inst.block].Instrs, h)
	if idx < 0 {
		return 0, 0, fmt.Errorf("instruction %d not found in block %d", h, inst.block)
	}
	return inst.block, idx, nil
}

func (f *Function) addUse(v Value, u Use) {
	if !v.Valid() || int(v.Instr()) >= len(f.uses) {
		return
	}
	f.uses[v.Instr()] = append(f.uses[v.Instr()], u)
}

func (f *Function) dropUse(v Value, u Use) {
	if !v.Valid() || int(v.Instr()) >= len(f.uses) {
		return
	}
	list := f.uses[v.Instr()]
	if i := slices.Index(list, u); i >= 0 {
		f.uses[v.Instr()] = slices.Delete(list, i, i+1)
	}
}

// SetOperand redirects operand slot of instruction h to v, keeping
// use-lists consistent.
func (f *Function) SetOperand(h InstrHandle, slot int, v Value) error {
	inst := f.Instr(h)
	if inst == nil {
		return fmt.Errorf("instruction %d: %w", h, ErrRemoved)
	}
	found := false
	inst.Kind.operands(func(s int, op *Value) {
		if s != slot {
			return
		}
		found = true
		f.dropUse(*op, Use{User: h, Slot: s})
		*op = v
		f.addUse(v, Use{User: h, Slot: s})
	})
	if !found {
		return fmt.Errorf("instruction %d has no operand slot %d", h, slot)
	}
	return nil
}

// ReplaceAllUses redirects every use of old to repl and returns the number
// of redirected operand slots. Afterwards old has no uses.
func (f *Function) ReplaceAllUses(old, repl Value) int {
	if old == repl || !old.Valid() || int(old.Instr()) >= len(f.uses) {
		return 0
	}
	uses := f.uses[old.Instr()]
	f.uses[old.Instr()] = nil

	for _, u := range uses {
		inst := f.instrs[u.User]
		inst.Kind.operands(func(s int, op *Value) {
			if s == u.Slot && *op == old {
				*op = repl
			}
		})
		f.addUse(repl, u)
	}
	return len(uses)
}

// Remove deletes instruction h from its block. The value it defines must
// have no remaining uses; redirect them with ReplaceAllUses first.
func (f *Function) Remove(h InstrHandle) error {
	b, idx, err := f.position(h)
	if err != nil {
		return err
	}
	if n := len(f.uses[h]); n > 0 {
		return fmt.Errorf("remove instruction %d (%d uses): %w", h, n, ErrValueInUse)
	}

	inst := f.instrs[h]
	inst.Kind.operands(func(s int, op *Value) {
		f.dropUse(*op, Use{User: h, Slot: s})
	})

	blk := f.Blocks[b]
	blk.Instrs = slices.Delete(blk.Instrs, idx, idx+1)
	f.instrs[h] = nil

	f.metadata.valid &^= MetadataInstrIndex
	return nil
}

// Instructions returns the live instructions of the function in block
// order, then instruction order.
func (f *Function) Instructions() []InstrHandle {
	var out []InstrHandle
	for _, b := range f.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}
