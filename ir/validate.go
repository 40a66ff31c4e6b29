package ir

import (
	"fmt"
	"slices"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function string
	Instr    *InstrHandle
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Instr != nil {
			return fmt.Sprintf("in function %s, instruction %d: %s", e.Function, *e.Instr, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module *Module
	errors []ValidationError

	fn *Function
}

// Validate checks the IR module for correctness.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{module: module}
	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	for _, fn := range v.module.Functions {
		v.validateFunction(fn)
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg})
}

func (v *Validator) addInstrError(h InstrHandle, format string, args ...any) {
	handle := h
	v.errors = append(v.errors, ValidationError{
		Message:  fmt.Sprintf(format, args...),
		Function: v.fn.Name,
		Instr:    &handle,
	})
}

func (v *Validator) validateFunction(fn *Function) {
	if fn == nil {
		v.addError("nil function")
		return
	}
	v.fn = fn

	if len(fn.Blocks) == 0 {
		v.errors = append(v.errors, ValidationError{Message: "function has no blocks", Function: fn.Name})
		return
	}

	placed := make(map[InstrHandle]BlockHandle)
	for i, b := range fn.Blocks {
		if b.Handle != BlockHandle(i) {
			v.errors = append(v.errors, ValidationError{
				Message:  fmt.Sprintf("block %d has handle %d", i, b.Handle),
				Function: fn.Name,
			})
		}
		for _, s := range b.Succs {
			if int(s) >= len(fn.Blocks) {
				v.errors = append(v.errors, ValidationError{
					Message:  fmt.Sprintf("block %d: successor %d out of range", i, s),
					Function: fn.Name,
				})
			}
		}
		for _, h := range b.Instrs {
			if fn.Instr(h) == nil {
				v.addInstrError(h, "block %d lists a removed instruction", i)
				continue
			}
			if _, dup := placed[h]; dup {
				v.addInstrError(h, "instruction appears more than once")
				continue
			}
			placed[h] = BlockHandle(i)
		}
	}
	if len(v.errors) > 0 {
		return
	}

	fn.Require(MetadataDominance | MetadataInstrIndex)
	for _, h := range fn.Instructions() {
		v.validateInstruction(h, fn.Instr(h))
	}
	v.validateUseLists()
}

func (v *Validator) validateInstruction(h InstrHandle, inst *Instruction) {
	fn := v.fn
	if inst.Kind == nil {
		v.addInstrError(h, "nil instruction kind")
		return
	}

	inst.Kind.operands(func(slot int, op *Value) {
		def := fn.Def(*op)
		if def == nil {
			v.addInstrError(h, "operand %d reads undefined value %d", slot, *op)
			return
		}
		if !def.Type.HasResult() {
			v.addInstrError(h, "operand %d reads instruction %d which defines no value", slot, op.Instr())
			return
		}
		if !v.defDominatesUse(op.Instr(), h) {
			v.addInstrError(h, "operand %d: definition %d does not dominate use", slot, op.Instr())
		}
		if !slices.Contains(fn.uses[op.Instr()], Use{User: h, Slot: slot}) {
			v.addInstrError(h, "operand %d missing from use-list of %d", slot, op.Instr())
		}
	})

	switch k := inst.Kind.(type) {
	case *Const:
		if inst.Type.Components == 0 || inst.Type.Components > 4 {
			v.addInstrError(h, "constant must have 1-4 components, got %d", inst.Type.Components)
		}
	case *ALU:
		v.validateALU(h, inst, k)
	case *Swizzle:
		src := fn.Def(k.Src)
		if src == nil {
			return
		}
		if len(k.Components) != int(inst.Type.Components) {
			v.addInstrError(h, "swizzle selects %d components into a %d-component value", len(k.Components), inst.Type.Components)
		}
		for _, c := range k.Components {
			if c >= src.Type.Components {
				v.addInstrError(h, "swizzle component %d out of range for %d-component source", c, src.Type.Components)
			}
		}
	case *Deref:
		v.validateDeref(h, k)
	case *Tex:
		v.validateTex(h, inst, k)
	case *StoreOutput, *LoadInput:
	}
}

func (v *Validator) validateALU(h InstrHandle, inst *Instruction, a *ALU) {
	if n := a.Op.NumArgs(); n == 0 || len(a.Args) != n {
		v.addInstrError(h, "alu op %d expects %d operands, got %d", a.Op, n, len(a.Args))
		return
	}
	comps := make([]uint8, len(a.Args))
	for i, arg := range a.Args {
		def := v.fn.Def(arg)
		if def == nil {
			return
		}
		comps[i] = def.Type.Components
	}

	switch {
	case a.Op.IsVec():
		for i, c := range comps {
			if c != 1 {
				v.addInstrError(h, "vector operand %d must be scalar, got %d components", i, c)
			}
		}
		if int(inst.Type.Components) != len(a.Args) {
			v.addInstrError(h, "vector of %d operands defines %d components", len(a.Args), inst.Type.Components)
		}
	case a.Op == OpFDot4:
		if comps[0] != 4 || comps[1] != 4 {
			v.addInstrError(h, "fdot4 operands must have 4 components")
		}
		if inst.Type.Components != 1 {
			v.addInstrError(h, "fdot4 must define a scalar")
		}
	default:
		for i, c := range comps {
			if c != inst.Type.Components {
				v.addInstrError(h, "operand %d has %d components, want %d", i, c, inst.Type.Components)
			}
		}
	}
}

func (v *Validator) validateDeref(h InstrHandle, d *Deref) {
	switch d.Kind {
	case DerefVar:
		if v.module.Variable(d.Var) == nil {
			v.addInstrError(h, "deref of variable %d out of range", d.Var)
		}
	case DerefArray:
		parent := v.fn.Def(d.Parent)
		if parent == nil {
			return
		}
		if _, ok := parent.Kind.(*Deref); !ok {
			v.addInstrError(h, "array deref parent %d is not a deref", d.Parent.Instr())
		}
		if idx := v.fn.Def(d.Index); idx != nil && (idx.Type.Components != 1 || idx.Type.Kind == ScalarFloat) {
			v.addInstrError(h, "array index must be an integer scalar")
		}
	default:
		v.addInstrError(h, "unknown deref kind %d", d.Kind)
	}
}

func (v *Validator) validateTex(h InstrHandle, inst *Instruction, t *Tex) {
	texRef, ok := t.Src(SrcTextureDeref)
	if !ok {
		v.addInstrError(h, "texture instruction has no texture reference")
		return
	}
	if def := v.fn.Def(texRef); def != nil {
		if _, isDeref := def.Kind.(*Deref); !isDeref {
			v.addInstrError(h, "texture reference is not a deref")
		}
	}
	if !t.Op.IsQuery() {
		if _, ok := t.Src(SrcCoord); !ok {
			v.addInstrError(h, "sample without coordinate")
		}
	}
	if !inst.Type.HasResult() {
		v.addInstrError(h, "texture instruction defines no value")
	}
}

// defDominatesUse reports whether def is available at use.
func (v *Validator) defDominatesUse(def, use InstrHandle) bool {
	fn := v.fn
	db := fn.Instr(def).block
	ub := fn.Instr(use).block
	if db == ub {
		return fn.InstrIndex(def) < fn.InstrIndex(use)
	}
	return fn.Dominates(db, ub)
}

// validateUseLists checks that every recorded use names a live operand.
func (v *Validator) validateUseLists() {
	fn := v.fn
	for i, uses := range fn.uses {
		if fn.instrs[i] == nil {
			if len(uses) > 0 {
				v.addInstrError(InstrHandle(i), "removed instruction still has %d uses", len(uses))
			}
			continue
		}
		for _, u := range uses {
			user := fn.Instr(u.User)
			if user == nil {
				v.addInstrError(InstrHandle(i), "use by removed instruction %d", u.User)
				continue
			}
			found := false
			user.Kind.operands(func(slot int, op *Value) {
				if slot == u.Slot && *op == ValueOf(InstrHandle(i)) {
					found = true
				}
			})
			if !found {
				v.addInstrError(InstrHandle(i), "stale use by instruction %d slot %d", u.User, u.Slot)
			}
		}
	}
}
