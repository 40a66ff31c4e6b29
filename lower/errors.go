package lower

import (
	"fmt"

	"github.com/gogpu/ycbcr/ir"
)

// InvariantError reports a conversion descriptor or instruction shape the
// pass cannot express. Descriptors are expected to be validated before the
// pass runs, so the error is fatal to the compilation.
type InvariantError struct {
	Function string
	Instr    ir.InstrHandle
	Message  string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("ycbcr lowering: in function %s, instruction %d: %s", e.Function, e.Instr, e.Message)
}

func invariantf(fn *ir.Function, h ir.InstrHandle, format string, args ...any) *InvariantError {
	return &InvariantError{
		Function: fn.Name,
		Instr:    h,
		Message:  fmt.Sprintf(format, args...),
	}
}
