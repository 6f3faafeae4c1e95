package emit

import (
	"fmt"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/sink"
)

// Fault is a fatal programmer-contract violation detected during
// emission: IR malformation, stack-depth underflow, a duplicate defcls
// id, and the like. The pipeline never returns a recoverable error;
// every failure is a Fault carrying enough diagnostic context (function
// name, block id, byte offset) to locate the bad input.
type Fault struct {
	Func   string
	Class  string
	Block  ir.BlockID
	Offset sink.Offset
	Msg    string
}

func (f *Fault) Error() string {
	loc := fmt.Sprintf("func=%s block=%d offset=%d", f.Func, f.Block, f.Offset)
	if f.Class != "" {
		loc = fmt.Sprintf("class=%s %s", f.Class, loc)
	}
	return fmt.Sprintf("emit: %s (%s)", f.Msg, loc)
}

func newFault(fn *ir.Function, block ir.BlockID, offset sink.Offset, format string, args ...any) *Fault {
	name := ""
	if fn != nil {
		name = fn.Name
	}
	return &Fault{Func: name, Block: block, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func newClassFault(class, fn string, offset sink.Offset, format string, args ...any) *Fault {
	return &Fault{Func: fn, Class: class, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
