package ir

import "github.com/mna/calyx/lang/opcode"

// Instruction is one bytecode instruction: an opcode, its typed
// immediate payload, a source-location index, and a computed stack
// effect. StackPop/StackPush are filled in by the instruction encoder as
// it emits each instruction; they are zero until then.
type Instruction struct {
	Op     opcode.Opcode
	Imm    opcode.Immediate
	SrcLoc int // index into the owning Function's SourceInfo.Positions, or -1 if unknown

	StackPop  int
	StackPush int
}
