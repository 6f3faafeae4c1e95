package ir

import "github.com/mna/calyx/lang/opcode"

// BlockID identifies a block within a function, stable and dense over
// [0, len(blocks)). Aliased from the opcode package so that branch
// immediates (which reference a BlockID before layout and a byte offset
// after) share one type across packages.
type BlockID = opcode.BlockID

// Section is the layout section a block belongs to: main code must be
// contiguous and first; each fault funclet must be contiguous, with its
// entry block first.
type Section uint8

const (
	SectionMain Section = iota
	SectionFault
)

// Block is a maximal straight-line sequence of instructions with a
// single entry and a single fall-through or terminal exit (GLOSSARY).
type Block struct {
	ID      BlockID
	Insns   []Instruction
	Section Section

	// Fallthrough is the block's sole fall-through successor, if any. A
	// block whose last instruction is terminal (opcode.IsTerminal) has no
	// fall-through.
	Fallthrough *BlockID
	// FallthroughNS distinguishes a no-surprise-check fall-through jump
	// (JmpNS) from a regular one.
	FallthroughNS bool

	// FactoredExits lists non-fallthrough, non-immediate exits for
	// diagnostics only; they are not consulted by any emission algorithm.
	FactoredExits []BlockID

	// ExnNode is the block's position in the exception-node tree, or nil
	// if the block is not inside any catch or fault region.
	ExnNode *ExnNode
}
