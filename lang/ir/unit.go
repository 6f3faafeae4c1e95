// Package ir defines the input data model consumed by the bytecode
// emission core: an already-optimized control-flow graph of basic blocks
// carrying typed instructions, an exception-region tree, and the
// per-function/per-class metadata the unit driver finalizes into a
// serialized unit.
//
// A function's locals carry a declaration-to-compiled-slot lifecycle:
// they start out addressed by a frontend-assigned raw id, some get
// eliminated as dead, and AssignLocalIDs compacts what's left into a
// dense range the encoder can address directly.
package ir

// UnitFlags are unit-wide compilation flags: strict-typing modes and
// preload priority.
type UnitFlags uint16

const (
	FlagStrictTypes UnitFlags = 1 << iota
	FlagStrictTypesForBuiltins
	FlagIsSystemlib
	FlagPreloadPriorityHigh
	FlagPreloadPriorityLow
)

// Has reports whether all bits of want are set in f.
func (f UnitFlags) Has(want UnitFlags) bool { return f&want == want }

// TypeAlias is a top-level type-alias declaration.
type TypeAlias struct {
	Name         string
	Value        string // textual representation of the aliased type
	Attributes   []string
	TypeStruct   []any // nested type-structure payload, opaque to this core
	CaseTypeVals []string
}

// Unit is the complete input to one emission.
type Unit struct {
	Classes     []*Class
	Functions   []*Function // top-level functions, excluding Pseudomain
	Pseudomain  *Function
	TypeAliases []*TypeAlias

	Filename    string
	ContentHash [20]byte // a content-addressed hash of the source this unit was compiled from
	Flags       UnitFlags
}
