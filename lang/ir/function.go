package ir

import (
	"math"

	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/token"
)

// KilledLocalID is the sentinel id assigned to a killed local; it must
// never appear in an emitted instruction. Local indices are uint32
// throughout this package, so the sentinel is math.MaxUint32.
const KilledLocalID = math.MaxUint32

// Local is one entry of a function's locals vector: an id, an optional
// name, and a killed flag. ID is assigned post-DCE by the unit driver,
// via AssignLocalIDs; before that call it is zero and must not be read.
type Local struct {
	Name   string // empty for a compiler-introduced temporary
	Killed bool
	ID     uint32
}

// Param is one entry of a function's parameter list.
type Param struct {
	Name           string
	DefaultEntry   *BlockID // nil if the parameter has no default-value initializer block
	TypeConstraint string
	UserType       string
	DefaultExpr    string // textual representation of the default expression, for reflection/metadata
	Attributes     []string
	ByRef          bool
	Variadic       bool
	BuiltinType    opcode.RATKind
}

// StaticLocal is one `static` local variable declaration inside a
// function.
type StaticLocal struct {
	Name        string
	LocalID     uint32
	InitExpr    string
	InitValueID int32 // interned literal id of the initial value, if statically known
}

// FunctionFlags classify a function's runtime shape.
type FunctionFlags uint16

const (
	FlagClosureBody FunctionFlags = 1 << iota
	FlagAsync
	FlagGenerator
	FlagPairGenerator
	FlagMemoizeWrapper
	FlagTopLevel
)

func (f FunctionFlags) Has(want FunctionFlags) bool { return f&want == want }

// SourceInfo records the original-source position metadata for a
// function.
type SourceInfo struct {
	Filename  string
	DefPos    token.Position
	DocBlock  string
	Positions []token.Position // indexed by Instruction.SrcLoc
}

// Position resolves an instruction's SrcLoc index to a Position. A
// negative or out-of-range index means "unknown" (zero Position).
func (s *SourceInfo) Position(srcLoc int) token.Position {
	if s == nil || srcLoc < 0 || srcLoc >= len(s.Positions) {
		return token.Position{}
	}
	return s.Positions[srcLoc]
}

// Intern appends pos to the positions table and returns its index, for
// use as an Instruction's SrcLoc.
func (s *SourceInfo) Intern(pos token.Position) int {
	s.Positions = append(s.Positions, pos)
	return len(s.Positions) - 1
}

// NativeInfo describes a function implemented natively (outside the
// bytecode ISA) rather than compiled from source.
type NativeInfo struct {
	Impl        string // symbol name of the native implementation
	SignatureID int32
}

// Function is the compiled unit of one function, method, or the
// pseudomain entry point.
type Function struct {
	Name   string
	Locals []*Local
	Params []*Param

	StaticLocals   []*StaticLocal
	Blocks         map[BlockID]*Block
	EntryBlock     BlockID
	NumIters       int
	NumClsRefSlots int

	Source *SourceInfo
	Native *NativeInfo // nil unless the function is natively implemented
	Flags  FunctionFlags

	// ReturnUserType is the textual user-declared return type, carried
	// through to metadata regardless of what the Index infers.
	ReturnUserType string
	Attributes     []string
	OrigFilename   string
}

// NumLocals returns the number of entries in Locals.
func (fn *Function) NumLocals() int { return len(fn.Locals) }

// AssignLocalIDs compacts out killed locals and assigns each surviving
// local a dense, post-DCE id; killed locals get KilledLocalID. This must
// run exactly once, before emission begins.
func (fn *Function) AssignLocalIDs() {
	var next uint32
	for _, l := range fn.Locals {
		if l.Killed {
			l.ID = KilledLocalID
			continue
		}
		l.ID = next
		next++
	}
}

// MapLocal rewrites a raw (pre-compaction) local index through the id
// assigned by AssignLocalIDs. Callers must map exactly once per raw
// reference emitted into an instruction.
func (fn *Function) MapLocal(rawID uint32) uint32 {
	return fn.Locals[rawID].ID
}
