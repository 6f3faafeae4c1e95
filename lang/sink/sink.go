// Package sink defines the UnitEmitter contract: the opaque
// binary-assembly object that accumulates bytes and metadata for one
// unit. The unit driver is the sink's only caller; a concrete
// implementation (MemSink) is provided to exercise and test the pipeline
// end to end.
package sink

import (
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/token"
)

// Offset is a byte offset into the sink's bytecode stream.
type Offset = uint32

// Capability is a sink feature flag, used to isolate ABI oddities behind
// an explicit, named switch rather than scattering special cases through
// the driver.
type Capability uint8

const (
	// CapSystemlibMerge marks a sink that is emitting a systemlib unit: the
	// unit driver sets mergeOnly=true and a fixed pseudomain return value
	// instead of the ordinary returnSeen=true path.
	CapSystemlibMerge Capability = iota
)

// FPIEntry is a finished call-preparation (FPI) region table row: a
// triple of the opening fpush opcode's offset, the closing fcall opcode's
// offset, and the evaluation-stack depth at the fpush.
type FPIEntry struct {
	FPushOff  Offset
	FPIEndOff Offset
	FPDelta   int
}

// EHEntry is a finished exception-handler table row.
type EHEntry struct {
	Kind        ir.ExnKind
	Base        Offset
	Past        Offset
	Handler     Offset
	ParentIndex int // -1 for a root region
	IterID      uint32
	ItRef       bool
}

// ParamMeta is the metadata attached to one function parameter,
// including its default-value funclet offset when it has one.
type ParamMeta struct {
	Name           string
	TypeConstraint string
	UserType       string
	DefaultExpr    string
	Attributes     []string
	ByRef          bool
	Variadic       bool
	BuiltinType    opcode.RATKind
	HasFunclet     bool
	FuncletOff     Offset
}

// StaticLocalMeta mirrors ir.StaticLocal for sink consumption.
type StaticLocalMeta struct {
	Name        string
	LocalID     uint32
	InitExpr    string
	InitValueID int32
}

// FuncEmitter is the per-function metadata sink: field setters plus an
// addEHEnt / setFPITable / finish protocol.
type FuncEmitter interface {
	SetSourceLoc(pos token.Position)
	SetAttributes(attrs []string)
	SetTopLevel(isTop bool)
	SetDocComment(doc string)
	SetStartOffset(off Offset)

	SetParams(params []ParamMeta)
	SetStaticLocals(locals []StaticLocalMeta)
	SetNumIters(n int)
	SetNumClsRefSlots(n int)
	SetFlags(flags ir.FunctionFlags)
	SetReturnUserType(t string)
	SetOrigFilename(name string)
	SetMaxStackCells(n int)
	SetContainsCalls(v bool)

	SetFPITable(entries []FPIEntry)
	AddEHEnt(e EHEntry) int // returns the assigned index in this function's EH table

	SetReturnType(rat opcode.RepoAuthType)
	SetAwaitedReturnType(rat opcode.RepoAuthType)

	Finish(endOff Offset)
}

// PropertyMeta mirrors ir.Property for sink consumption.
type PropertyMeta struct {
	Name         string
	Kind         ir.PropertyKind
	DefaultValue string
	InferredType opcode.RepoAuthType
}

// PreClassEmitter is the per-class metadata sink.
type PreClassEmitter interface {
	SetSourceLoc(pos token.Position)
	SetAttributes(attrs []string)
	SetParentName(name string)
	SetDocComment(doc string)
	SetUserAttributes(attrs []string)
	SetFlags(flags ir.ClassFlags)

	AddInterface(name string)
	AddUsedTrait(name string)
	AddRequirement(name string)
	AddTraitPrecedence(r ir.TraitPrecedenceRule)
	AddTraitAlias(r ir.TraitAliasRule)
	SetDeclaredMethodCount(n int)
	SetIfaceVTableSlot(slot int)

	AddConstant(c ir.ClassConstant)
	AddProperty(p PropertyMeta)
	AddMethodName(name string)

	SetDefClsOffset(off Offset)

	Finish()
}

// UnitEmitter is the top-level sink contract.
type UnitEmitter interface {
	BCPos() Offset

	EmitOp(op opcode.Opcode)
	EmitByte(b byte)
	EmitIVA(v uint32)
	EmitInt32(v int32)
	EmitInt64(v int64)
	EmitDouble(v float64)
	PatchInt32(at Offset, v int32)

	MergeLitstr(s string) int32
	MergeArray(elems []any) int32

	RecordSourceLocation(pos token.Position, start, past Offset)

	NewFuncEmitter(name string) FuncEmitter
	NewMethodEmitter(class, name string) FuncEmitter
	NewPreClassEmitter(name string) PreClassEmitter

	AddTypeAlias(ta *ir.TypeAlias)
	PushMergeableTypeAlias(name string)

	GetMain() FuncEmitter
	InitMain()
	PreClass(id int) PreClassEmitter

	SetFilename(name string)
	SetContentHash(hash [20]byte)

	SetCapability(c Capability, on bool)
	HasCapability(c Capability) bool

	// SetMergeOnly and SetMainReturn implement the systemlib ABI wart:
	// systemlib units set mergeOnly=true and a fixed pseudomain return
	// value instead of the ordinary returnSeen=true path.
	SetMergeOnly(v bool)
	SetMainReturn(v int64)
	SetReturnSeen(v bool)
}
