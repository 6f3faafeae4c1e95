package sink

import (
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/token"
)

// memFuncEmitter is the in-memory FuncEmitter backing MemSink: a single
// growable byte buffer plus the function-level metadata fields a
// FuncEmitter setter writes into.
type memFuncEmitter struct {
	name string
	buf  []byte

	sourceLoc  token.Position
	attrs      []string
	topLevel   bool
	docComment string
	startOff   Offset
	endOff     Offset

	params       []ParamMeta
	staticLocals []StaticLocalMeta
	numIters     int
	numClsRefs   int
	flags        ir.FunctionFlags
	returnUser   string
	origFile     string
	maxStack     int
	containsCall bool

	fpiTable []FPIEntry
	ehTable  []EHEntry

	returnType   opcode.RepoAuthType
	awaitedType  opcode.RepoAuthType

	srclocs []srcLocEntry
}

func newMemFuncEmitter(name string) *memFuncEmitter {
	return &memFuncEmitter{name: name}
}

var _ FuncEmitter = (*memFuncEmitter)(nil)

func (fe *memFuncEmitter) bcPos() Offset      { return Offset(len(fe.buf)) }
func (fe *memFuncEmitter) emitByte(b byte)    { fe.buf = append(fe.buf, b) }

func (fe *memFuncEmitter) SetSourceLoc(pos token.Position) { fe.sourceLoc = pos }
func (fe *memFuncEmitter) SetAttributes(attrs []string)    { fe.attrs = attrs }
func (fe *memFuncEmitter) SetTopLevel(isTop bool)          { fe.topLevel = isTop }
func (fe *memFuncEmitter) SetDocComment(doc string)        { fe.docComment = doc }
func (fe *memFuncEmitter) SetStartOffset(off Offset)       { fe.startOff = off }

func (fe *memFuncEmitter) SetParams(params []ParamMeta)             { fe.params = params }
func (fe *memFuncEmitter) SetStaticLocals(locals []StaticLocalMeta) { fe.staticLocals = locals }
func (fe *memFuncEmitter) SetNumIters(n int)                        { fe.numIters = n }
func (fe *memFuncEmitter) SetNumClsRefSlots(n int)                  { fe.numClsRefs = n }
func (fe *memFuncEmitter) SetFlags(flags ir.FunctionFlags)          { fe.flags = flags }
func (fe *memFuncEmitter) SetReturnUserType(t string)               { fe.returnUser = t }
func (fe *memFuncEmitter) SetOrigFilename(name string)              { fe.origFile = name }
func (fe *memFuncEmitter) SetMaxStackCells(n int)                   { fe.maxStack = n }
func (fe *memFuncEmitter) SetContainsCalls(v bool)                  { fe.containsCall = v }

func (fe *memFuncEmitter) SetFPITable(entries []FPIEntry) { fe.fpiTable = entries }

func (fe *memFuncEmitter) AddEHEnt(e EHEntry) int {
	fe.ehTable = append(fe.ehTable, e)
	return len(fe.ehTable) - 1
}

func (fe *memFuncEmitter) SetReturnType(rat opcode.RepoAuthType)         { fe.returnType = rat }
func (fe *memFuncEmitter) SetAwaitedReturnType(rat opcode.RepoAuthType) { fe.awaitedType = rat }

func (fe *memFuncEmitter) Finish(endOff Offset) { fe.endOff = endOff }
