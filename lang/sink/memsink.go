package sink

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dolthub/swiss"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/token"
)

// MemSink is an in-memory UnitEmitter, the default sink used by the CLI
// and by tests that exercise the emission pipeline end to end. It holds
// one growable byte buffer per function (functions never interleave
// their byte streams, so BCPos is always relative to the function
// currently being emitted) plus shared unit-level interning tables.
type MemSink struct {
	filename    string
	contentHash [20]byte
	caps        map[Capability]bool

	litstrs *swiss.Map[string, int32]
	litstrByID []string

	arrays *swiss.Map[string, int32]
	arrayByID []string

	main      *memFuncEmitter
	funcs     []*memFuncEmitter
	methods   []*memFuncEmitter
	preclasses []*memPreClassEmitter

	typeAliases        []*ir.TypeAlias
	mergeableTypeAlias []string

	mergeOnly  bool
	mainReturn int64
	returnSeen bool

	// cur points at the emitter currently receiving EmitOp/EmitByte/...
	// calls; the unit driver always finishes one function's bytes before
	// starting the next, so a single cursor is enough.
	cur *memFuncEmitter
}

// NewMemSink returns an empty MemSink ready to receive one unit's worth
// of emission.
func NewMemSink() *MemSink {
	return &MemSink{
		caps:    make(map[Capability]bool),
		litstrs: swiss.NewMap[string, int32](16),
		arrays:  swiss.NewMap[string, int32](16),
	}
}

var _ UnitEmitter = (*MemSink)(nil)

func (s *MemSink) SetFilename(name string)          { s.filename = name }
func (s *MemSink) SetContentHash(hash [20]byte)     { s.contentHash = hash }
func (s *MemSink) SetCapability(c Capability, on bool) { s.caps[c] = on }
func (s *MemSink) HasCapability(c Capability) bool  { return s.caps[c] }

func (s *MemSink) BCPos() Offset { return s.cur.bcPos() }

func (s *MemSink) EmitOp(op opcode.Opcode)   { s.cur.emitByte(byte(op)) }
func (s *MemSink) EmitByte(b byte)           { s.cur.emitByte(b) }
func (s *MemSink) EmitIVA(v uint32)          { s.cur.buf = opcode.AppendIVA(s.cur.buf, v) }
func (s *MemSink) EmitInt32(v int32)         { s.cur.buf = opcode.AppendInt32(s.cur.buf, v) }
func (s *MemSink) EmitInt64(v int64)         { s.cur.buf = opcode.AppendUint64(s.cur.buf, uint64(v)) }
func (s *MemSink) EmitDouble(v float64)      { s.cur.buf = opcode.AppendUint64(s.cur.buf, math.Float64bits(v)) }

func (s *MemSink) PatchInt32(at Offset, v int32) {
	opcode.PutInt32(s.cur.buf, int(at), v)
}

func (s *MemSink) MergeLitstr(str string) int32 {
	if id, ok := s.litstrs.Get(str); ok {
		return id
	}
	id := int32(len(s.litstrByID))
	s.litstrs.Put(str, id)
	s.litstrByID = append(s.litstrByID, str)
	return id
}

func (s *MemSink) MergeArray(elems []any) int32 {
	key := formatArrayElems(elems)
	if id, ok := s.arrays.Get(key); ok {
		return id
	}
	id := int32(len(s.arrayByID))
	s.arrays.Put(key, id)
	s.arrayByID = append(s.arrayByID, key)
	return id
}

func (s *MemSink) RecordSourceLocation(pos token.Position, start, past Offset) {
	s.cur.srclocs = append(s.cur.srclocs, srcLocEntry{pos, start, past})
}

func (s *MemSink) NewFuncEmitter(name string) FuncEmitter {
	fe := newMemFuncEmitter(name)
	s.funcs = append(s.funcs, fe)
	s.cur = fe
	return fe
}

func (s *MemSink) NewMethodEmitter(class, name string) FuncEmitter {
	fe := newMemFuncEmitter(class + "::" + name)
	s.methods = append(s.methods, fe)
	s.cur = fe
	return fe
}

func (s *MemSink) NewPreClassEmitter(name string) PreClassEmitter {
	pce := newMemPreClassEmitter(name)
	s.preclasses = append(s.preclasses, pce)
	return pce
}

func (s *MemSink) AddTypeAlias(ta *ir.TypeAlias) {
	s.typeAliases = append(s.typeAliases, ta)
}

func (s *MemSink) PushMergeableTypeAlias(name string) {
	s.mergeableTypeAlias = append(s.mergeableTypeAlias, name)
}

func (s *MemSink) GetMain() FuncEmitter {
	if s.main == nil {
		s.InitMain()
	}
	return s.main
}

func (s *MemSink) InitMain() {
	s.main = newMemFuncEmitter("")
	s.cur = s.main
}

func (s *MemSink) PreClass(id int) PreClassEmitter { return s.preclasses[id] }

func (s *MemSink) SetMergeOnly(v bool)   { s.mergeOnly = v }
func (s *MemSink) SetMainReturn(v int64) { s.mainReturn = v }
func (s *MemSink) SetReturnSeen(v bool)  { s.returnSeen = v }

func formatArrayElems(elems []any) string {
	buf := make([]byte, 0, 16*len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			buf = append(buf, "s:"+v...)
		case int64:
			buf = append(buf, "i:"+strconv.FormatInt(v, 10)...)
		case float64:
			buf = append(buf, "f:"+strconv.FormatFloat(v, 'g', -1, 64)...)
		case bool:
			buf = append(buf, "b:"+strconv.FormatBool(v)...)
		case nil:
			buf = append(buf, "n:"...)
		default:
			buf = append(buf, fmt.Sprintf("?:%v", v)...)
		}
		buf = append(buf, 0)
	}
	return string(buf)
}

type srcLocEntry struct {
	pos   token.Position
	start Offset
	past  Offset
}
