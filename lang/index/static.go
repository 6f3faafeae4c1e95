package index

import (
	"strconv"

	"github.com/dolthub/swiss"

	"github.com/mna/calyx/lang/opcode"
)

// StaticIndex is a deterministic, in-memory Index, useful for tests and
// for the CLI's "emit" command when no real typed-analysis pass is
// available. Per-class and per-function facts are registered explicitly
// before use; anything not registered resolves to the zero value
// (a bottom RepoAuthType, an empty PropMap, slot -1).
//
// The array-literal interning table is backed by swiss.Map: an
// append-mostly, lookup-heavy table is exactly the shape a SwissTable
// hash map is built for, and it keeps lookup cost flat as a unit's
// array-literal count grows.
type StaticIndex struct {
	returnTypes   map[string]opcode.RepoAuthType
	awaitedTypes  map[string]opcode.RepoAuthType
	vtableSlots   map[string]int
	closureVars   map[string][]opcode.RepoAuthType
	privateProps  map[string]PropMap
	privateStatic map[string]PropMap
	publicStatic  map[string]PropMap
	arrayTable    *staticArrayTableBuilder
}

// NewStaticIndex returns an empty StaticIndex ready for registration.
func NewStaticIndex() *StaticIndex {
	return &StaticIndex{
		returnTypes:   make(map[string]opcode.RepoAuthType),
		awaitedTypes:  make(map[string]opcode.RepoAuthType),
		vtableSlots:   make(map[string]int),
		closureVars:   make(map[string][]opcode.RepoAuthType),
		privateProps:  make(map[string]PropMap),
		privateStatic: make(map[string]PropMap),
		publicStatic:  make(map[string]PropMap),
		arrayTable:    newStaticArrayTableBuilder(),
	}
}

var _ Index = (*StaticIndex)(nil)

// SetReturnType registers the inferred return type of funcName.
func (idx *StaticIndex) SetReturnType(funcName string, rat opcode.RepoAuthType) {
	idx.returnTypes[funcName] = rat
}

// SetAwaitedType registers the type awaited by a specialized wait-handle
// return type of funcName.
func (idx *StaticIndex) SetAwaitedType(funcName string, rat opcode.RepoAuthType) {
	idx.awaitedTypes[funcName] = rat
}

// SetIfaceVTableSlot registers the interface vtable slot of className.
func (idx *StaticIndex) SetIfaceVTableSlot(className string, slot int) {
	idx.vtableSlots[className] = slot
}

// SetClosureUseVars registers the captured-variable types of funcName, in
// declaration order.
func (idx *StaticIndex) SetClosureUseVars(funcName string, vars []opcode.RepoAuthType) {
	idx.closureVars[funcName] = vars
}

// SetPrivateProps registers the private instance property types of
// className.
func (idx *StaticIndex) SetPrivateProps(className string, props PropMap) {
	idx.privateProps[className] = props
}

// SetPrivateStatics registers the private static property types of
// className.
func (idx *StaticIndex) SetPrivateStatics(className string, props PropMap) {
	idx.privateStatic[className] = props
}

// SetPublicStatic registers the inferred type of a single public static
// property.
func (idx *StaticIndex) SetPublicStatic(className, propName string, rat opcode.RepoAuthType) {
	m, ok := idx.publicStatic[className]
	if !ok {
		m = make(PropMap)
		idx.publicStatic[className] = m
	}
	m[propName] = rat
}

func (idx *StaticIndex) LookupReturnType(funcName string) opcode.RepoAuthType {
	return idx.returnTypes[funcName]
}

func (idx *StaticIndex) LookupAwaitedType(funcName string) (opcode.RepoAuthType, bool) {
	rat, ok := idx.awaitedTypes[funcName]
	return rat, ok
}

func (idx *StaticIndex) ArrayTableBuilder() ArrayTableBuilder { return idx.arrayTable }

func (idx *StaticIndex) LookupIfaceVTableSlot(className string) int {
	if slot, ok := idx.vtableSlots[className]; ok {
		return slot
	}
	return -1
}

func (idx *StaticIndex) LookupClosureUseVars(funcName string) []opcode.RepoAuthType {
	return idx.closureVars[funcName]
}

func (idx *StaticIndex) LookupPrivateProps(className string) PropMap {
	return idx.privateProps[className]
}

func (idx *StaticIndex) LookupPrivateStatics(className string) PropMap {
	return idx.privateStatic[className]
}

func (idx *StaticIndex) LookupPublicStatic(className, propName string) opcode.RepoAuthType {
	return idx.publicStatic[className][propName]
}

// staticArrayTableBuilder interns array literals by their formatted
// content, keyed in a swiss.Map for O(1) amortized lookup.
type staticArrayTableBuilder struct {
	m      *swiss.Map[string, int32]
	byID   []string
	nextID int32
}

func newStaticArrayTableBuilder() *staticArrayTableBuilder {
	return &staticArrayTableBuilder{m: swiss.NewMap[string, int32](8)}
}

func (b *staticArrayTableBuilder) Merge(elems []any) int32 {
	key := formatArrayKey(elems)
	if id, ok := b.m.Get(key); ok {
		return id
	}
	id := b.nextID
	b.nextID++
	b.m.Put(key, id)
	b.byID = append(b.byID, key)
	return id
}

func formatArrayKey(elems []any) string {
	// A simple, deterministic content key: good enough for test/CLI use,
	// where arrays are small and this is never on a hot path.
	buf := make([]byte, 0, 16*len(elems))
	for _, e := range elems {
		buf = append(buf, []byte(formatElem(e))...)
		buf = append(buf, 0)
	}
	return string(buf)
}

func formatElem(e any) string {
	switch v := e.(type) {
	case string:
		return "s:" + v
	case int64:
		return "i:" + strconv.FormatInt(v, 10)
	case float64:
		return "f:" + strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(v)
	case nil:
		return "n:"
	default:
		return "?:"
	}
}
