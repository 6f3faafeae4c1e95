package sink

import (
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/token"
)

// memPreClassEmitter is the in-memory PreClassEmitter backing MemSink.
type memPreClassEmitter struct {
	name string

	sourceLoc  token.Position
	attrs      []string
	parent     string
	docComment string
	userAttrs  []string
	flags      ir.ClassFlags

	interfaces      []string
	usedTraits      []string
	requirements    []string
	traitPrecedence []ir.TraitPrecedenceRule
	traitAlias      []ir.TraitAliasRule
	declaredMethods int
	vtableSlot      int

	constants   []ir.ClassConstant
	properties  []PropertyMeta
	methodNames []string

	defClsOff Offset
	finished  bool
}

func newMemPreClassEmitter(name string) *memPreClassEmitter {
	return &memPreClassEmitter{name: name, parent: ir.NoParentClass, vtableSlot: -1}
}

var _ PreClassEmitter = (*memPreClassEmitter)(nil)

func (pce *memPreClassEmitter) SetSourceLoc(pos token.Position) { pce.sourceLoc = pos }
func (pce *memPreClassEmitter) SetAttributes(attrs []string)    { pce.attrs = attrs }
func (pce *memPreClassEmitter) SetParentName(name string)       { pce.parent = name }
func (pce *memPreClassEmitter) SetDocComment(doc string)        { pce.docComment = doc }
func (pce *memPreClassEmitter) SetUserAttributes(attrs []string) { pce.userAttrs = attrs }
func (pce *memPreClassEmitter) SetFlags(flags ir.ClassFlags)    { pce.flags = flags }

func (pce *memPreClassEmitter) AddInterface(name string)   { pce.interfaces = append(pce.interfaces, name) }
func (pce *memPreClassEmitter) AddUsedTrait(name string)    { pce.usedTraits = append(pce.usedTraits, name) }
func (pce *memPreClassEmitter) AddRequirement(name string)  { pce.requirements = append(pce.requirements, name) }

func (pce *memPreClassEmitter) AddTraitPrecedence(r ir.TraitPrecedenceRule) {
	pce.traitPrecedence = append(pce.traitPrecedence, r)
}

func (pce *memPreClassEmitter) AddTraitAlias(r ir.TraitAliasRule) {
	pce.traitAlias = append(pce.traitAlias, r)
}

func (pce *memPreClassEmitter) SetDeclaredMethodCount(n int) { pce.declaredMethods = n }
func (pce *memPreClassEmitter) SetIfaceVTableSlot(slot int)  { pce.vtableSlot = slot }

func (pce *memPreClassEmitter) AddConstant(c ir.ClassConstant) {
	pce.constants = append(pce.constants, c)
}

func (pce *memPreClassEmitter) AddProperty(p PropertyMeta) {
	pce.properties = append(pce.properties, p)
}

func (pce *memPreClassEmitter) AddMethodName(name string) {
	pce.methodNames = append(pce.methodNames, name)
}

func (pce *memPreClassEmitter) SetDefClsOffset(off Offset) { pce.defClsOff = off }

func (pce *memPreClassEmitter) Finish() { pce.finished = true }
