package ir

import "github.com/mna/calyx/lang/opcode"

// NoParentClass is the sentinel parent-class name for a class with no
// parent.
const NoParentClass = ""

// ClassConstant is one class-constant declaration: a constant with no
// value is abstract, otherwise it carries a value and its source text.
type ClassConstant struct {
	Name           string
	HasValue       bool
	Value          string // source text of the constant's value expression
	TypeConstraint string
	IsTypeConstant bool
	IsAbstract     bool // true when HasValue is false

	// IsUninitTyped marks a constant whose value is the `Uninit` type
	// sentinel; if any constant on the class has this set, the 86cinit
	// initializer method must be preserved.
	IsUninitTyped bool
}

// PropertyKind classifies a property's visibility/storage, used to pick
// which Index lookup resolves its inferred type: private properties
// resolve through the private-props or private-statics map, public
// static properties through a direct Index lookup, and public instance
// properties stay unknown.
type PropertyKind uint8

const (
	PropPublicInstance PropertyKind = iota
	PropPrivateInstance
	PropPublicStatic
	PropPrivateStatic
)

// Property is one class property declaration.
type Property struct {
	Name         string
	Kind         PropertyKind
	DefaultValue string // source text of the default value expression

	// InferredType is RATBottom ("unknown") unless set by the IR's
	// producer. The unit driver neither reads nor writes it: it resolves
	// the inferred type from the Index into sink.PropertyMeta instead.
	InferredType opcode.RepoAuthType

	// ClosureUseVarIndex is >= 0 for a closure's leading use-var
	// properties, identifying which captured variable (in Index
	// declaration order) this property mirrors.
	ClosureUseVarIndex int
}

// TraitPrecedenceRule resolves a method-name conflict between two used
// traits in favor of one of them.
type TraitPrecedenceRule struct {
	Method        string
	SelectedTrait string
	OtherTraits   []string
}

// TraitAliasRule renames (and optionally re-visibilities) a trait method
// when it is imported into the class.
type TraitAliasRule struct {
	Trait      string
	Method     string
	Alias      string
	Visibility string
}

// ClassFlags classify a class's runtime shape.
type ClassFlags uint16

const (
	ClassIsAbstract ClassFlags = 1 << iota
	ClassIsFinal
	ClassIsInterface
	ClassIsTrait
	ClassIsEnum
	ClassIsClosureProducing
)

func (f ClassFlags) Has(want ClassFlags) bool { return f&want == want }

// Class is the compiled unit of one class declaration.
type Class struct {
	Name       string
	Parent     string // NoParentClass if none
	Attributes []string
	DocComment string
	Flags      ClassFlags

	Interfaces        []string
	UsedTraits        []string
	Requirements      []string
	TraitPrecedence   []TraitPrecedenceRule
	TraitAlias        []TraitAliasRule
	DeclaredMethodCnt int

	Constants  []ClassConstant
	Properties []Property
	Methods    []*Function

	Source *SourceInfo
}
