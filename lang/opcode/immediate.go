package opcode

// BlockID identifies a block within a single function, stable and dense
// over [0, numBlocks).
type BlockID uint32

// IterKind distinguishes the runtime shape of an iterator recorded in an
// ImmIterTab immediate.
type IterKind uint8

const (
	IterKindValue IterKind = iota
	IterKindKeyValue
)

// IterEntry is one (kind, id) pair of an ImmIterTab immediate.
type IterEntry struct {
	Kind IterKind
	ID   uint32
}

// SSwitchCase is one (string, target) pair of an ImmSSwitchTab immediate.
// The last entry of the owning table is always the default case and its
// Str field is ignored on encoding.
type SSwitchCase struct {
	Str    string
	Target BlockID
}

// MemberKeyTag discriminates the variant payload of an ImmMemberKey
// immediate.
type MemberKeyTag uint8

const (
	MKElemCellOnStack MemberKeyTag = iota // element key, value already pushed on the operand stack
	MKElemLocal                           // element key, value is a local
	MKPropLocal                           // property key, name is a local
	MKPropString                          // property key, name is an interned string literal
	MKElemInt                             // element key, a fixed integer literal
	MKNewElem                             // append-new-element key ("$x[] = ..."), no payload
)

// MemberKey is a base/member access key that may reference the stack, a
// local, or a literal.
type MemberKey struct {
	Tag   MemberKeyTag
	Local uint32 // valid for MKElemLocal, MKPropLocal (raw id, remapped via map_local at encode time)
	Str   string // valid for MKPropString (interned at encode time)
	Int   int64  // valid for MKElemInt
}

// stackOperands returns how many extra operand-stack slots (beyond the
// base) this member key consumes, used by StackEffect for QueryM.
func (mk MemberKey) stackOperands() int {
	if mk.Tag == MKElemCellOnStack {
		return 1
	}
	return 0
}

// LocalRange is the ImmLocalRange immediate: a first local id and a
// count, asserted contiguous after local-id mapping.
type LocalRange struct {
	First uint32
	Count uint32
}

// Immediate holds the decoded operand for any opcode. Only the field(s)
// relevant to the opcode's Schema.Imm kind are meaningful; the rest are
// zero. This mirrors a tagged union without requiring a type switch at
// every use site, at the cost of wasted space — acceptable here since
// Immediate values are transient (never persisted; the encoder consumes
// them and writes bytes to the sink).
type Immediate struct {
	UInt       uint32
	Int64      int64
	Double     float64
	Str        string
	Arr        []any // array-literal elements, interned at encode time
	RAT        RepoAuthType
	Local      uint32
	Iter       uint32
	ClsRef     uint32
	SubOp      byte
	Branch     BlockID
	BranchTab  []BlockID
	SSwitchTab []SSwitchCase
	IterTab    []IterEntry
	KeyVec     []string
	LocalRange LocalRange
	MemberKey  MemberKey
}

// RepoAuthType is a compact typed description attached to a location for
// use by a profile-guided AOT runtime. calyx models it as a small tagged
// struct: a primitive-type tag, an optional class name (meaningful only
// for RATClass), and a nullable flag — enough to round-trip through
// type-merging and the ImmRAT encoding.
type RepoAuthType struct {
	Kind     RATKind
	ClsName  string // valid when Kind == RATClass
	Nullable bool
}

// RATKind is the primitive shape of a RepoAuthType.
type RATKind uint8

const (
	RATBottom RATKind = iota // no useful type information (equivalent to "absent")
	RATCell                  // unconstrained
	RATInt
	RATDouble
	RATBool
	RATString
	RATArray
	RATClass   // an object of (a subtype of) ClsName
	RATVoid
	RATWaitH // a specialized wait-handle; its awaited inner type is tracked alongside, not inside this value
)

// IsBottom reports whether r carries no useful type information.
func (r RepoAuthType) IsBottom() bool { return r.Kind == RATBottom }
