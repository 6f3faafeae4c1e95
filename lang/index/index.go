// Package index defines the read-only "Index" oracle that the unit
// driver consults for typed-analysis facts the IR itself does not
// carry: inferred return types, closure captures, private property
// types, and interface vtable slots.
//
// A full type-inference engine is a separate system; this package
// defines only the contract plus a small deterministic implementation
// (StaticIndex) useful for tests and the CLI, modeled as a set of
// oracle-style lookup callbacks over data registered ahead of time.
package index

import "github.com/mna/calyx/lang/opcode"

// PropMap maps a property name to its inferred repo-auth-type.
type PropMap map[string]opcode.RepoAuthType

// ArrayTableBuilder interns array literal values into a shared table,
// returning a stable id that the repo-auth-type for "array" values may
// reference.
type ArrayTableBuilder interface {
	Merge(elems []any) int32
}

// Index is the read-only oracle consulted during per-function and
// per-class metadata finalization. It is safe for concurrent queries
// across unit-level invocations.
type Index interface {
	// LookupReturnType returns the inferred return type of the named
	// function, or a bottom RepoAuthType if nothing could be inferred.
	LookupReturnType(funcName string) opcode.RepoAuthType

	// LookupAwaitedType returns the type awaited by a specialized
	// wait-handle return type (valid only when LookupReturnType returned a
	// RepoAuthType with Kind == opcode.RATWaitH).
	LookupAwaitedType(funcName string) (opcode.RepoAuthType, bool)

	// ArrayTableBuilder returns the shared array-literal interning table.
	ArrayTableBuilder() ArrayTableBuilder

	// LookupIfaceVTableSlot returns the interface vtable slot assigned to
	// the named class, or -1 if none.
	LookupIfaceVTableSlot(className string) int

	// LookupClosureUseVars returns, in declaration order, the types of the
	// free variables captured by the named closure function.
	LookupClosureUseVars(funcName string) []opcode.RepoAuthType

	// LookupPrivateProps returns the inferred types of the named class's
	// private instance properties.
	LookupPrivateProps(className string) PropMap

	// LookupPrivateStatics returns the inferred types of the named class's
	// private static properties.
	LookupPrivateStatics(className string) PropMap

	// LookupPublicStatic returns the inferred type of a named class's
	// public static property.
	LookupPublicStatic(className, propName string) opcode.RepoAuthType
}
