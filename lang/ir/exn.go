package ir

// ExnKind discriminates the two kinds of exception-handling node: a
// catch handler or a fault (cleanup) handler.
type ExnKind uint8

const (
	ExnCatch ExnKind = iota
	ExnFault
)

// ExnNode is a node in the exception-node tree. Root children are at
// Depth 1, equal to path length. The tree is acyclic and rooted in nil.
type ExnNode struct {
	Parent *ExnNode
	Depth  int
	Kind   ExnKind

	// CatchEntry is the catch-handler entry block, valid when Kind ==
	// ExnCatch.
	CatchEntry BlockID
	// FaultEntry is the fault-handler entry block, valid when Kind ==
	// ExnFault.
	FaultEntry BlockID

	IterID uint32
	ItRef  bool
}

// NewChildExnNode builds a new node whose parent is n (which may be
// nil, making the new node a root child at depth 1).
func NewChildExnNode(parent *ExnNode, kind ExnKind) *ExnNode {
	depth := 1
	if parent != nil {
		depth = parent.Depth + 1
	}
	return &ExnNode{Parent: parent, Depth: depth, Kind: kind}
}

// EntryBlock returns the node's handler entry block, regardless of kind.
func (n *ExnNode) EntryBlock() BlockID {
	if n.Kind == ExnCatch {
		return n.CatchEntry
	}
	return n.FaultEntry
}

// Path returns the root-to-node list of ancestors ending at n itself.
func (n *ExnNode) Path() []*ExnNode {
	if n == nil {
		return nil
	}
	path := make([]*ExnNode, n.Depth)
	cur := n
	for i := n.Depth - 1; i >= 0; i-- {
		path[i] = cur
		cur = cur.Parent
	}
	return path
}

// HandleEquivalent reports whether a and b produce the same runtime
// handler dispatch along their ancestor chain: both nil is true;
// differing depths or exactly one nil is false; otherwise their
// entry-block ids must match at every ancestor step until both become
// nil.
func HandleEquivalent(a, b *ExnNode) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Depth != b.Depth {
		return false
	}
	for a != nil && b != nil {
		if a.EntryBlock() != b.EntryBlock() || a.Kind != b.Kind {
			return false
		}
		a, b = a.Parent, b.Parent
	}
	return a == nil && b == nil
}

// CommonParentExnNode ascends the deeper node until depths match, then
// simultaneously ascends both until they are handle-equivalent.
func CommonParentExnNode(a, b *ExnNode) *ExnNode {
	for a != nil && b != nil && a.Depth > b.Depth {
		a = a.Parent
	}
	for a != nil && b != nil && b.Depth > a.Depth {
		b = b.Parent
	}
	for a != nil && b != nil && !HandleEquivalent(a, b) {
		a = a.Parent
		b = b.Parent
	}
	if a != nil && b != nil {
		return a
	}
	return nil
}

// SharedPrefixLength returns the length of the longest common prefix of
// two root-to-node paths, used by the EH-tree flattener.
func SharedPrefixLength(a, b []*ExnNode) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && HandleEquivalent(a[i], b[i]) {
		i++
	}
	return i
}
