package tcpoosc

import "fmt"

// NodeHandle addresses a Node inside a NodeArena. The zero value,
// NilHandle, means "no value" — the arena/handle re-expression (§9)
// of the source's "a null payload is legal and means no value."
type NodeHandle int

const NilHandle NodeHandle = 0

// NodeKind tags what a Node holds; every AST node carries one of
// these (§3's "every AST node carries a type_name pointer identity
// comparable against fixed constants" — here a small int compares
// just as cheaply and just as uniquely).
type NodeKind int

const (
	NodeInvalid NodeKind = iota
	NodeIdent
	NodeChar
	NodeString
	NodeInteger
	NodeTree
)

func (k NodeKind) String() string {
	switch k {
	case NodeIdent:
		return "ident"
	case NodeChar:
		return "char"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeTree:
		return "tree"
	default:
		return "invalid"
	}
}

// ListTreeName is the sentinel tree name used for homogeneous
// sequences (§3's "list tree"); the unparser special-cases it.
const ListTreeName = "list"

// Node is a single arena-resident AST node. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Node struct {
	Kind NodeKind
	Pos  Location

	Ident *Ident // NodeIdent
	Char  byte   // NodeChar

	Str []byte // NodeString: owned bytes, NUL-terminated, length = len(Str)-1

	Int int64 // NodeInteger

	TreeName   string       // NodeTree
	TreeFormat string       // NodeTree: unparser format string
	Children   []NodeHandle // NodeTree
}

// NodeArena owns every AST node produced during a parse or by the
// task transformation. It is the preferred re-expression (§9) of the
// source's pervasive reference counting: nodes are appended
// contiguously, a Watermark is a cheap save point, and ReleaseTo
// truncates the arena back to a watermark in one step instead of
// decrementing reference counts one node at a time. This also makes
// the "AST is a DAG in principle" invariant trivial to satisfy: any
// node may appear as a child of more than one tree simply by
// repeating its handle, since handles are never individually freed.
type NodeArena struct {
	nodes []Node
}

// NewNodeArena returns an arena with NilHandle already reserved at
// index 0.
func NewNodeArena() *NodeArena {
	return &NodeArena{nodes: make([]Node, 1, 256)}
}

// Watermark returns a save point usable with ReleaseTo.
func (a *NodeArena) Watermark() NodeHandle {
	return NodeHandle(len(a.nodes))
}

// ReleaseTo discards every node allocated since wm. It is called when
// a rule alternative back-tracks: every node it spoke for becomes
// unreachable at once, which is the arena-equivalent of "a result
// cell's decrement drops exactly one reference and, on zero, invokes
// the payload's release hook" (§3 Invariants) applied in bulk.
func (a *NodeArena) ReleaseTo(wm NodeHandle) {
	if int(wm) < len(a.nodes) {
		a.nodes = a.nodes[:wm]
	}
}

func (a *NodeArena) alloc(n Node) NodeHandle {
	h := NodeHandle(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return h
}

// Get returns the node addressed by h. It panics with an
// ErrCastFailure-flavored message if h is out of range, which can
// only happen from a programming error (an arena from a different
// parse being indexed), matching §7's "cast failure ... is a
// programming-error category."
func (a *NodeArena) Get(h NodeHandle) *Node {
	if int(h) <= 0 || int(h) >= len(a.nodes) {
		panic(&CompileError{Kind: ErrCastFailure, Message: fmt.Sprintf("invalid node handle %d", h)})
	}
	return &a.nodes[h]
}

// IsNil reports whether h is the "no value" handle.
func (a *NodeArena) IsNil(h NodeHandle) bool { return h == NilHandle }

func (a *NodeArena) NewIdent(id *Ident, pos Location) NodeHandle {
	return a.alloc(Node{Kind: NodeIdent, Ident: id, Pos: pos})
}

func (a *NodeArena) NewChar(c byte, pos Location) NodeHandle {
	return a.alloc(Node{Kind: NodeChar, Char: c, Pos: pos})
}

func (a *NodeArena) NewString(owned []byte, pos Location) NodeHandle {
	return a.alloc(Node{Kind: NodeString, Str: owned, Pos: pos})
}

func (a *NodeArena) NewInteger(v int64, pos Location) NodeHandle {
	return a.alloc(Node{Kind: NodeInteger, Int: v, Pos: pos})
}

func (a *NodeArena) NewTree(name, format string, children []NodeHandle, pos Location) NodeHandle {
	return a.alloc(Node{Kind: NodeTree, TreeName: name, TreeFormat: format, Children: children, Pos: pos})
}

func (a *NodeArena) NewListTree(children []NodeHandle, pos Location) NodeHandle {
	return a.NewTree(ListTreeName, "", children, pos)
}

// NewListTreeSep is NewListTree with an explicit per-item separator;
// the unparser prints sep as literal text between consecutive
// children instead of relying solely on alphanumeric-adjacency
// spacing (needed for e.g. comma-joined lists and statement
// sequences).
func (a *NodeArena) NewListTreeSep(children []NodeHandle, pos Location, sep string) NodeHandle {
	return a.NewTree(ListTreeName, sep, children, pos)
}

// IsListTree reports whether h addresses a list tree.
func (a *NodeArena) IsListTree(h NodeHandle) bool {
	if a.IsNil(h) {
		return false
	}
	n := a.Get(h)
	return n.Kind == NodeTree && n.TreeName == ListTreeName
}

// ---- prev-child list ----
//
// consCell is the reverse-linked "previous child" list of §3/§9: each
// node owns one child handle and a pointer to the previous cell.
// Several rule attempts active at once (one per back-track branch)
// may share a common prefix of this list, which is exactly why it is
// an immutable cons-list rather than a mutable slice: appending to a
// shared slice could silently corrupt a sibling branch's view of its
// own accumulator.
type consCell struct {
	head NodeHandle
	tail *consCell
}

var consPool = newFreeList(func() *consCell { return &consCell{} })

// resultList is a handle to the head of a (possibly shared,
// possibly nil) cons-list, plus its length so callers can
// pre-size the slice it reverses into.
type resultList struct {
	head *consCell
	len  int
}

// emptyResultList is the seed every rule starts from.
func emptyResultList() resultList { return resultList{} }

// push returns a new resultList with h prepended; l itself is left
// untouched; so a failed branch can simply drop the returned value
// while its sibling keeps consuming l.
func (l resultList) push(h NodeHandle) resultList {
	cell := consPool.Get()
	cell.head = h
	cell.tail = l.head
	return resultList{head: cell, len: l.len + 1}
}

// release returns every cons cell in l back to the pool. It must only
// be called once l (and anything that shared its tail) is fully done
// with, e.g. right after the cell has been reversed into a committed
// rule's children slice.
func (l resultList) release() {
	for c := l.head; c != nil; {
		next := c.tail
		consPool.Put(c)
		c = next
	}
}

// toSlice reverses l into a freshly allocated slice in source order
// (the list is built head-first as items are parsed, so the most
// recent item is at l.head).
func (l resultList) toSlice() []NodeHandle {
	out := make([]NodeHandle, l.len)
	i := l.len - 1
	for c := l.head; c != nil; c = c.tail {
		out[i] = c.head
		i--
	}
	return out
}
