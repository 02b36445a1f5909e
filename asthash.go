package tcpoosc

import "github.com/cnf/structhash"

// treeSnapshot is the structural, handle-independent view of one AST
// node that StructuralHash and TreesEqual compare: everything a
// structural-equality check must see, and nothing a handle
// renumbering between two otherwise-identical parses would change.
type treeSnapshot struct {
	Kind       NodeKind
	IdentName  string
	IsKeyword  bool
	Char       byte
	Str        []byte
	Int        int64
	TreeName   string
	TreeFormat string
	Children   []treeSnapshot
}

func snapshot(a *NodeArena, h NodeHandle) treeSnapshot {
	if a.IsNil(h) {
		return treeSnapshot{}
	}
	n := a.Get(h)
	s := treeSnapshot{
		Kind:       n.Kind,
		Char:       n.Char,
		Str:        n.Str,
		Int:        n.Int,
		TreeName:   n.TreeName,
		TreeFormat: n.TreeFormat,
	}
	if n.Ident != nil {
		s.IdentName = n.Ident.Name
		s.IsKeyword = n.Ident.IsKeyword
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, snapshot(a, c))
	}
	return s
}

// StructuralHash returns a content hash of the tree rooted at h that
// is stable across re-parses of equal input (§8's "re-parsing yields
// an AST equal under structural comparison" and the memoization
// soundness property), independent of the arena's own handle
// numbering.
func StructuralHash(a *NodeArena, h NodeHandle) (string, error) {
	return structhash.Hash(snapshot(a, h), 1)
}

// TreesEqual reports whether the trees rooted at ha (in arena a) and
// hb (in arena b, which may be the same arena or a different one from
// a second parse) are structurally equal.
func TreesEqual(a *NodeArena, ha NodeHandle, b *NodeArena, hb NodeHandle) bool {
	ha1, err1 := StructuralHash(a, ha)
	hb1, err2 := StructuralHash(b, hb)
	if err1 != nil || err2 != nil {
		return false
	}
	return ha1 == hb1
}
