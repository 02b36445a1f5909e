package tcpoosc

// Ident is the unique, pointer-comparable handle for an interned
// identifier: two identifiers are equal iff their *Ident values are
// equal, never by comparing their Name strings (component G).
type Ident struct {
	Name      string
	IsKeyword bool
}

// trieNode is one level of the hash-trie: it is keyed first on the
// low nibble, then the high nibble, of each successive input byte,
// exactly as §3 describes ("a hexadecimal hash-trie keyed on the low
// nibble then the high nibble of each byte, terminator included").
// Each byte of the interned string therefore costs two trie levels.
type trieNode struct {
	children [16]*trieNode
	leaf     *Ident
}

// Interner maps distinct byte strings to a unique *Ident, with a
// keyword flag recorded the first time a string is interned in a
// keyword context (§3, §4.I: "the grammar calls ident followed by a
// string-equality condition against an interned keyword pointer,
// setting the keyword flag the first time the name is interned").
type Interner struct {
	root  *trieNode
	count int
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{root: &trieNode{}}
}

const trieTerminator = 0x100 // out of byte range; walk does not use it (see its terminator step)

// walk descends the trie for s, creating nodes as it goes when
// create is true. It returns the leaf node for s, or nil if create is
// false and s was never interned.
func (in *Interner) walk(s string, create bool) *trieNode {
	node := in.root
	step := func(nibble byte) bool {
		child := node.children[nibble]
		if child == nil {
			if !create {
				return false
			}
			child = &trieNode{}
			node.children[nibble] = child
		}
		node = child
		return true
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !step(b & 0x0f) {
			return nil
		}
		if !step(b >> 4) {
			return nil
		}
	}
	// Terminator: two more steps through nibble 0, the same pair a NUL
	// byte produces. The leaf of an n-byte string always sits at depth
	// 2n+2, so no two distinct strings share a leaf: when one is the
	// other extended by NUL bytes, the shorter one's leaf is an inner
	// node on the longer one's path.
	if !step(0) || !step(0) {
		return nil
	}
	return node
}

// Intern returns the unique *Ident for s, creating one on first sight.
func (in *Interner) Intern(s string) *Ident {
	node := in.walk(s, true)
	if node.leaf == nil {
		node.leaf = &Ident{Name: s}
		in.count++
	}
	return node.leaf
}

// Lookup returns the *Ident for s if it has already been interned.
func (in *Interner) Lookup(s string) (*Ident, bool) {
	node := in.walk(s, false)
	if node == nil || node.leaf == nil {
		return nil, false
	}
	return node.leaf, true
}

// InternKeyword interns s (if needed) and marks it as a keyword. The
// grammar's keywordCondition does not call it; it sets IsKeyword on
// the matched *Ident directly.
func (in *Interner) InternKeyword(s string) *Ident {
	id := in.Intern(s)
	id.IsKeyword = true
	return id
}

// Count returns how many distinct strings have been interned.
func (in *Interner) Count() int { return in.count }
