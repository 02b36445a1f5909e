package tcpoosc

import "strconv"

// Unparser renders an AST back to C source, interpreting each tree
// node's format-string directives (§4.K): `%*` consumes the next
// child, `%%` is a literal percent, `%<`/`%>` adjust indentation, and
// `\n` requests a newline that materializes lazily just before the
// next non-whitespace byte, collapsing any further requests in the
// meantime. List trees (TreeName == ListTreeName) are the one
// exception to "format string is directives": their TreeFormat field
// holds a literal separator printed between consecutive children
// instead.
type Unparser struct {
	arena  *NodeArena
	sink   Sink
	indent int

	newlinePending bool
	atLineStart    bool
	lastByte       byte
	indentUnit     string
}

// NewUnparser returns an unparser writing through sink.
func NewUnparser(arena *NodeArena, sink Sink) *Unparser {
	return &Unparser{arena: arena, sink: sink, indentUnit: "    "}
}

// Unparse renders the tree rooted at h.
func (u *Unparser) Unparse(h NodeHandle) error {
	return u.node(h)
}

func (u *Unparser) node(h NodeHandle) error {
	if u.arena.IsNil(h) {
		return nil
	}
	n := u.arena.Get(h)
	switch n.Kind {
	case NodeIdent:
		return u.emit(n.Ident.Name)
	case NodeInteger:
		return u.emit(strconv.FormatInt(n.Int, 10))
	case NodeChar:
		return u.emit("'" + escapeByte(n.Char, '\'') + "'")
	case NodeString:
		return u.emit(quoteString(n.Str))
	case NodeTree:
		if n.TreeName == ListTreeName {
			return u.listTree(n)
		}
		return u.format(n.TreeFormat, n.Children)
	}
	return nil
}

func (u *Unparser) listTree(n *Node) error {
	for i, c := range n.Children {
		if i > 0 {
			if err := u.format(n.TreeFormat, nil); err != nil {
				return err
			}
		}
		if err := u.node(c); err != nil {
			return err
		}
	}
	return nil
}

// format interprets one tree's directive string, consuming children
// in order at each %*. Literal runs between directives are buffered
// and flushed as a single write so alphanumeric-adjacency spacing only
// ever triggers at a genuine token boundary, never mid-token.
func (u *Unparser) format(format string, children []NodeHandle) error {
	childIdx := 0
	var lit []byte
	flush := func() error {
		if len(lit) == 0 {
			return nil
		}
		s := string(lit)
		lit = lit[:0]
		return u.emit(s)
	}

	for i := 0; i < len(format); {
		c := format[i]
		if c == '%' && i+1 < len(format) {
			switch format[i+1] {
			case '*':
				if err := flush(); err != nil {
					return err
				}
				if childIdx < len(children) {
					if err := u.node(children[childIdx]); err != nil {
						return err
					}
					childIdx++
				}
				i += 2
				continue
			case '%':
				lit = append(lit, '%')
				i += 2
				continue
			case '<':
				if err := flush(); err != nil {
					return err
				}
				u.indent--
				i += 2
				continue
			case '>':
				if err := flush(); err != nil {
					return err
				}
				u.indent++
				i += 2
				continue
			}
		}
		if c == '\n' {
			if err := flush(); err != nil {
				return err
			}
			u.newlinePending = true
			i++
			continue
		}
		lit = append(lit, c)
		i++
	}
	return flush()
}

// emit writes s, materializing any pending newline first and
// inserting a single space if s would otherwise run an
// identifier-like byte straight into the previous one.
func (u *Unparser) emit(s string) error {
	if len(s) == 0 {
		return nil
	}
	if u.newlinePending {
		if err := u.sink.WriteByte('\n'); err != nil {
			return err
		}
		for i := 0; i < u.indent; i++ {
			if _, err := u.sink.WriteString(u.indentUnit); err != nil {
				return err
			}
		}
		u.newlinePending = false
		u.atLineStart = true
	}
	if !u.atLineStart && isIdentByte(s[0]) && isIdentByte(u.lastByte) {
		if err := u.sink.WriteByte(' '); err != nil {
			return err
		}
	}
	if _, err := u.sink.WriteString(s); err != nil {
		return err
	}
	u.lastByte = s[len(s)-1]
	u.atLineStart = false
	return nil
}

// escapeByte renders b the way a C char/string literal would spell
// it, quote meaning the surrounding quote character ('\'' or '"') that
// also needs escaping in this context.
func escapeByte(b byte, quote byte) string {
	switch b {
	case '\\':
		return "\\\\"
	case quote:
		return "\\" + string(quote)
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	case '\r':
		return "\\r"
	case '\a':
		return "\\a"
	case '\b':
		return "\\b"
	case '\f':
		return "\\f"
	case '\v':
		return "\\v"
	}
	if b < 0x20 || b >= 0x7f {
		return "\\" + string([]byte{'0' + (b>>6)&7, '0' + (b>>3)&7, '0' + b&7})
	}
	return string(b)
}

// quoteString renders a NUL-terminated NodeString's owned bytes back
// into a double-quoted C string literal.
func quoteString(owned []byte) string {
	body := owned
	if n := len(body); n > 0 && body[n-1] == 0 {
		body = body[:n-1]
	}
	out := make([]byte, 0, len(body)+2)
	out = append(out, '"')
	for _, b := range body {
		out = append(out, escapeByte(b, '"')...)
	}
	out = append(out, '"')
	return string(out)
}
