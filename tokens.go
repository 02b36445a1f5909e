package tcpoosc

import (
	"strconv"
)

// csAny matches any byte; used by the comment-body elements below,
// where "no byte" (EOF) must still fail so a sequence can stop.
var csAny = NewCharSet().AddRange(0, 255)

var csNotNewline = func() *CharSet {
	cs := csAny.Clone()
	cs.Remove('\n')
	return cs
}()

// firstChild reads the single item a Term-element rule pushed into
// its seed, for use by an EndCallback that only has one element to
// look at.
func firstChild(seed resultList) NodeHandle {
	if seed.head == nil {
		return NilHandle
	}
	return seed.head.head
}

// DefineTokenGrammars registers white_space, ident, int, char and
// string into g (component H).
func DefineTokenGrammars(g *Grammar) {
	defineWhiteSpace(g)
	defineIdent(g)
	defineInteger(g)
	defineChar(g)
	defineString(g)
}

// ---- white_space ----
//
// zero or more of {space|tab|CR|newline}, a "// ... EOL" line
// comment, or a "/* ... */" block comment. The block comment's body
// carries Avoid so that, at every position, the engine first tries to
// stop the run and match the closing "*/" before consuming one more
// byte — this is the concrete case the Design Notes call out as
// "load-bearing for... disambiguation."
func defineWhiteSpace(g *Grammar) {
	lineComment := Seq(Lit('/'), Lit('/'), Many(Set(csNotNewline)))
	blockComment := Seq(
		Lit('/'), Lit('*'),
		AvoidSeq(Many(Set(csAny))),
		Lit('*'), Lit('/'),
	)
	wsItem := Group(Seq(Set(csSpace)), lineComment, blockComment)
	ws := g.Define("white_space")
	ws.AddRule(Seq(Many(wsItem)))
}

// ---- ident ----
//
// [A-Za-z_][A-Za-z_0-9]*, truncated to Config["parser.ident_max_len"]
// bytes for interning purposes (the cursor still advances across the
// whole run so a long identifier doesn't desynchronize the rest of
// the parse). Position is stamped at the start of the run and the
// keyword flag recorded is whatever keywordCondition (cgrammar.go) has
// set for this name so far — §4.I's condition-based keyword recognition sets it
// the first time a name is seen in a keyword context, which may be
// before or after this particular occurrence.
func defineIdent(g *Grammar) {
	nt := g.Define("ident")
	nt.AddRule(&Rule{
		Elements: []*Element{Term(scanIdent)},
		EndCallback: func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
			h := firstChild(seed)
			raw := ctx.Arena.Get(h)
			name := string(raw.Str)
			maxLen := ctx.Config.GetInt("parser.ident_max_len")
			if len(name) > maxLen {
				name = name[:maxLen]
			}
			id := ctx.Interner.Intern(name)
			return ctx.Arena.NewIdent(id, raw.Pos), nil
		},
	})
}

func scanIdent(ctx *ParseCtx) (Cursor, bool) {
	cur := ctx.cur
	b, ok := ctx.Buffer.ByteAt(cur)
	if !ok || !csAlpha.Has(b) {
		return cur, false
	}
	for {
		next, has := ctx.Buffer.ByteAt(cur)
		if !has || !csAlphaNum.Has(next) {
			break
		}
		cur, _ = ctx.Buffer.Advance(cur)
	}
	return cur, true
}

// ---- int ----
//
// optional '-'; then hex (0x[0-9A-Fa-f]+), octal (0[0-7]*) or decimal
// ([1-9][0-9]*); optional U, L, LL suffix. The source implements this
// with a coroutine-style lexer resumed across character additions;
// §9 re-expresses that as "a plain state machine enumeration with an
// explicit current-state field," which for a Go scanner that can see
// the whole buffer at once collapses to the straightforward sequential
// scan below — same state transitions, no suspension needed.
func defineInteger(g *Grammar) {
	nt := g.Define("int")
	nt.AddRule(&Rule{
		Elements: []*Element{Term(scanInt)},
		EndCallback: func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
			h := firstChild(seed)
			raw := ctx.Arena.Get(h)
			v, err := parseIntLiteral(string(raw.Str))
			if err != nil {
				return NilHandle, err
			}
			return ctx.Arena.NewInteger(v, raw.Pos), nil
		},
	})
}

func scanInt(ctx *ParseCtx) (Cursor, bool) {
	cur := ctx.cur
	start := cur
	peek := func(c Cursor) (byte, bool) { return ctx.Buffer.ByteAt(c) }

	if b, ok := peek(cur); ok && b == '-' {
		cur, _ = ctx.Buffer.Advance(cur)
	}

	if b, ok := peek(cur); ok && b == '0' {
		cur2, _ := ctx.Buffer.Advance(cur)
		if b2, ok2 := peek(cur2); ok2 && (b2 == 'x' || b2 == 'X') {
			cur3, _ := ctx.Buffer.Advance(cur2)
			hexStart := cur3
			for {
				b3, ok3 := peek(cur3)
				if !ok3 || !csHexDigit.Has(b3) {
					break
				}
				cur3, _ = ctx.Buffer.Advance(cur3)
			}
			if cur3.Offset == hexStart.Offset {
				return start, false
			}
			cur = cur3
		} else {
			// octal: 0 followed by zero or more octal digits
			cur = cur2
			for {
				b3, ok3 := peek(cur)
				if !ok3 || !csOctalDigit.Has(b3) {
					break
				}
				cur, _ = ctx.Buffer.Advance(cur)
			}
		}
	} else if b, ok := peek(cur); ok && b >= '1' && b <= '9' {
		for {
			b3, ok3 := peek(cur)
			if !ok3 || !csDigit.Has(b3) {
				break
			}
			cur, _ = ctx.Buffer.Advance(cur)
		}
	} else {
		return start, false
	}

	// optional suffix: up to three of u/U/l/L in any order; repeats are
	// not rejected
	for i := 0; i < 3; i++ {
		b, ok := peek(cur)
		if !ok {
			break
		}
		if b == 'u' || b == 'U' || b == 'l' || b == 'L' {
			cur, _ = ctx.Buffer.Advance(cur)
			continue
		}
		break
	}
	return cur, true
}

func parseIntLiteral(s string) (int64, error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for len(s) > 0 {
		c := s[len(s)-1]
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	var v int64
	var err error
	switch {
	case len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		var u uint64
		u, err = strconv.ParseUint(s[2:], 16, 64)
		v = int64(u)
	case len(s) > 1 && s[0] == '0':
		var u uint64
		u, err = strconv.ParseUint(s, 8, 64)
		v = int64(u)
	case s == "":
		v = 0
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, &CompileError{Kind: ErrParseFailure, Message: "malformed integer literal: " + s}
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ---- char ----
//
// a single-quoted single character; escape alphabet 0"'\abfnrtv.
func defineChar(g *Grammar) {
	nt := g.Define("char")
	nt.AddRule(&Rule{
		Elements: []*Element{Term(scanChar)},
		EndCallback: func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
			h := firstChild(seed)
			raw := ctx.Arena.Get(h)
			b, err := decodeCharLiteral(raw.Str)
			if err != nil {
				return NilHandle, err
			}
			return ctx.Arena.NewChar(b, raw.Pos), nil
		},
	})
}

var charEscapes = map[byte]byte{
	'0': 0, '"': '"', '\'': '\'', '\\': '\\',
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

func scanChar(ctx *ParseCtx) (Cursor, bool) {
	cur := ctx.cur
	b, ok := ctx.Buffer.ByteAt(cur)
	if !ok || b != '\'' {
		return cur, false
	}
	cur, _ = ctx.Buffer.Advance(cur)

	b, ok = ctx.Buffer.ByteAt(cur)
	if !ok {
		return ctx.cur, false
	}
	if b == '\\' {
		cur, _ = ctx.Buffer.Advance(cur)
		esc, ok := ctx.Buffer.ByteAt(cur)
		if !ok {
			return ctx.cur, false
		}
		if _, known := charEscapes[esc]; !known {
			return ctx.cur, false
		}
		cur, _ = ctx.Buffer.Advance(cur)
	} else {
		cur, _ = ctx.Buffer.Advance(cur)
	}

	b, ok = ctx.Buffer.ByteAt(cur)
	if !ok || b != '\'' {
		return ctx.cur, false
	}
	cur, _ = ctx.Buffer.Advance(cur)
	return cur, true
}

func decodeCharLiteral(raw []byte) (byte, error) {
	// raw is `'x'` or `'\x'`; strip the quotes.
	body := raw[1 : len(raw)-1]
	if len(body) == 1 {
		return body[0], nil
	}
	if len(body) == 2 && body[0] == '\\' {
		if v, ok := charEscapes[body[1]]; ok {
			return v, nil
		}
	}
	return 0, &CompileError{Kind: ErrParseFailure, Message: "malformed character literal"}
}

// ---- string ----
//
// concatenation of one or more double-quoted runs separated by
// white_space; same escape alphabet as char, plus 3-digit octal
// \ooo. The source buffers in 100-byte chunks to amortize
// allocation; this scan instead appends into a strings.Builder-style
// growable slice (Go's append already amortizes geometrically) and
// then copies the result into a single owned, NUL-terminated array
// for the AST node, preserving the "owned byte array plus length"
// shape §3 describes for the string node.
func defineString(g *Grammar) {
	wsThenRun := &Rule{
		Elements: []*Element{Ref("white_space"), Term(scanStringRun)},
		EndCallback: func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
			items := seed.toSlice()
			return items[len(items)-1], nil
		},
	}
	nt := g.Define("string")
	nt.AddRule(&Rule{
		Elements: []*Element{
			Term(scanStringRun),
			Many(Group(wsThenRun)),
		},
		EndCallback: func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
			// Many pushes the later runs as one list tree; flatten it.
			var items []NodeHandle
			for _, h := range seed.toSlice() {
				if ctx.Arena.IsListTree(h) {
					items = append(items, ctx.Arena.Get(h).Children...)
				} else {
					items = append(items, h)
				}
			}
			var out []byte
			var firstPos Location
			for i, h := range items {
				n := ctx.Arena.Get(h)
				if i == 0 {
					firstPos = n.Pos
				}
				if n.Kind != NodeString {
					continue
				}
				out = append(out, decodeRunBytes(n.Str)...)
			}
			owned := make([]byte, len(out)+1)
			copy(owned, out)
			return ctx.Arena.NewString(owned, firstPos), nil
		},
	})
}

// scanStringRun consumes one "..." run, escapes and all; decoding
// happens afterward in defineString's EndCallback via decodeRunBytes.
func scanStringRun(ctx *ParseCtx) (Cursor, bool) {
	cur := ctx.cur
	b, ok := ctx.Buffer.ByteAt(cur)
	if !ok || b != '"' {
		return cur, false
	}
	cur, _ = ctx.Buffer.Advance(cur)
	for {
		b, ok := ctx.Buffer.ByteAt(cur)
		if !ok {
			return ctx.cur, false
		}
		if b == '"' {
			cur, _ = ctx.Buffer.Advance(cur)
			return cur, true
		}
		if b == '\\' {
			cur, _ = ctx.Buffer.Advance(cur)
			eb, ok := ctx.Buffer.ByteAt(cur)
			if !ok {
				return ctx.cur, false
			}
			if eb >= '0' && eb <= '7' {
				for i := 0; i < 3; i++ {
					d, ok := ctx.Buffer.ByteAt(cur)
					if !ok || d < '0' || d > '7' {
						break
					}
					cur, _ = ctx.Buffer.Advance(cur)
				}
				continue
			}
			if _, known := charEscapes[eb]; !known {
				return ctx.cur, false
			}
			cur, _ = ctx.Buffer.Advance(cur)
			continue
		}
		cur, _ = ctx.Buffer.Advance(cur)
	}
}

// decodeRunBytes turns one raw quoted run (the Term element's
// consumed span, including its surrounding quotes and any
// backslash escapes) into the actual bytes it denotes.
func decodeRunBytes(quoted []byte) []byte {
	body := quoted[1 : len(quoted)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		e := body[i]
		if e >= '0' && e <= '7' {
			j := i
			for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			var v int
			for k := i; k < j; k++ {
				v = v*8 + int(body[k]-'0')
			}
			out = append(out, byte(v))
			i = j - 1
			continue
		}
		if v, ok := charEscapes[e]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, e)
	}
	return out
}
