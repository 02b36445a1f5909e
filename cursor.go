package tcpoosc

// Cursor is the text cursor used while parsing: a byte offset plus a
// 1-based line and column. Column advances by one for a normal byte,
// by tabSize-((col-1) mod tabSize) on a horizontal tab, and resets to
// 1 on newline. It is kept as a small value type so that saving and
// restoring it (back-tracking) is a plain struct copy.
type Cursor struct {
	Offset int
	Line   int
	Column int
}

// StartCursor returns the cursor for the beginning of a fresh input.
func StartCursor() Cursor {
	return Cursor{Offset: 0, Line: 1, Column: 1}
}

// Advance returns the cursor obtained by consuming byte b at the
// current position, using tabSize for horizontal-tab expansion.
func (c Cursor) Advance(b byte, tabSize int) Cursor {
	next := Cursor{Offset: c.Offset + 1, Line: c.Line, Column: c.Column}
	switch b {
	case '\n':
		next.Line++
		next.Column = 1
	case '\t':
		if tabSize <= 0 {
			tabSize = 8
		}
		next.Column = c.Column + (tabSize - ((c.Column - 1) % tabSize))
	default:
		next.Column = c.Column + 1
	}
	return next
}

// Buffer wraps the source bytes together with the tab size used to
// compute columns. It is owned by the driver for the lifetime of a
// compile (§3 Lifecycle) and never mutated once constructed.
type Buffer struct {
	Bytes   []byte
	TabSize int
}

// NewBuffer returns a Buffer over src using the given tab size (8 if
// tabSize <= 0).
func NewBuffer(src []byte, tabSize int) *Buffer {
	if tabSize <= 0 {
		tabSize = 8
	}
	return &Buffer{Bytes: src, TabSize: tabSize}
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.Bytes) }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (b *Buffer) AtEnd(c Cursor) bool { return c.Offset >= len(b.Bytes) }

// ByteAt returns the byte under the cursor, and ok=false at end of
// input.
func (b *Buffer) ByteAt(c Cursor) (byte, bool) {
	if c.Offset >= len(b.Bytes) {
		return 0, false
	}
	return b.Bytes[c.Offset], true
}

// Advance returns the cursor after consuming one byte, and the byte
// consumed. It must only be called when !AtEnd(c).
func (b *Buffer) Advance(c Cursor) (Cursor, byte) {
	ch := b.Bytes[c.Offset]
	return c.Advance(ch, b.TabSize), ch
}

// Saturate clamps an offset to [0, len(Bytes)], used by the
// memoization cache key so that an end-of-input position is stable.
func (b *Buffer) Saturate(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(b.Bytes) {
		return len(b.Bytes)
	}
	return offset
}
