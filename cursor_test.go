package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorAdvancePlainByte(t *testing.T) {
	c := StartCursor()
	c = c.Advance('a', 8)
	assert.Equal(t, 1, c.Offset)
	assert.Equal(t, 1, c.Line)
	assert.Equal(t, 2, c.Column)
}

func TestCursorAdvanceNewline(t *testing.T) {
	c := StartCursor()
	c = c.Advance('a', 8)
	c = c.Advance('\n', 8)
	assert.Equal(t, 2, c.Line, "expected newline to advance to line 2")
	assert.Equal(t, 1, c.Column)
}

func TestCursorAdvanceTab(t *testing.T) {
	c := StartCursor()
	c = c.Advance('\t', 8)
	assert.Equal(t, 9, c.Column, "expected tab from column 1 to land on column 9")

	c2 := StartCursor()
	c2 = c2.Advance('a', 8)
	c2 = c2.Advance('\t', 8)
	assert.Equal(t, 9, c2.Column, "expected tab from column 2 to still land on column 9")
}

func TestBufferByteAtAndAtEnd(t *testing.T) {
	buf := NewBuffer([]byte("ab"), 8)
	c := StartCursor()
	b, ok := buf.ByteAt(c)
	assert.True(t, ok)
	assert.Equal(t, byte('a'), b)
	assert.False(t, buf.AtEnd(c), "should not be at end yet")

	c, b = buf.Advance(c)
	assert.Equal(t, byte('a'), b)
	c, b = buf.Advance(c)
	assert.Equal(t, byte('b'), b)
	assert.True(t, buf.AtEnd(c), "expected end of buffer after consuming both bytes")

	_, ok = buf.ByteAt(c)
	assert.False(t, ok, "ByteAt past end should report ok=false")
}

func TestBufferSaturate(t *testing.T) {
	buf := NewBuffer([]byte("abc"), 8)
	assert.Equal(t, 0, buf.Saturate(-5), "expected negative offset clamped to 0")
	assert.Equal(t, 3, buf.Saturate(100), "expected overlong offset clamped to len")
	assert.Equal(t, 2, buf.Saturate(2), "expected in-range offset unchanged")
}

func TestNewBufferDefaultsTabSize(t *testing.T) {
	buf := NewBuffer([]byte("x"), 0)
	assert.Equal(t, 8, buf.TabSize, "expected default tab size 8")
}
