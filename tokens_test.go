package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerLiteral(t *testing.T) {
	ctx, h := mustParse(t, "123", "int")
	assert.Equal(t, int64(123), ctx.Arena.Get(h).Int)
}

func TestIdentInternsAndRecordsPosition(t *testing.T) {
	ctx := newTestCtx("_abc1")
	h, err := ctx.Parse("ident")
	require.NoError(t, err)

	n := ctx.Arena.Get(h)
	require.Equal(t, NodeIdent, n.Kind)
	assert.Equal(t, "_abc1", n.Ident.Name)
	assert.False(t, n.Ident.IsKeyword, "an ordinary identifier must not be flagged as a keyword")

	want, ok := ctx.Interner.Lookup("_abc1")
	require.True(t, ok)
	assert.Same(t, want, n.Ident, "expected the node's Ident to be the interner's canonical pointer")

	assert.Equal(t, 1, n.Pos.Line)
	assert.Equal(t, 1, n.Pos.Column)
}

func TestAdjacentStringLiteralsConcatenate(t *testing.T) {
	ctx := newTestCtx(`"ab" /**/ "cd"`)
	h, err := ctx.Parse("string")
	require.NoError(t, err)

	n := ctx.Arena.Get(h)
	require.Equal(t, NodeString, n.Kind)
	assert.Equal(t, "abcd\x00", string(n.Str), "expected NUL-terminated concatenation")
	assert.Len(t, n.Str, 5)
}

func TestCharLiteralEscape(t *testing.T) {
	ctx := newTestCtx(`'\n'`)
	h, err := ctx.Parse("char")
	require.NoError(t, err)

	n := ctx.Arena.Get(h)
	require.Equal(t, NodeChar, n.Kind)
	assert.Equal(t, byte('\n'), n.Char, "expected decoded newline char")
}
