package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralHashStableAcrossReparse(t *testing.T) {
	const src = "a+b*c"
	ctx1, h1 := mustParse(t, src, "expr")
	ctx2, h2 := mustParse(t, src, "expr")
	hash1, err := StructuralHash(ctx1.Arena, h1)
	require.NoError(t, err)
	hash2, err := StructuralHash(ctx2.Arena, h2)
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2, "expected structurally equal trees from two parses to hash identically")
	assert.True(t, TreesEqual(ctx1.Arena, h1, ctx2.Arena, h2), "expected TreesEqual to agree with matching hashes")
}

func TestStructuralHashDiffersForDifferentTrees(t *testing.T) {
	ctx1, h1 := mustParse(t, "a+b", "expr")
	ctx2, h2 := mustParse(t, "a-b", "expr")
	assert.False(t, TreesEqual(ctx1.Arena, h1, ctx2.Arena, h2), "expected a+b and a-b to hash differently")
}

func TestStructuralHashIgnoresHandleNumbering(t *testing.T) {
	ctx1, h1 := mustParse(t, "x+1", "expr")
	// Allocate a few extra nodes in ctx2's own arena before parsing the
	// same source, so h2 addresses a different handle number than h1
	// even though the two trees are structurally identical.
	ctx2 := newTestCtx("x+1")
	ctx2.Arena.NewInteger(0, Location{})
	ctx2.Arena.NewInteger(0, Location{})
	h2, err := ctx2.Parse("expr")
	require.NoError(t, err)
	assert.True(t, TreesEqual(ctx1.Arena, h1, ctx2.Arena, h2),
		"expected identical source to hash equal regardless of arena handle offsets")
}
