package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternReturnsSamePointerForSameString(t *testing.T) {
	in := NewInterner()
	a := in.Intern("foo")
	b := in.Intern("foo")
	assert.Same(t, a, b, "expected the same *Ident for repeated interning of the same string")
}

func TestInternDistinctStringsDistinctPointers(t *testing.T) {
	in := NewInterner()
	a := in.Intern("foo")
	b := in.Intern("bar")
	assert.NotSame(t, a, b, "expected distinct *Ident values for distinct strings")
}

func TestInternPrefixCollisionSafety(t *testing.T) {
	in := NewInterner()
	short := in.Intern("a")
	long := in.Intern("ab")
	longer := in.Intern("aba")
	assert.NotSame(t, short, long)
	assert.NotSame(t, long, longer)
	assert.NotSame(t, short, longer)
	assert.Equal(t, 3, in.Count(), "expected 3 distinct interned strings")
}

func TestLookupUnknownString(t *testing.T) {
	in := NewInterner()
	in.Intern("known")
	_, ok := in.Lookup("unknown")
	assert.False(t, ok, "expected Lookup to fail for a never-interned string")

	id, ok := in.Lookup("known")
	require.True(t, ok, "expected Lookup to find a previously interned string")
	assert.Equal(t, "known", id.Name)
}

func TestInternKeywordSetsFlag(t *testing.T) {
	in := NewInterner()
	id := in.InternKeyword("task")
	assert.True(t, id.IsKeyword, "expected InternKeyword to set IsKeyword")

	again := in.Intern("task")
	assert.True(t, again.IsKeyword, "expected the keyword flag to stick on the same interned identity")
}

func TestIdentIdentityNotNameEquality(t *testing.T) {
	in := NewInterner()
	a := in.Intern("x")
	b := &Ident{Name: "x"}
	assert.NotSame(t, a, b, "a hand-built Ident must never alias an interned one")
}
