package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharSetAddHas(t *testing.T) {
	cs := NewCharSet()
	assert.False(t, cs.Has('a'), "empty set should not contain 'a'")
	cs.Add('a')
	assert.True(t, cs.Has('a'))
	assert.False(t, cs.Has('b'))
}

func TestCharSetRemove(t *testing.T) {
	cs := NewCharSet().Add('x')
	cs.Remove('x')
	assert.False(t, cs.Has('x'))
}

func TestCharSetAddRange(t *testing.T) {
	cs := NewCharSet().AddRange('0', '9')
	for b := byte('0'); b <= '9'; b++ {
		assert.True(t, cs.Has(b), "expected digit %q in range", b)
	}
	assert.False(t, cs.Has('a'))
	assert.False(t, cs.Has('/'))
	assert.False(t, cs.Has(':'))
}

func TestCharSetUnionAndClone(t *testing.T) {
	a := NewCharSet().Add('a')
	b := NewCharSet().Add('b')
	a.Union(b)
	assert.True(t, a.Has('a'))
	assert.True(t, a.Has('b'))

	clone := a.Clone()
	clone.Add('c')
	assert.False(t, a.Has('c'), "mutating a clone must not affect the original")
}

func TestIsIdentByte(t *testing.T) {
	for _, b := range []byte("abcXYZ_019") {
		assert.True(t, isIdentByte(b), "expected %q to be an identifier byte", b)
	}
	for _, b := range []byte(" \t\n+-*(){}") {
		assert.False(t, isIdentByte(b), "did not expect %q to be an identifier byte", b)
	}
}
