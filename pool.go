package tcpoosc

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// freeList is the "recycle freed records in a free list" pool of §5,
// used for records that are allocated and released at a very high
// rate during back-tracking and would otherwise churn the garbage
// collector; its one user is consPool, for prev-child cons cells. It is
// backed by gods' array stack so that Get/Put are O(1) amortized and
// the pool itself never needs to be pre-sized.
type freeList[T any] struct {
	free *arraystack.Stack
	new  func() *T
}

func newFreeList[T any](newFn func() *T) *freeList[T] {
	return &freeList[T]{free: arraystack.New(), new: newFn}
}

// Get returns a recycled *T if one is available, otherwise a fresh
// one from new().
func (p *freeList[T]) Get() *T {
	if top, ok := p.free.Peek(); ok {
		p.free.Pop()
		return top.(*T)
	}
	return p.new()
}

// Put returns v to the pool for later reuse. Callers must not keep
// any other reference to v alive after calling Put.
func (p *freeList[T]) Put(v *T) {
	p.free.Push(v)
}

// Size returns how many records are currently parked in the pool.
func (p *freeList[T]) Size() int {
	return p.free.Size()
}
