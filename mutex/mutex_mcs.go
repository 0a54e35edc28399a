//go:build !spinlock && !hostmutex

// Package mutex is a facade over the library's backing lock
// implementations, selected at build time so call sites never change
// regardless of which primitive actually backs Mutex.
//
// This file is the default build: Mutex is backed by mcs.Lock.
package mutex

import "github.com/tier4/awkernel-sync/mcs"

// Node is the caller-supplied queue node an MCS-backed Mutex needs. Callers
// must allocate one Node per goroutine that will call Lock/TryLock and must
// not share a Node across concurrent callers.
//
// Node has the same layout as mcs.Node and is converted to it when passed to
// the backing lock. It is a defined type rather than an alias because a
// generic type alias needs a newer Go language version than this module
// declares.
type Node[T any] mcs.Node[T]

// Mutex guards a value of type T, backed by an MCS queue lock in this build.
type Mutex[T any] struct {
	inner *mcs.Lock[T]
}

// Guard grants access to a Mutex's value while held.
type Guard[T any] struct {
	inner *mcs.Guard[T]
}

// New returns a Mutex guarding v.
func New[T any](v T) *Mutex[T] {
	return &Mutex[T]{inner: mcs.New(v)}
}

// Lock acquires m using node, blocking until it succeeds.
func (m *Mutex[T]) Lock(node *Node[T]) *Guard[T] {
	return &Guard[T]{inner: m.inner.Lock((*mcs.Node[T])(node))}
}

// TryLock attempts to acquire m using node without blocking.
func (m *Mutex[T]) TryLock(node *Node[T]) (*Guard[T], bool) {
	g, ok := m.inner.TryLock((*mcs.Node[T])(node))
	if !ok {
		return nil, false
	}
	return &Guard[T]{inner: g}, true
}

// Value returns a pointer to the guarded value.
func (g *Guard[T]) Value() *T {
	return g.inner.Value()
}

// Unlock releases the lock.
func (g *Guard[T]) Unlock() {
	g.inner.Unlock()
}
