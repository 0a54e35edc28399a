//go:build spinlock && !hostmutex

// This file realizes the mutex facade backed by spinlock.Spin, selected
// with the `spinlock` build tag.
package mutex

import "github.com/tier4/awkernel-sync/spinlock"

// Node exists only so call sites compile unchanged across backends; the
// spinlock backend ignores it.
type Node[T any] struct{}

// Mutex guards a value of type T, backed by a TTAS spinlock in this build.
type Mutex[T any] struct {
	inner *spinlock.Spin[T]
}

// Guard grants access to a Mutex's value while held.
type Guard[T any] struct {
	inner *spinlock.Guard[T]
}

// New returns a Mutex guarding v.
func New[T any](v T) *Mutex[T] {
	return &Mutex[T]{inner: spinlock.New(v)}
}

// Lock acquires m, blocking until it succeeds. node is accepted and ignored
// so the call site matches the MCS-backed build.
func (m *Mutex[T]) Lock(_ *Node[T]) *Guard[T] {
	return &Guard[T]{inner: m.inner.Lock()}
}

// TryLock attempts to acquire m without blocking.
func (m *Mutex[T]) TryLock(_ *Node[T]) (*Guard[T], bool) {
	g, ok := m.inner.TryLock()
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
