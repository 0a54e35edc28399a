// Package mcs implements the Mellor-Crummey & Scott FIFO queue lock: every
// waiter spins on a field of its own, caller-supplied node rather than on
// shared lock state, so contention does not bounce a single cache line
// between all waiters.
package mcs

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/tier4/awkernel-sync/interrupt"
	"github.com/tier4/awkernel-sync/mwait"
)

// Node is a queue node a caller supplies to Lock/TryLock. One Node must not
// be used by more than one goroutine concurrently, and a Node must outlive
// the guard acquired with it.
type Node[T any] struct {
	_       cpu.CacheLinePad
	next    atomic.Pointer[Node[T]]
	locked  atomic.Bool
	_       cpu.CacheLinePad
}

// Lock is an MCS queue lock guarding a value of type T.
type Lock[T any] struct {
	_    cpu.CacheLinePad
	tail atomic.Pointer[Node[T]]
	_    cpu.CacheLinePad
	val  T
}

// New returns a Lock guarding v.
func New[T any](v T) *Lock[T] {
	return &Lock[T]{val: v}
}

// Guard grants access to a Lock's value while it is held.
type Guard[T any] struct {
	node       *Node[T]
	lock       *Lock[T]
	needUnlock bool
	irq        interrupt.Guard
}

// TryLock attempts to acquire l using node without blocking. On failure it
// returns nil and false: the caller-supplied node was never linked in, so
// there is no guard and nothing to release.
func (l *Lock[T]) TryLock(node *Node[T]) (*Guard[T], bool) {
	node.next.Store(nil)
	node.locked.Store(false)

	irq := interrupt.New()
	g := &Guard[T]{node: node, lock: l, needUnlock: true, irq: irq}

	if l.tail.CompareAndSwap(nil, node) {
		return g, true
	}
	g.needUnlock = false
	irq.Release()
	return nil, false
}

// Lock acquires l using node, blocking (via mwait.WaitWhileFalse, never
// yielding to the goroutine scheduler directly) until it is this node's turn.
func (l *Lock[T]) Lock(node *Node[T]) *Guard[T] {
	node.next.Store(nil)
	node.locked.Store(false)

	irq := interrupt.New()
	g := &Guard[T]{node: node, lock: l, needUnlock: true, irq: irq}

	prev := l.tail.Swap(node)
	if prev == nil {
		return g
	}

	prev.next.Store(node)
	mwait.WaitWhileFalse(&node.locked)

	return g
}

// Value returns a pointer to the guarded value.
func (g *Guard[T]) Value() *T {
	return &g.lock.val
}

// Unlock releases the lock acquired by Lock or a successful TryLock, then
// releases the interrupt guard captured at acquisition time.
func (g *Guard[T]) Unlock() {
	if !g.needUnlock {
		return
	}

	if g.node.next.Load() == nil {
		if g.lock.tail.CompareAndSwap(g.node, nil) {
			g.irq.Release()
			return
		}
		// A successor is mid-enqueue: its Swap into tail has completed but
		// its Store into our next hasn't landed yet. Spin for it.
		for g.node.next.Load() == nil {
		}
	}

	next := g.node.next.Load()
	next.locked.Store(true)
	g.irq.Release()
}
