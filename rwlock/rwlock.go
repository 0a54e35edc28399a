// Package rwlock implements a reader/writer lock with a separate writer-wake
// counter, so releasing readers never has to distinguish "no one is
// waiting" from "a writer went to sleep right before I checked".
//
// State encoding (in RWLock.state):
//
//	0              idle, no readers, no writer
//	even >= 2      (state/2) readers hold the lock, no writer waiting
//	odd  >= 1      (state-1)/2 readers hold the lock AND a writer is waiting
//	math.MaxUint64 a writer holds the lock
package rwlock

import (
	"math"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/tier4/awkernel-sync/interrupt"
	"github.com/tier4/awkernel-sync/mwait"
)

// RWLock guards a value of type T with reader/writer semantics.
type RWLock[T any] struct {
	_          cpu.CacheLinePad
	state      atomic.Uint64
	_          cpu.CacheLinePad
	writerWake atomic.Uint64
	_          cpu.CacheLinePad
	val        T
}

// New returns an RWLock guarding v.
func New[T any](v T) *RWLock[T] {
	return &RWLock[T]{val: v}
}

// ReadGuard grants read access to an RWLock's value while held.
type ReadGuard[T any] struct {
	l   *RWLock[T]
	irq interrupt.Guard
}

// WriteGuard grants exclusive access to an RWLock's value while held.
type WriteGuard[T any] struct {
	l   *RWLock[T]
	irq interrupt.Guard
}

// Read acquires a shared read lock, parking (via mwait.WaitWhileEqualUint64)
// whenever the lock is held or reserved by a writer.
func (l *RWLock[T]) Read() *ReadGuard[T] {
	irq := interrupt.New()

	s := l.state.Load()
	for {
		if s&1 == 0 {
			if l.state.CompareAndSwap(s, s+2) {
				return &ReadGuard[T]{l: l, irq: irq}
			}
			s = l.state.Load()
			continue
		}
		mwait.WaitWhileEqualUint64(&l.state, s)
		s = l.state.Load()
	}
}

// Write acquires the exclusive write lock. While waiting, it sets the
// "writer waiting" bit so new readers queue behind it, then parks on the
// writer-wake counter until the last reader releases.
func (l *RWLock[T]) Write() *WriteGuard[T] {
	irq := interrupt.New()

	s := l.state.Load()
	for {
		if s <= 1 {
			if l.state.CompareAndSwap(s, math.MaxUint64) {
				return &WriteGuard[T]{l: l, irq: irq}
			}
			s = l.state.Load()
			continue
		}

		if s&1 == 0 {
			if !l.state.CompareAndSwap(s, s+1) {
				s = l.state.Load()
				continue
			}
		}

		w := l.writerWake.Load()
		s = l.state.Load()

		if s >= 2 {
			mwait.WaitWhileEqualUint64(&l.writerWake, w)
			s = l.state.Load()
		}
	}
}

// Value returns a pointer to the guarded value, valid for shared reads.
func (g *ReadGuard[T]) Value() *T {
	return &g.l.val
}

// Value returns a pointer to the guarded value, valid for exclusive access.
func (g *WriteGuard[T]) Value() *T {
	return &g.l.val
}

// Unlock releases this read lock. If this was the last reader and a writer
// was waiting (state == 3 just before release), it bumps the writer-wake
// counter so a parked writer's mwait.WaitWhileEqualUint64 returns.
func (g *ReadGuard[T]) Unlock() {
	// atomic.Uint64.Add returns the value AFTER the add, where the
	// original's fetch_sub returns the value BEFORE it; previous==3 is
	// equivalent to new==1.
	if g.l.state.Add(^uint64(1)) == 1 {
		g.l.writerWake.Add(1)
	}
	g.irq.Release()
}

// Unlock releases the write lock, resets state to idle, and always bumps
// the writer-wake counter: a write-holder always cleared the "waiting" bit
// for itself on acquisition, and any other writer now waiting must be able
// to distinguish this wake from the one it already observed.
func (g *WriteGuard[T]) Unlock() {
	g.l.state.Store(0)
	g.l.writerWake.Add(1)
	g.irq.Release()
}
