// Package spinlock provides a generic test-and-test-and-set lock that never
// suspends the calling goroutine.
package spinlock

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/tier4/awkernel-sync/interrupt"
)

// Spin is a TTAS lock guarding a value of type T. The zero value is an
// unlocked Spin guarding the zero value of T; New sets the guarded value.
type Spin[T any] struct {
	_    cpu.CacheLinePad
	lock atomic.Bool
	_    cpu.CacheLinePad
	val  T
}

// New returns a Spin guarding v.
func New[T any](v T) *Spin[T] {
	return &Spin[T]{val: v}
}

// Guard holds a Spin's lock and grants access to its value. The zero value
// is not valid; obtain one from TryLock or Lock.
type Guard[T any] struct {
	s   *Spin[T]
	irq interrupt.Guard
}

// TryLock attempts to acquire s without spinning. It takes an interrupt
// guard before the single CAS attempt and drops it again on failure, so a
// failed TryLock has no observable effect on interrupt state.
func (s *Spin[T]) TryLock() (*Guard[T], bool) {
	irq := interrupt.New()
	if s.lock.CompareAndSwap(false, true) {
		return &Guard[T]{s: s, irq: irq}, true
	}
	irq.Release()
	return nil, false
}

// Lock acquires s, spinning until it succeeds. Each attempt first spins on
// a relaxed load (test), only attempting the actual CAS (test-and-set) once
// the lock word reads unlocked, to avoid hammering the cache line with
// failed exchanges under contention.
func (s *Spin[T]) Lock() *Guard[T] {
	for {
		if !s.lock.Load() {
			irq := interrupt.New()
			if s.lock.CompareAndSwap(false, true) {
				return &Guard[T]{s: s, irq: irq}
			}
			irq.Release()
		}
	}
}

// Value returns a pointer to the guarded value.
func (g *Guard[T]) Value() *T {
	return &g.s.val
}

// Unlock releases the lock, then restores the interrupt state captured at
// acquisition. The order matters: interrupts must stay masked until the
// lock word itself has been released.
func (g *Guard[T]) Unlock() {
	g.s.lock.Store(false)
	g.irq.Release()
}
