// Package preempt holds a single process-wide, installable voluntary-yield
// hook. Nothing in this library calls it automatically: it is a cooperation
// point the integrator can wire into a scheduler's preemption path, called
// at points of the integrator's choosing.
package preempt

import "sync/atomic"

func noop() {}

var fn atomic.Pointer[func()]

func init() {
	var f func() = noop
	fn.Store(&f)
}

// Set installs f as the voluntary-preemption hook, replacing whatever was
// previously installed. f must not be nil; to remove a hook, install a
// no-op instead.
func Set(f func()) {
	if f == nil {
		panic("preempt: nil voluntary preemption function")
	}
	fn.Store(&f)
}

// Voluntary calls the currently installed voluntary-preemption hook. It is
// a no-op until Set has been called.
func Voluntary() {
	f := *fn.Load()
	f()
}
