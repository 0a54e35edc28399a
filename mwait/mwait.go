// Package mwait implements park-on-address waiting: spin until a memory
// location satisfies a predicate, using a hardware MONITOR/MWAIT-style
// instruction when one is available and a plain backoff spin otherwise.
//
// A real arm/park instruction is not reachable from hosted, ring-3 Go on any
// GOARCH this module targets, so the probe always reports "unsupported" by
// default; the tri-state cache and SetProbe hook exist so a future bare-metal
// backend can wire in a real implementation without changing call sites.
package mwait

import (
	"sync/atomic"
)

const (
	probeUnknown int32 = iota
	probeSupported
	probeUnsupported
)

var probeState atomic.Int32

var probeFn atomic.Pointer[func() bool]

func init() {
	var f func() bool = func() bool { return false }
	probeFn.Store(&f)
}

// SetProbe installs the function used to detect hardware MONITOR/MWAIT (or
// WFE) support. It resets the cached probe result so the next wait call
// re-probes. f must not be nil.
func SetProbe(f func() bool) {
	if f == nil {
		panic("mwait: nil probe")
	}
	probeFn.Store(&f)
	probeState.Store(probeUnknown)
}

func hasHardwareSupport() bool {
	switch probeState.Load() {
	case probeSupported:
		return true
	case probeUnsupported:
		return false
	}
	f := *probeFn.Load()
	if f() {
		probeState.Store(probeSupported)
		return true
	}
	probeState.Store(probeUnsupported)
	return false
}

// WaitWhileFalse blocks until *p is true.
func WaitWhileFalse(p *atomic.Bool) {
	if hasHardwareSupport() {
		armAndPark(func() bool { return !p.Load() })
		return
	}
	var attempts uint
	for !p.Load() {
		attempts = spinDelay(attempts)
	}
}

// WaitWhileEqualUint64 blocks until *p no longer equals v.
func WaitWhileEqualUint64(p *atomic.Uint64, v uint64) {
	if hasHardwareSupport() {
		armAndPark(func() bool { return p.Load() == v })
		return
	}
	var attempts uint
	for p.Load() == v {
		attempts = spinDelay(attempts)
	}
}

// WaitWhilePointerNil blocks until *p is non-nil.
func WaitWhilePointerNil[T any](p *atomic.Pointer[T]) {
	if hasHardwareSupport() {
		armAndPark(func() bool { return p.Load() == nil })
		return
	}
	var attempts uint
	for p.Load() == nil {
		attempts = spinDelay(attempts)
	}
}

// armAndPark is the hook a real bare-metal backend would replace with an
// actual MONITOR+MWAIT (or WFE) pair keyed off the watched address. Hosted Go
// has nothing to arm, so it degrades to the same spin loop as the
// no-hardware-support path; it is only reachable once a probe installed via
// SetProbe reports true, which the default probe never does.
func armAndPark(stillWaiting func() bool) {
	var attempts uint
	for stillWaiting() {
		attempts = spinDelay(attempts)
	}
}
