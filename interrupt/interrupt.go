// Package interrupt provides a scoped guard that disables the CPU's
// maskable-interrupt-enable state for the duration of a critical section
// and restores it on release.
//
// Masking interrupts while a per-CPU spinning lock is held avoids the
// classic deadlock where an ISR tries to acquire a lock already held by the
// task it interrupted, on the same CPU.
//
// The real interrupt controller is out of scope for this package (see the
// library's top-level design notes): get/disable/restore is a narrow
// interface the host injects via SetPlatform. Ordinary hosted Go binaries
// have no ring-0 access to the interrupt-enable register, so the default
// Platform emulates the abstract contract with a single process-wide flag.
package interrupt

import "sync/atomic"

// Flag is an opaque snapshot of the interrupt-enable state, as returned by
// Platform.GetFlag and accepted by Platform.RestoreFlag.
type Flag uint64

// Platform is the host-provided capability set this package builds on.
// Implementations must satisfy:
//
//   - GetFlag returns the current enable state.
//   - Disable idempotently masks interrupts on the current CPU.
//   - RestoreFlag sets the state to exactly what a prior GetFlag returned;
//     it is not "enable" — restoring a flag that denoted "disabled" must
//     leave interrupts disabled.
type Platform interface {
	GetFlag() Flag
	Disable()
	RestoreFlag(Flag)
}

// DiagnosticPlatform is a Platform that can additionally report whether
// interrupts are currently enabled, for diagnostics only.
type DiagnosticPlatform interface {
	Platform
	AreEnabled() bool
}

var platform atomic.Pointer[Platform]

func init() {
	var p Platform = hostedPlatform{}
	platform.Store(&p)
}

// SetPlatform installs a host-provided Platform, replacing the default
// hosted emulation. It may be called at any time; in-flight guards keep
// using whichever Platform was current when they were constructed.
func SetPlatform(p Platform) {
	if p == nil {
		panic("interrupt: nil platform")
	}
	platform.Store(&p)
}

func current() Platform {
	return *platform.Load()
}

// AreEnabled reports whether interrupts are currently enabled, if the
// installed Platform supports the diagnostic. It returns false if it does
// not — this is a diagnostic aid only (spec: "optional: are_enabled()
// -> bool (used only by diagnostics)"), never load-bearing for correctness.
func AreEnabled() bool {
	if d, ok := current().(DiagnosticPlatform); ok {
		return d.AreEnabled()
	}
	return false
}

// Guard is a scoped interrupt-disable token. The zero value is not valid;
// obtain one with New. Guards must not be moved between goroutines that can
// run on different CPUs — conceptually they pin to the CPU on which they
// were taken, even though the hosted default has no real per-CPU state.
type Guard struct {
	platform Platform
	flag     Flag
}

// New snapshots the current interrupt-enable state, disables interrupts,
// and returns a Guard that restores the snapshot when Release is called.
//
// Guards nest correctly: an inner guard's snapshot reflects the
// already-disabled state set up by an outer guard, so the inner guard's
// Release is a no-op on the interrupt state; the outer guard's Release
// still restores the original state.
func New() Guard {
	p := current()
	f := p.GetFlag()
	p.Disable()
	return Guard{platform: p, flag: f}
}

// Release restores the interrupt-enable state snapshotted by New. Every
// lock's guard in this module calls Release only after releasing its own
// lock state, never before — restoring interrupts first would let an
// interrupt preempt the caller while it still held the lock.
func (g Guard) Release() {
	g.platform.RestoreFlag(g.flag)
}

// hostedPlatform is the default Platform for ordinary hosted Go binaries,
// which have no privileged access to DAIF (aarch64), mstatus (riscv64), or
// RFLAGS.IF (x86_64 CLI/STI). It emulates the abstract get/disable/restore
// contract with one process-wide boolean, which is sufficient: none of this
// module's mutual-exclusion guarantees depend on the interrupt guard having
// real hardware effect, only on it round-tripping correctly (testable
// property #6).
type hostedPlatform struct{}

var hostedEnabled atomic.Bool

func init() {
	hostedEnabled.Store(true)
}

func (hostedPlatform) GetFlag() Flag {
	if hostedEnabled.Load() {
		return 1
	}
	return 0
}

func (hostedPlatform) Disable() {
	hostedEnabled.Store(false)
}

func (hostedPlatform) RestoreFlag(f Flag) {
	hostedEnabled.Store(f != 0)
}

func (hostedPlatform) AreEnabled() bool {
	return hostedEnabled.Load()
}
