//go:build !modelcheck

package mwait

import "runtime"

// spinDelay is nsync's backoff: busy-loop for the first few attempts, then
// yield to the scheduler. See nsync/common.go.
func spinDelay(attempts uint) uint {
	if attempts < 7 {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}
