//go:build modelcheck

package mwait

import "runtime"

// spinDelay under the modelcheck tag yields every iteration instead of
// busy-looping, so `go test -race -tags modelcheck` exercises far more
// goroutine interleavings at the cost of throughput. The Go analogue of the
// original crate's loom cooperation points.
func spinDelay(attempts uint) uint {
	runtime.Gosched()
	return attempts + 1
}
