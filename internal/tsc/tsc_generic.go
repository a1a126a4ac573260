//go:build !amd64

package tsc

import "time"

var start = time.Now()

// now falls back to the runtime's monotonic clock on architectures
// without a corpus-grounded cycle-counter intrinsic: nanoseconds since
// package initialization. See DESIGN.md.
func now() uint64 {
	return uint64(time.Since(start))
}
