// Package tsc provides a monotonic high-resolution cycle counter used to
// attribute wakeup latency in the join barrier.
package tsc

// Now returns a monotonic tick. On amd64 it is backed by RDTSC; no
// serialization is performed, matching the benchmark's tolerance for
// small out-of-order reads on a single core.
func Now() uint64 {
	return now()
}
