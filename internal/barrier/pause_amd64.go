//go:build amd64

package barrier

// cpuPause is implemented in pause_amd64.s using the PAUSE instruction,
// the same intra-spin hint the teacher workload would reach for on
// this architecture (YieldProcessor in the original source).
func cpuPause()
