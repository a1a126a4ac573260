//go:build !amd64

package barrier

// cpuPause is a no-op on architectures without a corpus-grounded pause
// intrinsic; the spin loop still re-checks lock_color every iteration.
func cpuPause() {}
