//go:build !linux

package topology

import "runtime"

// PinCurrentGoroutine locks the calling goroutine to its current OS
// thread. Hard per-core affinity is only wired up for Linux
// (sched_setaffinity); on other platforms this repo settles for the
// OS-thread pin alone. See DESIGN.md.
func PinCurrentGoroutine(cpuIndex int) error {
	runtime.LockOSThread()
	return nil
}
