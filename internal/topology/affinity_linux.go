//go:build linux

package topology

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentGoroutine locks the calling goroutine to its current OS
// thread and restricts that thread to the single logical CPU cpuIndex.
// The caller must not unlock the OS thread for the lifetime of the
// pinned work; workers hold the pin for their entire run.
func PinCurrentGoroutine(cpuIndex int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpuIndex)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("topology: sched_setaffinity cpu %d: %w", cpuIndex, err)
	}
	return nil
}
