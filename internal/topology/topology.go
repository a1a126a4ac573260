// Package topology reports the logical-processor layout of the host
// and applies one-thread-per-core affinity to worker goroutines.
package topology

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Info describes the processor topology the coordinator spawns workers
// against.
type Info struct {
	LogicalProcessors int
	MultiGroup        bool
}

// Detect reports the number of logical processors and whether the host
// exposes more than one processor group. Processor groups are a
// Windows NUMA/scheduling abstraction with no Linux equivalent, so on
// the platforms this repo targets MultiGroup is always false; see
// DESIGN.md.
func Detect() (Info, error) {
	n, err := cpu.Counts(true)
	if err != nil {
		return Info{}, fmt.Errorf("topology: counting logical processors: %w", err)
	}
	if n <= 0 {
		return Info{}, fmt.Errorf("topology: reported %d logical processors", n)
	}
	return Info{LogicalProcessors: n, MultiGroup: false}, nil
}
