//go:build amd64

package tsc

// readTSC is implemented in tsc_amd64.s using the RDTSC instruction.
func readTSC() uint64

func now() uint64 {
	return readTSC()
}
