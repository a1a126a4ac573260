package barrier

// pauseHint emits the intra-spin-loop CPU hint used by the "pause"
// family of wait disciplines (join types 1 and 2).
func pauseHint() {
	cpuPause()
}
