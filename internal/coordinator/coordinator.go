// Package coordinator constructs the chosen barrier variant, spawns
// and affinitizes one worker per thread, and aggregates their results
// once the final round has been released.
package coordinator

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/chalkan3-sloth/joinbench/internal/barrier"
	"github.com/chalkan3-sloth/joinbench/internal/config"
	"github.com/chalkan3-sloth/joinbench/internal/topology"
	"github.com/chalkan3-sloth/joinbench/internal/tsc"
	"github.com/chalkan3-sloth/joinbench/internal/worker"
)

// Result is everything the telemetry layer needs to render a run.
type Result struct {
	Config       config.Config
	Outputs      []worker.Output
	ElapsedTicks uint64
	ElapsedWall  time.Duration
}

// Run builds the barrier, allocates per-thread inputs, spawns and
// affinitizes cfg.ThreadCount workers, waits for the final round, and
// returns the aggregated per-thread results.
func Run(cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := barrier.New(cfg.JoinType, cfg.ThreadCount, cfg.MwaitxCycles)
	if err != nil {
		return nil, fmt.Errorf("coordinator: constructing barrier: %w", err)
	}

	numCPU := runtime.NumCPU()
	outputs := make([]worker.Output, cfg.ThreadCount)

	var wg sync.WaitGroup
	wg.Add(cfg.ThreadCount)

	startWall := time.Now()
	startTick := tsc.Now()

	for tid := 0; tid < cfg.ThreadCount; tid++ {
		tid := tid
		input := buildInput(cfg, tid)
		go func() {
			defer wg.Done()
			if err := topology.PinCurrentGoroutine(tid % numCPU); err != nil {
				// Affinity is a placement hint, not a correctness
				// requirement; the round still completes without it.
				_ = err
			}
			worker.Run(b, tid, input, &outputs[tid])
		}()
	}

	// The barrier's own completion signal, per spec.md §4.5. wg.Wait
	// below additionally guarantees every worker goroutine has finished
	// writing its Output before this function reads it, which the
	// original C++ coordinator never guaranteed (it never joined its
	// thread handles).
	b.WaitForThreads()
	wg.Wait()

	return &Result{
		Config:       cfg,
		Outputs:      outputs,
		ElapsedTicks: tsc.Now() - startTick,
		ElapsedWall:  time.Since(startWall),
	}, nil
}

// buildInput allocates one thread's private input list: 0..K-1 when
// complexity is 0, otherwise K draws of rand()/RAND_MAX*(100+2^complexity),
// per spec.md §4.5.
func buildInput(cfg config.Config, threadID int) []uint32 {
	input := make([]uint32, cfg.InputCount)
	if cfg.Complexity == 0 {
		for i := range input {
			input[i] = uint32(i)
		}
		return input
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(threadID)))
	span := 100 + math.Pow(2, float64(cfg.Complexity))
	for i := range input {
		input[i] = uint32(rng.Float64() * span)
	}
	return input
}
