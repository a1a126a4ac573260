package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/chalkan3-sloth/joinbench/internal/worker"
	"github.com/pterm/pterm"
)

// Aggregate sums the per-thread outputs into run-wide totals.
type Aggregate struct {
	TotalIterations          uint64
	TotalHardWaits           int
	TotalSoftWaits           int
	TotalHardWaitWakeupTicks uint64
	TotalSoftWaitWakeupTicks uint64
}

// AggregateOutputs folds outputs into their run-wide totals.
func AggregateOutputs(outputs []worker.Output) Aggregate {
	var a Aggregate
	for _, o := range outputs {
		a.TotalIterations += o.TotalIterations
		a.TotalHardWaits += o.HardWaitCount
		a.TotalSoftWaits += o.SoftWaitCount
		a.TotalHardWaitWakeupTicks += o.HardWaitWakeupTicks
		a.TotalSoftWaitWakeupTicks += o.SoftWaitWakeupTicks
	}
	return a
}

// avgAllThreads is the PrimeNumber_join.cpp AVG macro: total spread
// over inputCount*threadCount samples, +1 so a zero total still prints
// a nonzero floor (matching the original's rollup behavior).
func avgAllThreads(n uint64, inputCount, threadCount int) uint64 {
	return n/uint64(inputCount*threadCount) + 1
}

// avgPerInput is the AVG_NUMBER macro: total spread over inputCount.
func avgPerInput(n uint64, inputCount int) uint64 {
	return n/uint64(inputCount) + 1
}

// avgPerThread is the AVG_THREAD macro: total spread over threadCount.
func avgPerThread(n uint64, threadCount int) uint64 {
	return n/uint64(threadCount) + 1
}

// diffWakeTime mirrors DiffWakeTime: an unsigned difference plus a sign
// character, since the ticks are unsigned and either side may be larger.
func diffWakeTime(hard, soft uint64) (uint64, string) {
	if hard < soft {
		return soft - hard, "-"
	}
	return hard - soft, " "
}

// Report renders the per-thread table and the final pipe-separated
// one-line summary to w, per spec.md §6. The three average rollups and
// the elapsed-time line are printed through pterm.Info, which writes to
// its own output (stdout by default), not to w.
func Report(w io.Writer, outputs []worker.Output, inputCount, threadCount int, complexity int, elapsedTicks uint64, elapsedMS int64) Aggregate {
	agg := AggregateOutputs(outputs)

	tableData := pterm.TableData{{"Thread", "Iterations", "HardWait", "SoftWait", "HardWaitWakeupTicks", "SoftWaitWakeupTicks", "Diff"}}
	for _, o := range outputs {
		diff, sign := diffWakeTime(o.HardWaitWakeupTicks, o.SoftWaitWakeupTicks)
		tableData = append(tableData, []string{
			strconv.Itoa(o.ThreadID),
			strconv.FormatUint(o.TotalIterations, 10),
			strconv.Itoa(o.HardWaitCount),
			strconv.Itoa(o.SoftWaitCount),
			strconv.FormatUint(o.HardWaitWakeupTicks, 10),
			strconv.FormatUint(o.SoftWaitWakeupTicks, 10),
			sign + strconv.FormatUint(diff, 10),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).WithWriter(w).Render()

	avgIters := avgAllThreads(agg.TotalIterations, inputCount, threadCount)
	avgHard := avgAllThreads(uint64(agg.TotalHardWaits), inputCount, threadCount)
	avgSoft := avgAllThreads(uint64(agg.TotalSoftWaits), inputCount, threadCount)
	avgHardTicks := avgAllThreads(agg.TotalHardWaitWakeupTicks, inputCount, threadCount)
	avgSoftTicks := avgAllThreads(agg.TotalSoftWaitWakeupTicks, inputCount, threadCount)
	avgDiff, avgDiffSign := diffWakeTime(avgHardTicks, avgSoftTicks)

	numIters := avgPerInput(agg.TotalIterations, inputCount)
	numHard := avgPerInput(uint64(agg.TotalHardWaits), inputCount)
	numSoft := avgPerInput(uint64(agg.TotalSoftWaits), inputCount)
	numHardTicks := avgPerInput(agg.TotalHardWaitWakeupTicks, inputCount)
	numSoftTicks := avgPerInput(agg.TotalSoftWaitWakeupTicks, inputCount)
	numDiff, numDiffSign := diffWakeTime(numHardTicks, numSoftTicks)

	thrIters := avgPerThread(agg.TotalIterations, threadCount)
	thrHard := avgPerThread(uint64(agg.TotalHardWaits), threadCount)
	thrSoft := avgPerThread(uint64(agg.TotalSoftWaits), threadCount)
	thrHardTicks := avgPerThread(agg.TotalHardWaitWakeupTicks, threadCount)
	thrSoftTicks := avgPerThread(agg.TotalSoftWaitWakeupTicks, threadCount)
	thrDiff, thrDiffSign := diffWakeTime(thrHardTicks, thrSoftTicks)

	pterm.Info.Printfln("Average per input_number (all threads): Iterations=%d HardWait=%d SoftWait=%d HardWaitWakeupTime=%d SoftWaitWakeupTime=%d Diff=%s%d",
		avgIters, avgHard, avgSoft, avgHardTicks, avgSoftTicks, avgDiffSign, avgDiff)
	pterm.Info.Printfln("Average per input_number: Iterations=%d HardWait=%d SoftWait=%d HardWaitWakeupTime=%d SoftWaitWakeupTime=%d Diff=%s%d",
		numIters, numHard, numSoft, numHardTicks, numSoftTicks, numDiffSign, numDiff)
	pterm.Info.Printfln("Average per thread ran (all iterations): Iterations=%d HardWait=%d SoftWait=%d HardWaitWakeupTime=%d SoftWaitWakeupTime=%d Diff=%s%d",
		thrIters, thrHard, thrSoft, thrHardTicks, thrSoftTicks, thrDiffSign, thrDiff)
	pterm.Info.Printfln("Time taken: %d ticks (%d ms)", elapsedTicks, elapsedMS)

	fmt.Fprintf(w, "OUT]%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d\n",
		inputCount, complexity, threadCount,
		avgIters, avgHard, avgSoft, avgHardTicks, avgSoftTicks,
		numIters, numHard, numSoft, numHardTicks, numSoftTicks,
		thrIters, thrHard, thrSoft, thrHardTicks, thrSoftTicks,
		elapsedTicks, elapsedMS)

	return agg
}
