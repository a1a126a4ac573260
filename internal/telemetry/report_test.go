package telemetry

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chalkan3-sloth/joinbench/internal/worker"
	"github.com/stretchr/testify/require"
)

func TestAggregateOutputsSumsAcrossThreads(t *testing.T) {
	outputs := []worker.Output{
		{ThreadID: 0, TotalIterations: 10, HardWaitCount: 1, SoftWaitCount: 2, HardWaitWakeupTicks: 100, SoftWaitWakeupTicks: 50},
		{ThreadID: 1, TotalIterations: 5, HardWaitCount: 0, SoftWaitCount: 3, HardWaitWakeupTicks: 0, SoftWaitWakeupTicks: 30},
	}
	agg := AggregateOutputs(outputs)
	require.Equal(t, uint64(15), agg.TotalIterations)
	require.Equal(t, 1, agg.TotalHardWaits)
	require.Equal(t, 5, agg.TotalSoftWaits)
	require.Equal(t, uint64(100), agg.TotalHardWaitWakeupTicks)
	require.Equal(t, uint64(80), agg.TotalSoftWaitWakeupTicks)
}

func TestDiffWakeTimeSign(t *testing.T) {
	d, sign := diffWakeTime(10, 30)
	require.Equal(t, uint64(20), d)
	require.Equal(t, "-", sign)

	d, sign = diffWakeTime(30, 10)
	require.Equal(t, uint64(20), d)
	require.Equal(t, " ", sign)
}

func TestReportEmitsOneLineSummary(t *testing.T) {
	outputs := []worker.Output{
		{ThreadID: 0, Processed: 1, TotalIterations: 3, SoftWaitCount: 1, SoftWaitWakeupTicks: 40},
		{ThreadID: 1, Processed: 1},
	}
	var buf bytes.Buffer
	agg := Report(&buf, outputs, 1, 2, 0, 1234, 5)
	require.Equal(t, uint64(3), agg.TotalIterations)
	require.True(t, strings.Contains(buf.String(), "OUT]"))
}
