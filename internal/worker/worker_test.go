package worker

import (
	"sync"
	"testing"

	"github.com/chalkan3-sloth/joinbench/internal/barrier"
	"github.com/stretchr/testify/require"
)

func TestRunCompletesAllRoundsForAllThreads(t *testing.T) {
	const n, k = 4, 6

	b, err := barrier.New(barrier.JoinDefault, n, 0)
	require.NoError(t, err)

	outs := make([]Output, n)
	var wg sync.WaitGroup
	for tid := 0; tid < n; tid++ {
		tid := tid
		input := make([]uint32, k)
		for i := range input {
			input[i] = uint32(i + 1)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			Run(b, tid, input, &outs[tid])
		}()
	}

	done := make(chan struct{})
	go func() {
		b.WaitForThreads()
		close(done)
	}()

	wg.Wait()
	<-done

	for tid, out := range outs {
		require.Equalf(t, k, out.Processed, "thread %d processed", tid)
		releaserRounds := k - out.HardWaitCount - out.SoftWaitCount
		require.GreaterOrEqualf(t, releaserRounds, 0, "thread %d", tid)
	}
}
