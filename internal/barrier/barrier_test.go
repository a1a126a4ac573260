package barrier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// runRounds drives n goroutines through rounds rounds of the barrier,
// mimicking the worker loop's contract: join, check Joined, and if so
// call Restart.
func runRounds(t *testing.T, b Barrier, n, rounds int) (releasersPerRound [][]int, hardWaits, softWaits []int) {
	t.Helper()

	releasersPerRound = make([][]int, rounds)
	var mu sync.Mutex
	hardWaits = make([]int, n)
	softWaits = make([]int, n)

	var wg sync.WaitGroup
	for tid := 0; tid < n; tid++ {
		tid := tid
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < rounds; round++ {
				_, wasHard := b.Join(round, tid)
				if b.Joined(tid) {
					mu.Lock()
					releasersPerRound[round] = append(releasersPerRound[round], tid)
					mu.Unlock()
					b.Restart(tid, round, round == rounds-1)
				} else if wasHard {
					hardWaits[tid]++
				} else {
					softWaits[tid]++
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		b.WaitForThreads()
		close(done)
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForThreads did not observe completion")
	}
	return
}

func TestExactlyOneReleaserPerRound(t *testing.T) {
	for jt := JoinDefault; jt <= JoinHardOnly; jt++ {
		jt := jt
		t.Run(jt.String(), func(t *testing.T) {
			b, err := New(jt, 6, 2000)
			require.NoError(t, err)

			releasers, _, _ := runRounds(t, b, 6, 5)
			for round, rs := range releasers {
				require.Lenf(t, rs, 1, "round %d had %d releasers, want 1", round, len(rs))
			}
		})
	}
}

func TestArithmeticAccounting(t *testing.T) {
	const n, rounds = 5, 10
	for jt := JoinDefault; jt <= JoinHardOnly; jt++ {
		jt := jt
		t.Run(jt.String(), func(t *testing.T) {
			b, err := New(jt, n, 2000)
			require.NoError(t, err)

			var mu sync.Mutex
			releaserRounds := make([]int, n)
			hardWaits := make([]int, n)
			softWaits := make([]int, n)

			var wg sync.WaitGroup
			for tid := 0; tid < n; tid++ {
				tid := tid
				wg.Add(1)
				go func() {
					defer wg.Done()
					for round := 0; round < rounds; round++ {
						_, wasHard := b.Join(round, tid)
						if b.Joined(tid) {
							mu.Lock()
							releaserRounds[tid]++
							mu.Unlock()
							b.Restart(tid, round, round == rounds-1)
						} else if wasHard {
							hardWaits[tid]++
						} else {
							softWaits[tid]++
						}
					}
				}()
			}
			wg.Wait()
			b.WaitForThreads()

			for tid := 0; tid < n; tid++ {
				total := releaserRounds[tid] + hardWaits[tid] + softWaits[tid]
				require.Equalf(t, rounds, total, "thread %d: releaser=%d hard=%d soft=%d", tid, releaserRounds[tid], hardWaits[tid], softWaits[tid])
			}
		})
	}
}

func TestSingleThreadDegenerate(t *testing.T) {
	b, err := New(JoinDefault, 1, 0)
	require.NoError(t, err)

	for round := 0; round < 8; round++ {
		iters, wasHard := b.Join(round, 0)
		require.True(t, b.Joined(0))
		require.Zero(t, iters)
		require.False(t, wasHard)
		b.Restart(0, round, round == 7)
	}
	b.WaitForThreads()
}

func TestHardOnlyNeverSoftWaits(t *testing.T) {
	b, err := New(JoinHardOnly, 4, 0)
	require.NoError(t, err)

	_, _, softWaits := runRounds(t, b, 4, 4)
	for tid, n := range softWaits {
		require.Zerof(t, n, "thread %d had soft waits under hard-only", tid)
	}
}

func TestSoftOnlyNeverHardWaits(t *testing.T) {
	for _, jt := range []JoinType{JoinPauseSoftOnly, JoinMwaitxLoopSoftOnly, JoinMwaitxNoLoopSoftOnly} {
		jt := jt
		t.Run(jt.String(), func(t *testing.T) {
			b, err := New(jt, 4, 2000)
			require.NoError(t, err)

			_, hardWaits, _ := runRounds(t, b, 4, 4)
			for tid, n := range hardWaits {
				require.Zerof(t, n, "thread %d had hard waits under soft-only join type %s", tid, jt)
			}
		})
	}
}

func TestRestartReinitializesJoinLock(t *testing.T) {
	b, err := New(JoinDefault, 3, 0)
	require.NoError(t, err)
	impl := b.(*barrier)

	// Non-releasers block until release, so they join from goroutines.
	for tid := 0; tid < 2; tid++ {
		tid := tid
		go func() { _, _ = b.Join(0, tid) }()
	}
	for impl.joinLock.Load() != 1 {
		time.Sleep(time.Millisecond)
	}
	b.Join(0, 2) // releaser
	require.True(t, b.Joined(2))
	b.Restart(2, 0, false)
	require.Equal(t, int32(3), impl.joinLock.Load())
}

func TestFinalFlagSetExactlyOnceAfterLastRound(t *testing.T) {
	b, err := New(JoinPauseSoftOnly, 2, 0)
	require.NoError(t, err)
	impl := b.(*barrier)

	require.False(t, impl.joinedP.Load())

	done := make(chan struct{})
	go func() {
		b.Join(0, 0)
		if b.Joined(0) {
			b.Restart(0, 0, false)
		}
		close(done)
	}()
	go func() {
		b.Join(0, 1)
		if b.Joined(1) {
			b.Restart(1, 0, false)
		}
	}()
	<-done
	require.False(t, impl.joinedP.Load())

	done2 := make(chan struct{})
	go func() {
		b.Join(1, 0)
		if b.Joined(0) {
			b.Restart(0, 1, true)
		}
		close(done2)
	}()
	go func() {
		b.Join(1, 1)
		if b.Joined(1) {
			b.Restart(1, 1, true)
		}
	}()
	<-done2
	b.WaitForThreads()
	require.True(t, impl.joinedP.Load())
}

func TestInvalidConstruction(t *testing.T) {
	_, err := New(0, 4, 0)
	require.Error(t, err)

	_, err = New(8, 4, 0)
	require.Error(t, err)

	_, err = New(JoinMwaitxLoop, 4, 0)
	require.Error(t, err, "mwaitx join types require a nonzero cycle budget")

	_, err = New(JoinDefault, 0, 0)
	require.Error(t, err)
}
