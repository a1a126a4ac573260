// Package barrier implements the N-thread join barrier family: a
// lock-free rendezvous where the last arriver releases the rest, with
// seven pluggable wait disciplines: pause-hinted spin and cycle-bounded
// monitor/wait emulation (looped or single-attempt), each either
// escalating to a kernel event or respinning soft-wait-only, plus pure
// kernel blocking.
package barrier

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chalkan3-sloth/joinbench/internal/kernelevent"
	"github.com/chalkan3-sloth/joinbench/internal/tsc"
)

// SpinCount is the compile-time spin budget before a waiter escalates
// (or, in soft-wait-only variants, respins).
const SpinCount = 4096

// JoinType selects one of the seven wait disciplines, matching
// --join_type on the CLI.
type JoinType int

const (
	JoinDefault              JoinType = 1 // pause, spin loop, hard-wait escalation
	JoinPauseSoftOnly        JoinType = 2 // pause, spin loop, respin only
	JoinMwaitxLoop           JoinType = 3 // mwaitx, spin loop, hard-wait escalation
	JoinMwaitxLoopSoftOnly   JoinType = 4 // mwaitx, spin loop, respin only
	JoinMwaitxNoLoop         JoinType = 5 // mwaitx, single attempt, hard-wait escalation
	JoinMwaitxNoLoopSoftOnly JoinType = 6 // mwaitx, single attempt, respin only
	JoinHardOnly             JoinType = 7 // no spin, immediate kernel wait
)

func (jt JoinType) String() string {
	switch jt {
	case JoinDefault:
		return "default (pause, hard-wait)"
	case JoinPauseSoftOnly:
		return "pause, soft-wait only"
	case JoinMwaitxLoop:
		return "mwaitx loop, hard-wait"
	case JoinMwaitxLoopSoftOnly:
		return "mwaitx loop, soft-wait only"
	case JoinMwaitxNoLoop:
		return "mwaitx no-loop, hard-wait"
	case JoinMwaitxNoLoopSoftOnly:
		return "mwaitx no-loop, soft-wait only"
	case JoinHardOnly:
		return "hard-wait only"
	default:
		return fmt.Sprintf("unknown(%d)", int(jt))
	}
}

// RequiresMwaitxCycles reports whether this join type needs a nonzero
// --mwaitx_cycle_count.
func (jt JoinType) RequiresMwaitxCycles() bool {
	switch jt {
	case JoinMwaitxLoop, JoinMwaitxLoopSoftOnly, JoinMwaitxNoLoop, JoinMwaitxNoLoopSoftOnly:
		return true
	default:
		return false
	}
}

func (jt JoinType) usesEvent() bool {
	switch jt {
	case JoinDefault, JoinMwaitxLoop, JoinMwaitxNoLoop, JoinHardOnly:
		return true
	default:
		return false
	}
}

func (jt JoinType) valid() bool {
	return jt >= JoinDefault && jt <= JoinHardOnly
}

// Barrier is the capability every wait discipline exposes: a reusable
// N-way rendezvous.
type Barrier interface {
	// Join is called once per round by every worker. The releaser (the
	// arriver that drives the internal counter to zero) returns
	// immediately; every other arriver waits according to the
	// configured discipline. It returns the number of spin/monitor-wait
	// iterations consumed and whether the wait escalated to the kernel
	// event.
	Join(inputIndex, threadID int) (iterations uint64, wasHardWait bool)

	// Joined reports whether threadID was the releaser of the most
	// recently completed round.
	Joined(threadID int) bool

	// Restart is invoked by the releaser only, once per round, to
	// publish the release to waiters and, on the final round, to
	// signal completion to WaitForThreads.
	Restart(threadID, inputIndex int, isLastRound bool)

	// WaitForThreads blocks the coordinator (which is not an arriver)
	// until the final round's releaser has called Restart.
	WaitForThreads()

	// TicksSinceRestart returns the elapsed ticks since the most recent
	// restart, used by a freshly-released waiter to attribute wakeup
	// latency.
	TicksSinceRestart() uint64
}

// barrier is the shared implementation behind all seven join types.
// Only the wait strategy (waitFunc) differs between them.
type barrier struct {
	n            int32
	joinType     JoinType
	mwaitxCycles uint64

	joinLock   atomic.Int32
	lockColor  atomic.Int32
	releaserID atomic.Int32
	restartAt  atomic.Uint64
	joinedP    atomic.Bool

	// lastResetColor records, per round, which color's escalated
	// waiters have already reset the kernel event, so that exactly one
	// of potentially many waiters woken by Set() performs the reset.
	lastResetColor atomic.Int32

	event *kernelevent.Event

	doneMu   sync.Mutex
	doneCond *sync.Cond

	waitFunc func(colorIn int32) (uint64, bool)
}

// New constructs the join barrier variant selected by joinType for n
// arrivers. mwaitxCycles is required (and otherwise ignored) for the
// mwaitx-family join types.
func New(joinType JoinType, n int, mwaitxCycles uint64) (Barrier, error) {
	if !joinType.valid() {
		return nil, fmt.Errorf("barrier: invalid join type %d, want 1..7", int(joinType))
	}
	if n <= 0 {
		return nil, fmt.Errorf("barrier: n must be > 0, got %d", n)
	}
	if joinType.RequiresMwaitxCycles() && mwaitxCycles == 0 {
		return nil, fmt.Errorf("barrier: join type %s requires mwaitxCycles > 0", joinType)
	}

	b := &barrier{
		n:            int32(n),
		joinType:     joinType,
		mwaitxCycles: mwaitxCycles,
	}
	b.joinLock.Store(int32(n))
	b.releaserID.Store(-1)
	b.lastResetColor.Store(0)
	b.doneCond = sync.NewCond(&b.doneMu)

	if joinType.usesEvent() {
		b.event = kernelevent.New()
	}

	b.waitFunc = b.strategyFor(joinType)
	return b, nil
}

func (b *barrier) strategyFor(jt JoinType) func(int32) (uint64, bool) {
	switch jt {
	case JoinDefault:
		return func(colorIn int32) (uint64, bool) { return b.waitWithEscalation(colorIn, b.pauseSpinLoop) }
	case JoinPauseSoftOnly:
		return func(colorIn int32) (uint64, bool) { return b.waitRespinOnly(colorIn, b.pauseSpinLoop) }
	case JoinMwaitxLoop:
		return func(colorIn int32) (uint64, bool) { return b.waitWithEscalation(colorIn, b.mwaitxSpinLoop) }
	case JoinMwaitxLoopSoftOnly:
		return func(colorIn int32) (uint64, bool) { return b.waitRespinOnly(colorIn, b.mwaitxSpinLoop) }
	case JoinMwaitxNoLoop:
		return b.waitNoLoopEscalate
	case JoinMwaitxNoLoopSoftOnly:
		return b.waitNoLoopRespin
	case JoinHardOnly:
		return b.waitHardOnly
	default:
		panic("barrier: unreachable join type")
	}
}

// Join implements the Barrier interface. See spec.md §4.3.
func (b *barrier) Join(inputIndex, threadID int) (uint64, bool) {
	colorIn := b.lockColor.Load()
	if b.joinLock.Add(-1) == 0 {
		b.releaserID.Store(int32(threadID))
		return 0, false
	}

	iterations, wasHardWait := b.waitFunc(colorIn)
	if wasHardWait {
		b.maybeResetEvent()
	}
	return iterations, wasHardWait
}

func (b *barrier) Joined(threadID int) bool {
	return b.releaserID.Load() == int32(threadID)
}

// Restart implements the ordering invariant of spec.md §4.3: the
// join_lock reinitialization must precede the color bump, which must
// precede the event signal.
func (b *barrier) Restart(threadID, inputIndex int, isLastRound bool) {
	if !isLastRound {
		b.joinLock.Store(b.n)
	}
	b.restartAt.Store(tsc.Now())
	b.lockColor.Add(1)
	if b.event != nil {
		b.event.Set()
	}
	if isLastRound {
		b.doneMu.Lock()
		b.joinedP.Store(true)
		b.doneCond.Broadcast()
		b.doneMu.Unlock()
	}
}

func (b *barrier) WaitForThreads() {
	b.doneMu.Lock()
	for !b.joinedP.Load() {
		b.doneCond.Wait()
	}
	b.doneMu.Unlock()
}

func (b *barrier) TicksSinceRestart() uint64 {
	return tsc.Now() - b.restartAt.Load()
}

// maybeResetEvent ensures exactly one escalated waiter per round resets
// the manual-reset event after waking, regardless of how many waiters
// Set() broadcast to.
func (b *barrier) maybeResetEvent() {
	target := b.lockColor.Load()
	for {
		old := b.lastResetColor.Load()
		if old == target {
			return
		}
		if b.lastResetColor.CompareAndSwap(old, target) {
			b.event.Reset()
			return
		}
	}
}
