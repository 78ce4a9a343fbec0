package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-corexec/corerr"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/park"
	"github.com/stretchr/testify/require"
)

func TestPool_RunDrivesAllSpawnedTasksToCompletion(t *testing.T) {
	p := New()

	const steps = 3
	ranCount := 0
	remaining := steps
	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		ranCount++
		if remaining <= 0 {
			return future.Ready
		}
		remaining--
		cx.Waker().Wake()
		return future.Pending
	}))
	require.NoError(t, err)

	require.NoError(t, p.Run(park.NewChannelPark()))
	require.Equal(t, steps+1, ranCount)
	require.True(t, p.localAll.IsEmpty())
}

func TestPollRound_SelfWakingTaskIsDeferredToTheNextRoundNotReEnteredImmediately(t *testing.T) {
	p := New()

	polledInFirstRound := 0
	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		polledInFirstRound++
		// An unbounded self-wake: a realistic pattern (e.g. a spin-polling
		// adapter) that must not livelock PollRound.
		cx.Waker().Wake()
		return future.Pending
	}))
	require.NoError(t, err)

	require.True(t, p.PollRound())
	require.Equal(t, 1, polledInFirstRound, "a self-waking task must be polled once per round, not drained in a loop")

	require.True(t, p.PollRound())
	require.Equal(t, 2, polledInFirstRound, "the re-queued task must be picked up by the following round")
}

func TestRun_SelfWakingTaskDoesNotHangBehindAnUnnecessaryPark(t *testing.T) {
	p := New()

	remaining := 5
	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		if remaining <= 0 {
			return future.Ready
		}
		remaining--
		cx.Waker().Wake()
		return future.Pending
	}))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(park.NewChannelPark()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run hung behind a park wait despite pending self-requeued work")
	}
}

func TestPool_SpawnFromForeignGoroutine(t *testing.T) {
	p := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
			return future.Ready
		}))
		require.NoError(t, err)
	}()
	<-done

	progressed := p.PollRound()
	require.True(t, progressed)
	require.True(t, p.localAll.IsEmpty())
}

func TestPool_SpawnAfterShutdownFails(t *testing.T) {
	p := New()
	p.Shutdown()

	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		return future.Ready
	}))
	require.True(t, corerr.Is(err, corerr.Shutdown))
}

func TestPool_PanicPropagatesPastRunAndSiblingsSurvive(t *testing.T) {
	p := New()

	siblingRan := 0
	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		siblingRan++
		return future.Pending
	}))
	require.NoError(t, err)

	_, err = p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		panic("boom")
	}))
	require.NoError(t, err)

	require.PanicsWithValue(t, "boom", func() {
		_ = p.Run(park.NewChannelPark())
	})

	require.Equal(t, 1, siblingRan)
	require.False(t, p.localAll.IsEmpty(), "the panicking task's sibling must still be linked after the panic unwinds")
}

func TestPollRound_ReinstatesUnpolledSnapshotSiblingsOnPanic(t *testing.T) {
	p := New()

	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		panic("boom")
	}))
	require.NoError(t, err)

	siblingRan := 0
	_, err = p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		siblingRan++
		return future.Ready
	}))
	require.NoError(t, err)

	require.PanicsWithValue(t, "boom", func() {
		p.PollRound()
	})
	require.Equal(t, 0, siblingRan, "the sibling had not been polled yet when the panic unwound this round")

	require.True(t, p.PollRound(), "the reinstated sibling must still be polled in a later round")
	require.Equal(t, 1, siblingRan)
}

func TestRunUntil_ReturnsWithoutDrainingRemainingTasks(t *testing.T) {
	p := New()

	taskRan := false
	task, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		taskRan = true
		return future.Ready
	}))
	require.NoError(t, err)

	driver := future.OutputFunc[int](func(cx *future.Context) (int, future.Poll) {
		return 42, future.Ready
	})

	result, err := RunUntil[int](p, park.NewChannelPark(), driver)
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.False(t, taskRan, "RunUntil must return as soon as the driver is Ready, without draining local-ready first")
	// Spawned before any driving call, the task is still waiting in the
	// global queue (not yet linked into local-all), and still alive.
	require.True(t, task.alive.Load())
}

func TestRunUntil_RunsSpawnedTasksAroundTheDriver(t *testing.T) {
	p := New()

	taskRan := false
	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		taskRan = true
		return future.Ready
	}))
	require.NoError(t, err)

	polls := 0
	driver := future.OutputFunc[string](func(cx *future.Context) (string, future.Poll) {
		polls++
		if polls < 2 {
			cx.Waker().Wake()
			return "", future.Pending
		}
		return "done", future.Ready
	})

	result, err := RunUntil[string](p, park.NewChannelPark(), driver)
	require.NoError(t, err)
	require.Equal(t, "done", result)
	require.True(t, taskRan, "a spawned task must be polled while the driver is still Pending")
}

// TestScenarioS2_PingPongBothComputationsCompleteWithoutDeadlock is spec.md
// §8's S2: two computations, A sends on a channel, B receives and
// completes, A then completes.
func TestScenarioS2_PingPongBothComputationsCompleteWithoutDeadlock(t *testing.T) {
	p := New()

	ping := make(chan string, 1)
	pong := make(chan struct{}, 1)
	sent := false
	var aCompleted, bCompleted bool

	_, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		if !sent {
			ping <- "ping"
			sent = true
		}
		select {
		case <-pong:
			aCompleted = true
			return future.Ready
		default:
			cx.Waker().Wake()
			return future.Pending
		}
	}))
	require.NoError(t, err)

	_, err = p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		select {
		case <-ping:
			bCompleted = true
			pong <- struct{}{}
			return future.Ready
		default:
			cx.Waker().Wake()
			return future.Pending
		}
	}))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(park.NewChannelPark()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ping/pong deadlocked instead of both computations completing")
	}

	require.True(t, bCompleted, "B must receive A's value and complete")
	require.True(t, aCompleted, "A must complete after observing B's ack")
}

// TestScenarioS3_ForeignWakerFiredAThousandTimesPollsExactlyOnceAfterTheLastWake
// is spec.md §8's S3: a second goroutine invokes a manually-triggered waker
// 1,000 times; the woken task polls at most 1,000 times and exactly once
// after the last wake.
func TestScenarioS3_ForeignWakerFiredAThousandTimesPollsExactlyOnceAfterTheLastWake(t *testing.T) {
	p := New()

	const wakes = 1000
	var pollCount int
	var pollsAfterLastWake int
	var wakesFinished atomic.Bool

	task, err := p.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		pollCount++
		if wakesFinished.Load() {
			pollsAfterLastWake++
			return future.Ready
		}
		return future.Pending
	}))
	require.NoError(t, err)

	// Parks the task once, off local-ready, mirroring "C parked on a
	// manually-triggered waker" in spec.md's S3.
	require.True(t, p.PollRound())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < wakes; i++ {
			task.Wake()
		}
	}()
	<-done

	wakesFinished.Store(true)
	task.Wake()

	for pollsAfterLastWake == 0 {
		p.PollRound()
	}

	require.Equal(t, 1, pollsAfterLastWake, "exactly one poll must observe completion after the final wake")
	require.LessOrEqual(t, pollCount, wakes+1, "at-most-once foreign queueing must bound total polls well under one per wake call")
}
