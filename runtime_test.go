package corexec

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/joeycumines/go-corexec/corexeclog"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/lifecycle"
	"github.com/joeycumines/go-corexec/reactor"
	"github.com/stretchr/testify/require"
)

type fdSource int

func (f fdSource) Fd() int { return int(f) }

func TestNew_StartsInCreatedState(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	require.Equal(t, lifecycle.Created, rt.State())
}

func TestRun_DrivesEverySpawnedTaskToCompletionThenReturnsToCreated(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	var polled, completed bool
	_, err = rt.Spawn(future.FutureFunc(func(cx *future.Context) future.Poll {
		if !polled {
			polled = true
			cx.Waker().Wake()
			return future.Pending
		}
		completed = true
		return future.Ready
	}))
	require.NoError(t, err)

	require.NoError(t, rt.Run())
	require.True(t, polled)
	require.True(t, completed)
	require.Equal(t, lifecycle.Created, rt.State())
}

func TestHandle_SpawnQueuesWorkOnTheIssuingRuntime(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	h := rt.Handle()
	done := false
	_, err = h.Spawn(future.FutureFunc(func(*future.Context) future.Poll {
		done = true
		return future.Ready
	}))
	require.NoError(t, err)

	require.NoError(t, rt.Run())
	require.True(t, done)
}

func TestRunUntil_ReturnsTheDriversResultWithoutWaitingForSiblingTasks(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	never, err := rt.Spawn(future.FutureFunc(func(*future.Context) future.Poll {
		return future.Pending
	}))
	require.NoError(t, err)
	require.NotNil(t, never)

	result, err := RunUntil(rt, future.OutputFunc[int](func(*future.Context) (int, future.Poll) {
		return 42, future.Ready
	}))
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, lifecycle.Created, rt.State())
}

func TestShutdown_FailsSubsequentSpawnsButLeavesAlreadyQueuedWorkRunnable(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	done := false
	_, err = rt.Spawn(future.FutureFunc(func(*future.Context) future.Poll {
		done = true
		return future.Ready
	}))
	require.NoError(t, err)

	rt.Shutdown()
	require.Equal(t, lifecycle.ShuttingDown, rt.State())

	_, err = rt.Spawn(future.FutureFunc(func(*future.Context) future.Poll { return future.Ready }))
	require.Error(t, err)

	require.NoError(t, rt.Run())
	require.True(t, done)
}

func TestClose_MovesToClosedAndIsIdempotent(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	require.Equal(t, lifecycle.Closed, rt.State())
	require.NoError(t, rt.Close())
}

func TestWithLogger_AttachesTheSameLoggerToPoolAndReactor(t *testing.T) {
	var buf strings.Builder
	logger := corexeclog.New(slog.NewTextHandler(&buf, nil))

	rt, err := New(WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	require.NotNil(t, rt.Reactor())

	// Pool side: a panic recovered from a task poll is logged before it is
	// re-raised.
	_, err = rt.Spawn(future.FutureFunc(func(*future.Context) future.Poll { panic("boom") }))
	require.NoError(t, err)
	require.Panics(t, func() { _ = rt.Run() })
	require.Contains(t, buf.String(), "panic recovered from task poll")

	// Reactor side: a poller syscall failing against a closed fd is logged.
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = pw.Close() })
	reg, err := rt.Reactor().Register(fdSource(pr.Fd()), reactor.EventRead, 0)
	require.NoError(t, err)
	require.NoError(t, rt.Reactor().Poll(0))
	require.NoError(t, pr.Close())
	require.NoError(t, rt.Reactor().Reregister(reg, reactor.EventRead, reactor.EventWrite))
	require.NoError(t, rt.Reactor().Poll(0))
	require.Contains(t, buf.String(), "op=modify")
}
