package pool

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/joeycumines/go-corexec/corexeclog"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/park"
	"github.com/stretchr/testify/require"
)

type panicFuture struct{ value any }

func (p panicFuture) Poll(*future.Context) future.Poll { panic(p.value) }

func TestWithLogger_RecordsRecoveredPanicBeforeReraising(t *testing.T) {
	var buf strings.Builder
	logger := corexeclog.New(slog.NewTextHandler(&buf, nil))

	p := New(WithLogger(logger))
	_, err := p.Spawner().Spawn(panicFuture{value: "boom"})
	require.NoError(t, err)

	require.PanicsWithValue(t, "boom", func() {
		_ = p.Run(park.NewChannelPark())
	})

	require.Contains(t, buf.String(), "panic recovered from task poll")
	require.Contains(t, buf.String(), "boom")
}
