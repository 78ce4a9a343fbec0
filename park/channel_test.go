package park

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelPark_UnparkBeforeParkLeavesATokenThatConsumesImmediately(t *testing.T) {
	p := NewChannelPark()
	p.Unpark()

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, p.Park(10*time.Second))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Park did not consume the pre-existing token immediately")
	}
}

func TestChannelPark_RepeatedUnparksCoalesceIntoOneToken(t *testing.T) {
	p := NewChannelPark()
	p.Unpark()
	p.Unpark()
	p.Unpark()

	require.NoError(t, p.Park(0))
	// The coalesced token was consumed by the call above; a second
	// zero-timeout Park must not find another one waiting.
	require.NoError(t, p.Park(0))

	select {
	case <-p.token:
		t.Fatal("expected no token left after two Park(0) calls")
	default:
	}
}

func TestChannelPark_TimesOutWithoutUnpark(t *testing.T) {
	p := NewChannelPark()
	start := time.Now()
	require.NoError(t, p.Park(20*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestChannelPark_UnparkWakesAnAlreadyBlockedPark(t *testing.T) {
	p := NewChannelPark()
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, p.Park(-1))
	}()

	time.Sleep(10 * time.Millisecond)
	p.Unpark()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unpark did not wake a blocked Park call")
	}
}
