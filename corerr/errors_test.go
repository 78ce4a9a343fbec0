package corerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("epoll_wait: bad file descriptor")
	err := Wrap("reactor.poll", OS, cause)

	require.True(t, Is(err, OS))
	require.False(t, Is(err, Shutdown))
	require.ErrorIs(t, err, cause)
}

func TestError_ReactorGoneMessage(t *testing.T) {
	err := New("poll_read_ready", ReactorGone)
	require.Contains(t, err.Error(), "reactor not running anymore")
}
