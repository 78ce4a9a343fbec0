package corecurrent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_EnterAndGet(t *testing.T) {
	r := New[int]()

	_, ok := r.Get()
	require.False(t, ok)

	var sawInside int
	var sawInsideOK bool
	r.Enter(42, func() {
		sawInside, sawInsideOK = r.Get()
	})
	require.True(t, sawInsideOK)
	require.Equal(t, 42, sawInside)

	_, ok = r.Get()
	require.False(t, ok, "slot must clear after Enter returns")
}

func TestRegistry_ClearsOnPanic(t *testing.T) {
	r := New[int]()

	require.Panics(t, func() {
		r.Enter(1, func() {
			panic("boom")
		})
	})

	_, ok := r.Get()
	require.False(t, ok, "slot must clear even when f panics")
}

func TestRegistry_NestedEntryPanics(t *testing.T) {
	r := New[int]()

	require.Panics(t, func() {
		r.Enter(1, func() {
			r.Enter(2, func() {})
		})
	})
}

func TestRegistry_PerGoroutine(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	wg.Add(2)

	ready := make(chan struct{}, 2)
	release := make(chan struct{})

	go func() {
		defer wg.Done()
		r.Enter(1, func() {
			ready <- struct{}{}
			<-release
			v, ok := r.Get()
			require.True(t, ok)
			require.Equal(t, 1, v)
		})
	}()
	go func() {
		defer wg.Done()
		r.Enter(2, func() {
			ready <- struct{}{}
			<-release
			v, ok := r.Get()
			require.True(t, ok)
			require.Equal(t, 2, v)
		})
	}()

	<-ready
	<-ready
	close(release)
	wg.Wait()
}

func TestExecutor_ReentrancyPanics(t *testing.T) {
	e := NewExecutor()
	require.Panics(t, func() {
		e.EnterExecutor(func(Token) {
			e.EnterExecutor(func(Token) {})
		})
	})
}
