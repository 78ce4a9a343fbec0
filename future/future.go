// Package future defines the lazily-polled computation contract the pool
// and the reactor are built around: a Future is polled with a Context
// carrying a Waker, and returns either Ready or Pending. There is no
// built-in language support for this in Go (unlike Rust's std::task), so it
// is spelled out here as a small set of exported interfaces rather than
// hidden inside the pool package, letting netio and reactor depend on Waker
// without depending on the pool itself.
package future

// Poll is the result of polling a Future once.
type Poll uint8

const (
	// Pending means the Future made no further progress and must be polled
	// again only after its registered waker fires.
	Pending Poll = iota
	// Ready means the Future has completed.
	Ready
)

func (p Poll) String() string {
	if p == Ready {
		return "Ready"
	}
	return "Pending"
}

// Waker is a thread-safe, idempotent wake callable. Wake may be called any
// number of times, from any goroutine, before, during or after the poll
// that registered it; the only guarantee is that it will cause the
// corresponding computation to be polled again at least once thereafter.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to Waker.
type WakerFunc func()

// Wake implements Waker.
func (f WakerFunc) Wake() { f() }

// Context is passed to Poll; it carries the Waker the Future should
// register with whatever it's waiting on before returning Pending.
type Context struct {
	waker Waker
}

// NewContext returns a Context wrapping the given waker.
func NewContext(waker Waker) *Context {
	return &Context{waker: waker}
}

// Waker returns the context's registered waker.
func (c *Context) Waker() Waker { return c.waker }

// Future is a lazily-polled unit of work producing unit (no value) when
// complete. This is the shape spawned onto a Pool.
type Future interface {
	Poll(cx *Context) Poll
}

// FutureFunc adapts a poll function to Future, for simple computations that
// need no extra state beyond closure captures.
type FutureFunc func(cx *Context) Poll

// Poll implements Future.
func (f FutureFunc) Poll(cx *Context) Poll { return f(cx) }

// Output is a Future that produces a value of type T on completion. This is
// the shape accepted by pool.RunUntil, whose driving future is allowed an
// arbitrary result rather than the unit output spawned computations give.
type Output[T any] interface {
	Poll(cx *Context) (T, Poll)
}

// OutputFunc adapts a poll function to Output[T].
type OutputFunc[T any] func(cx *Context) (T, Poll)

// Poll implements Output[T].
func (f OutputFunc[T]) Poll(cx *Context) (T, Poll) { return f(cx) }
