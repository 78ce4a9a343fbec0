// Package corexec is the composition root: a Runtime gluing a pool.Pool to
// a reactor.Reactor through a park.ReactorPark, mirroring the original's
// Runtime{timer_reactor, local_pool} composition (src/runtime.rs) minus the
// external timer wheel, which spec.md's Non-goals place out of scope.
package corexec

import (
	"github.com/joeycumines/go-corexec/corexeclog"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/lifecycle"
	"github.com/joeycumines/go-corexec/park"
	"github.com/joeycumines/go-corexec/pool"
	"github.com/joeycumines/go-corexec/reactor"
)

// Runtime owns one Reactor and one Pool, parked against each other: driving
// the Runtime services I/O readiness and spawned-task wakeups through the
// same blocking wait, rather than needing a separate thread per subsystem.
type Runtime struct {
	pool    *pool.Pool
	reactor *reactor.Reactor
	park    park.ReactorPark

	state *lifecycle.FastState
}

// config is resolved from Option, following the teacher's options.go shape.
type config struct {
	poolOpts    []pool.Option
	reactorOpts []reactor.Option
}

// Option configures a Runtime at construction time.
type Option func(*config)

// WithPoolOptions forwards opts to the Runtime's underlying pool.New.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(c *config) { c.poolOpts = append(c.poolOpts, opts...) }
}

// WithReactorOptions forwards opts to the Runtime's underlying reactor.New.
func WithReactorOptions(opts ...reactor.Option) Option {
	return func(c *config) { c.reactorOpts = append(c.reactorOpts, opts...) }
}

// WithLogger attaches the same diagnostic logger to both the pool and the
// reactor, which is the common case for a Runtime that wants one log
// destination rather than two.
func WithLogger(logger *corexeclog.Logger) Option {
	return func(c *config) {
		c.poolOpts = append(c.poolOpts, pool.WithLogger(logger))
		c.reactorOpts = append(c.reactorOpts, reactor.WithLogger(logger))
	}
}

// New brings up a Runtime: an OS-backed Reactor, and a Pool parked against
// it via park.ReactorPark.
func New(opts ...Option) (*Runtime, error) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r, err := reactor.New(cfg.reactorOpts...)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		pool:    pool.New(cfg.poolOpts...),
		reactor: r,
		park:    park.NewReactorPark(r),
		state:   lifecycle.New(),
	}, nil
}

// Handle is a cheap, cloneable handle for spawning work onto a Runtime,
// mirroring the original's own Handle (reactor + timer + spawner handles
// bundled together) minus the timer handle this repo doesn't carry.
type Handle struct {
	spawner pool.Spawner
}

// Handle returns a spawn handle for rt.
func (rt *Runtime) Handle() Handle {
	return Handle{spawner: rt.pool.Spawner()}
}

// Spawn queues fut for polling on the Runtime that issued this handle.
func (h Handle) Spawn(fut future.Future) (*pool.Task, error) {
	return h.spawner.Spawn(fut)
}

// Spawn is the Runtime-owning equivalent of Handle.Spawn.
func (rt *Runtime) Spawn(fut future.Future) (*pool.Task, error) {
	return rt.pool.Spawn(fut)
}

// Reactor returns rt's underlying Reactor, for registering a raw I/O source
// directly (see netio.NewSource/NewSourceFromConn) outside of any task's own
// Poll call.
func (rt *Runtime) Reactor() *reactor.Reactor { return rt.reactor }

// State reports the Runtime's current lifecycle stage.
func (rt *Runtime) State() lifecycle.State { return rt.state.Load() }

// Run drives every spawned task to completion, parking on I/O readiness
// between rounds. It returns once every spawned task, including ones
// spawned while running, has completed.
func (rt *Runtime) Run() error {
	rt.state.TryTransition(lifecycle.Created, lifecycle.Running)
	defer rt.state.TryTransition(lifecycle.Running, lifecycle.Created)
	return rt.pool.Run(rt.park)
}

// RunUntil drives driver to completion, running rt's spawned tasks and
// servicing I/O readiness around it, and returns driver's result. As with
// pool.RunUntil, tasks still pending when driver completes are left for a
// later Run/RunUntil/Spawn-and-poll call.
func RunUntil[T any](rt *Runtime, driver future.Output[T]) (T, error) {
	rt.state.TryTransition(lifecycle.Created, lifecycle.Running)
	defer rt.state.TryTransition(lifecycle.Running, lifecycle.Created)
	return pool.RunUntil[T](rt.pool, rt.park, driver)
}

// Shutdown marks the Runtime closed to new Spawn calls; see Pool.Shutdown.
// Outstanding Run/RunUntil calls keep driving already-spawned tasks and
// servicing I/O until they return on their own.
func (rt *Runtime) Shutdown() {
	rt.state.Store(lifecycle.ShuttingDown)
	rt.pool.Shutdown()
}

// Close tears down the Runtime's reactor: every registered source observes
// ReactorGone on its next poll. Call Shutdown first if outstanding
// Run/RunUntil calls should be allowed to wind down cleanly; Close alone
// does not wait for them.
func (rt *Runtime) Close() error {
	err := rt.reactor.Close()
	rt.state.Store(lifecycle.Closed)
	return err
}
