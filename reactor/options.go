package reactor

import "github.com/joeycumines/go-corexec/corexeclog"

// config holds the resolved effect of every Option passed to New, following
// the teacher's options.go shape: an Option interface wrapping an unexported
// apply method, resolved once into a private struct instead of a long
// parameter list.
type config struct {
	logger          *corexeclog.Logger
	drainBatchLimit int
}

// Option configures a Reactor at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithLogger attaches a diagnostic logger. Poller errors that Poll would
// otherwise have to silently swallow (add/modify/remove failing against an
// fd closed out from under the reactor) are logged through it, throttled by
// category so a single misbehaving source can't flood output. A nil logger
// (the default) makes these diagnostics silent, matching spec.md's "no
// required observability layer" scope.
func WithLogger(logger *corexeclog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = logger })
}

// WithChangeQueueDrainLimit caps how many pending registration changes a
// single drainChanges call applies to the OS poller before deferring the
// rest to the next drain, so a burst of concurrent Register/Reregister/
// Deregister calls from other goroutines can't starve a poll round's actual
// event dispatch behind a long run of poller syscalls. Zero (the default)
// means unlimited — every pending change is applied every round.
func WithChangeQueueDrainLimit(n int) Option {
	return optionFunc(func(c *config) { c.drainBatchLimit = n })
}

func resolveOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}
