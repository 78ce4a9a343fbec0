package pool

import "github.com/joeycumines/go-corexec/corexeclog"

// config holds the resolved effect of every Option, following the teacher's
// options.go shape.
type config struct {
	logger *corexeclog.Logger
}

// Option configures a Pool at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithLogger attaches a diagnostic logger. Currently the only diagnostic
// this produces is a record of every panic recovered at the poll boundary,
// logged (throttled by task pointer identity would be too noisy per-task, so
// throttled by a single shared category instead) immediately before the
// panic is re-raised — spec.md's failure semantics require the re-panic
// unconditionally, so this is observability only, never a substitute for it.
func WithLogger(logger *corexeclog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = logger })
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
