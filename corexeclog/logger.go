package corexeclog

import (
	"log/slog"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Logger wraps a logiface.Logger over slog with an optional category rate
// limiter for diagnostics that could otherwise repeat once per poll round.
type Logger struct {
	*logiface.Logger[*islog.Event]

	limiter *catrate.Limiter
}

// Option configures New.
type Option func(*config)

type config struct {
	level       logiface.Level
	slogOptions []islog.Option
	rates       map[time.Duration]int
}

// WithLevel sets the minimum enabled level. Default is LevelInformational.
func WithLevel(level logiface.Level) Option {
	return func(c *config) { c.level = level }
}

// WithSlogOptions passes additional logiface-slog options (attributes,
// groups, ReplaceAttr) straight through to islog.NewLogger.
func WithSlogOptions(opts ...islog.Option) Option {
	return func(c *config) { c.slogOptions = append(c.slogOptions, opts...) }
}

// WithRateLimit enables Throttled, capping repeated diagnostics under the
// same category to the given sliding-window rates. Without this option,
// Throttled always allows.
func WithRateLimit(rates map[time.Duration]int) Option {
	return func(c *config) { c.rates = rates }
}

// New builds a Logger writing to handler.
func New(handler slog.Handler, opts ...Option) *Logger {
	cfg := config{level: logiface.LevelInformational}
	for _, opt := range opts {
		opt(&cfg)
	}

	slogOpts := append([]islog.Option{islog.WithLevel(cfg.level)}, cfg.slogOptions...)
	logger := logiface.New[*islog.Event](islog.NewLogger(handler, slogOpts...))

	l := &Logger{Logger: logger}
	if len(cfg.rates) > 0 {
		l.limiter = catrate.NewLimiter(cfg.rates)
	}
	return l
}

// Throttled reports whether an event in category should be logged now. With
// no rate limit configured it always returns true. category is typically a
// fixed string naming the diagnostic site (e.g. "reactor.poll_error"), not
// the per-event message, so repeats of the same kind of failure share one
// sliding window regardless of their details.
func (l *Logger) Throttled(category any) bool {
	if l == nil || l.limiter == nil {
		return true
	}
	_, ok := l.limiter.Allow(category)
	return ok
}
