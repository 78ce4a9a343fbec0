// Package corexeclog is the diagnostic logging surface shared by pool and
// reactor: a logiface.Logger over slog, plus a category rate limiter so a
// misbehaving source or task can't flood output with the same warning on
// every poll round.
//
// Nothing in pool or reactor requires a logger to function — both packages
// work perfectly well with a nil *Logger, silently dropping diagnostics.
// Logging is strictly for human observability, never control flow.
package corexeclog
