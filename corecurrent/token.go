package corecurrent

// Token is proof that the holder is running inside an EnterExecutor call on
// the goroutine that owns it; the pool's driving calls (Pool.Run,
// pool.RunUntil) obtain one this way. Park implementations do not take a
// Token. Token is deliberately uncopyable-by-value
// in spirit (it carries no data worth copying) but Go has no move-only
// types, so the enforcement is by convention: only EnterExecutor produces
// one.
type Token struct {
	_ [0]func() // makes Token non-comparable with ==, discouraging storage/reuse
}

// Executor is a per-registry reentrancy guard: EnterExecutor panics if the
// calling goroutine is already inside a call to EnterExecutor on the same
// Executor.
type Executor struct {
	reg *Registry[struct{}]
}

// NewExecutor returns a fresh reentrancy guard.
func NewExecutor() *Executor {
	return &Executor{reg: New[struct{}]()}
}

// EnterExecutor runs f with a Token proving single-entry on this goroutine,
// panicking if the calling goroutine is already inside an EnterExecutor call
// on this Executor.
func (e *Executor) EnterExecutor(f func(Token)) {
	e.reg.Enter(struct{}{}, func() {
		f(Token{})
	})
}
