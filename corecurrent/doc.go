// Package corecurrent implements the scoped "current handle" registry used
// by the reactor and the pool to let code running on their owning goroutine
// look up the handle of the subsystem driving it, without threading it
// through every call explicitly.
//
// Go has no thread-local storage and goroutines are not pinned to OS
// threads, so "current thread" is approximated by goroutine identity,
// extracted the same way the teacher package does it: parsing the goroutine
// ID out of a runtime.Stack dump. Since this runtime's whole premise is one
// goroutine driving one pool/reactor pair for its lifetime, that's a strict
// upgrade in precision over "whichever OS thread happens to be running
// this". Each goroutine has its own slot: a nested Enter on one goroutine
// panics, while two different goroutines may each hold an entry in the
// same registry at once.
package corecurrent
