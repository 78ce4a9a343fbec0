// Package netio wraps a raw file descriptor registered with a reactor,
// giving it the try-then-park retry shape Futures need to read or write
// without blocking the single driving goroutine: attempt the syscall
// directly, and only park against reactor readiness if it would block.
//
// This package deliberately ships no socket types of its own — dial,
// listen and accept stay the caller's concern (satisfied in practice by
// net.TCPConn/net.TCPListener via SyscallConn); Source only needs
// something with an fd.
package netio
