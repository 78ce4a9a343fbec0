// Package park provides the Park implementations the pool package blocks
// on between polling rounds: ChannelPark for pool-only workloads with no
// I/O, and ReactorPark composing a reactor.Reactor so the same drive loop
// that runs spawned tasks also services I/O readiness.
package park
