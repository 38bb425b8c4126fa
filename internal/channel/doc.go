// Package channel simulates the backend's persistent push channel: a
// connection lifecycle state machine with heartbeats, bounded reconnection,
// fault injection (probabilistic message loss, injected latency), and
// phased progress-event streams for long-running operations.
//
// No real transport is involved. All "network" activity is scheduled
// callbacks on a replaceable Scheduler, so tests can drive the simulator
// with a manual scheduler and observe every transition deterministically.
//
// Delivery guarantees:
//   - delivery is always asynchronous, never same-call with Send
//   - messages that survive loss injection are delivered in the order they
//     were scheduled (FIFO per channel); loss never reorders
//   - heartbeats are emitted only while the channel is Open
package channel
