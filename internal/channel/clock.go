package channel

import "sync/atomic"

// Clock is a monotonic logical clock stamping delivered messages.
//
// All delivered messages carry a strictly increasing seq from this clock,
// which makes FIFO delivery checkable in tests and trace records without
// relying on wall-clock timestamps.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
