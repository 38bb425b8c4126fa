package channel

import (
	"sync"
	"time"
)

type outboxItem struct {
	msg   Message
	delay time.Duration
}

// outbox is the single delivery queue for a channel.
//
// Only the head item has a live timer: a message's latency timer starts
// when it reaches the head of the queue, and the next message is scheduled
// after the head is delivered. That makes FIFO delivery structural - a
// short-delay message can never overtake a long-delay one, and loss
// (applied before enqueue) cannot reorder survivors.
//
// Thread-safety: safe for concurrent use; delivery callbacks run on the
// scheduler's goroutine without holding the lock.
type outbox struct {
	mu      sync.Mutex
	items   []outboxItem
	timer   Timer
	pending bool // head timer scheduled
	stopped bool

	sched   Scheduler
	deliver func(Message)
}

func newOutbox(sched Scheduler, deliver func(Message)) *outbox {
	return &outbox{sched: sched, deliver: deliver}
}

// Push enqueues a message for delivery after the given delay (counted from
// when it reaches the head of the queue). Never delivers synchronously:
// even a zero delay goes through the scheduler.
func (o *outbox) Push(msg Message, delay time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped {
		return
	}
	o.items = append(o.items, outboxItem{msg: msg, delay: delay})
	if !o.pending {
		o.scheduleHeadLocked()
	}
}

func (o *outbox) scheduleHeadLocked() {
	head := o.items[0]
	o.pending = true
	o.timer = o.sched.AfterFunc(head.delay, o.fire)
}

// fire delivers the head and schedules the next item, if any.
func (o *outbox) fire() {
	o.mu.Lock()
	if o.stopped || len(o.items) == 0 {
		o.pending = false
		o.mu.Unlock()
		return
	}
	msg := o.items[0].msg

	// Nil out the slot so the backing array doesn't retain the payload.
	o.items[0] = outboxItem{}
	o.items = o.items[1:]
	if len(o.items) == 0 {
		o.items = nil
		o.pending = false
	} else {
		o.scheduleHeadLocked()
	}
	deliver := o.deliver
	o.mu.Unlock()

	deliver(msg)
}

// Reset cancels the pending timer and drops all queued messages.
// The outbox remains usable afterwards.
func (o *outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.pending = false
	o.items = nil
}

// Stop is Reset plus refusing all further pushes.
func (o *outbox) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.pending = false
	o.items = nil
	o.stopped = true
}

// Len returns the number of queued, undelivered messages.
func (o *outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
