package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/fauxwire/internal/channel"
)

// ManualScheduler implements channel.Scheduler over virtual time.
//
// Nothing fires until the test calls Advance; Advance runs every callback
// due within the window in deadline order (insertion order on ties), so a
// full connection lifecycle can be driven deterministically with no real
// sleeping and no race-prone timing assumptions.
//
// Thread-safety: All methods are safe for concurrent use. Callbacks run on
// the goroutine calling Advance, without the scheduler lock held, so they
// may schedule further timers.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int64
	pending []*manualTimer
}

type manualTimer struct {
	sched   *ManualScheduler
	at      time.Duration
	seq     int64
	fn      func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers f to run once virtual time advances by d.
// A non-positive d fires on the next Advance call.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) channel.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{sched: m, at: m.now + d, seq: m.seq, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// Stop cancels the timer. Returns false if it already fired or was stopped.
func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves virtual time forward by d, firing every due callback in
// deadline order. Callbacks scheduled during Advance also fire if their
// deadline falls within the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		t := m.popDueLocked(target)
		if t == nil {
			break
		}
		if t.at > m.now {
			m.now = t.at
		}
		m.mu.Unlock()
		t.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// popDueLocked removes and returns the earliest live timer with a deadline
// at or before target, or nil if none is due.
func (m *ManualScheduler) popDueLocked(target time.Duration) *manualTimer {
	m.compactLocked()
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	head := m.pending[0]
	if head.at > target {
		return nil
	}
	head.fired = true
	m.pending = m.pending[1:]
	return head
}

func (m *ManualScheduler) compactLocked() {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.pending = live
}

// Pending returns the number of live, unfired timers.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compactLocked()
	return len(m.pending)
}

// Now returns the current virtual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
