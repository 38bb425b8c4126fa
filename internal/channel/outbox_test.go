package channel

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSched is a minimal manually fired scheduler for in-package tests.
// The full manual scheduler lives in testutil; it cannot be used here
// because it imports this package.
type fakeSched struct {
	mu      sync.Mutex
	seq     int64
	now     time.Duration
	pending []*fakeTimer
}

type fakeTimer struct {
	s       *fakeSched
	at      time.Duration
	seq     int64
	fn      func()
	stopped bool
	fired   bool
}

func (s *fakeSched) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.pending = append(s.pending, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeSched) advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		live := s.pending[:0]
		for _, t := range s.pending {
			if !t.stopped {
				live = append(live, t)
			}
		}
		s.pending = live
		sort.SliceStable(s.pending, func(i, j int) bool {
			if s.pending[i].at != s.pending[j].at {
				return s.pending[i].at < s.pending[j].at
			}
			return s.pending[i].seq < s.pending[j].seq
		})
		if len(s.pending) == 0 || s.pending[0].at > target {
			break
		}
		head := s.pending[0]
		s.pending = s.pending[1:]
		head.fired = true
		if head.at > s.now {
			s.now = head.at
		}
		s.mu.Unlock()
		head.fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *fakeSched) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func TestOutbox_DeliversAfterDelay(t *testing.T) {
	sched := &fakeSched{}
	var got []Message
	o := newOutbox(sched, func(m Message) { got = append(got, m) })

	o.Push(Message{Type: TypeHeartbeat}, 10*time.Millisecond)

	sched.advance(9 * time.Millisecond)
	assert.Empty(t, got)

	sched.advance(1 * time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, TypeHeartbeat, got[0].Type)
}

func TestOutbox_NeverDeliversSynchronously(t *testing.T) {
	sched := &fakeSched{}
	var got []Message
	o := newOutbox(sched, func(m Message) { got = append(got, m) })

	o.Push(Message{Type: TypeHeartbeat}, 0)
	assert.Empty(t, got, "zero delay still goes through the scheduler")

	sched.advance(0)
	assert.Len(t, got, 1)
}

func TestOutbox_FIFOUnderMixedDelays(t *testing.T) {
	sched := &fakeSched{}
	var got []Message
	o := newOutbox(sched, func(m Message) { got = append(got, m) })

	// A slow head must not be overtaken by fast followers.
	o.Push(Message{Type: TypeProgress, Seq: 1}, 50*time.Millisecond)
	o.Push(Message{Type: TypeProgress, Seq: 2}, 1*time.Millisecond)
	o.Push(Message{Type: TypeProgress, Seq: 3}, 5*time.Millisecond)

	sched.advance(time.Second)

	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, int64(3), got[2].Seq)
}

func TestOutbox_HeadDelayCountsFromHeadPosition(t *testing.T) {
	sched := &fakeSched{}
	var at []time.Duration
	o := newOutbox(sched, func(Message) { at = append(at, sched.now) })

	o.Push(Message{Seq: 1}, 10*time.Millisecond)
	o.Push(Message{Seq: 2}, 10*time.Millisecond)

	sched.advance(time.Second)

	require.Len(t, at, 2)
	assert.Equal(t, 10*time.Millisecond, at[0])
	assert.Equal(t, 20*time.Millisecond, at[1], "second delay starts after first delivery")
}

func TestOutbox_ResetDropsPending(t *testing.T) {
	sched := &fakeSched{}
	var got []Message
	o := newOutbox(sched, func(m Message) { got = append(got, m) })

	o.Push(Message{Seq: 1}, 10*time.Millisecond)
	o.Push(Message{Seq: 2}, 10*time.Millisecond)
	o.Reset()

	sched.advance(time.Second)
	assert.Empty(t, got)
	assert.Equal(t, 0, o.Len())

	// Still usable afterwards.
	o.Push(Message{Seq: 3}, 5*time.Millisecond)
	sched.advance(5 * time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].Seq)
}

func TestOutbox_StopRefusesPushes(t *testing.T) {
	sched := &fakeSched{}
	var got []Message
	o := newOutbox(sched, func(m Message) { got = append(got, m) })

	o.Stop()
	o.Push(Message{Seq: 1}, 0)

	sched.advance(time.Second)
	assert.Empty(t, got)
}
