package channel

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired or was
	// already stopped.
	Stop() bool
}

// Scheduler schedules callbacks after a delay. The simulator never touches
// real timers directly - everything goes through this interface so tests
// can substitute a manually advanced scheduler and make every transition
// deterministic.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler delegates to time.AfterFunc.
type realScheduler struct{}

// NewScheduler returns the production scheduler backed by real timers.
func NewScheduler() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
