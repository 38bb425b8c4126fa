package channel

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer is the capacity of each subscriber channel. A consumer
// that falls this far behind starts losing messages (with a warning) rather
// than wedging the scheduler.
const subscriberBuffer = 256

// Stats counts fault-injection outcomes for the channel.
type Stats struct {
	// Scheduled is the number of messages submitted for delivery.
	Scheduled int64
	// Dropped is the number of messages lost to injection.
	Dropped int64
}

// Options configures a Simulator.
type Options struct {
	// Scheduler provides timers. Nil means real timers.
	Scheduler Scheduler

	// Logger receives transition and injection logs. Nil discards.
	Logger *slog.Logger

	// Now supplies message timestamps. Nil means time.Now.
	Now func() time.Time
}

// Simulator is the push-channel connection state machine.
//
// All timers (connect, connect timeout, heartbeat, reconnect, teardown,
// progress ticks, delivery) are owned by the simulator and cancelled
// deterministically on Close, Drop, Reset, and Shutdown.
//
// Thread-safety: all methods are safe for concurrent use. Timer callbacks
// re-check state under the lock, so a stale timer that fires after a
// transition is a no-op.
type Simulator struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	attempts  int
	sessionID string
	shutdown  bool

	connectTimer   Timer
	timeoutTimer   Timer
	heartbeatTimer Timer
	reconnectTimer Timer
	teardownTimer  Timer

	progress map[string]*progressRun

	scheduled int64
	dropped   int64

	sched  Scheduler
	clock  *Clock
	outbox *outbox
	logger *slog.Logger
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	subsMu    sync.Mutex
	subs      []chan Message
	stateSubs []chan State
}

// New creates a Simulator in the Disconnected state.
func New(cfg Config, opts Options) *Simulator {
	sched := opts.Scheduler
	if sched == nil {
		sched = NewScheduler()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Simulator{
		cfg:      cfg,
		state:    Disconnected,
		progress: make(map[string]*progressRun),
		sched:    sched,
		clock:    NewClock(),
		logger:   logger,
		now:      now,
		rng:      newRNG(cfg.Seed),
	}
	s.outbox = newOutbox(sched, s.dispatch)
	return s
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// State returns the current connection state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the reconnect attempt counter. It resets to zero only
// on a successful Open transition.
func (s *Simulator) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Stats returns delivery statistics since the last Reset.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Scheduled: s.scheduled, Dropped: s.dropped}
}

// Subscribe returns a channel receiving every delivered message.
// Slow subscribers lose messages once their buffer fills.
func (s *Simulator) Subscribe() <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

// StateChanges returns a channel receiving every state transition.
func (s *Simulator) StateChanges() <-chan State {
	ch := make(chan State, subscriberBuffer)
	s.subsMu.Lock()
	s.stateSubs = append(s.stateSubs, ch)
	s.subsMu.Unlock()
	return ch
}

// Connect starts a connection attempt.
// Valid from Disconnected and ErrorState only.
func (s *Simulator) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return fmt.Errorf("channel simulator is shut down")
	}
	if s.state != Disconnected && s.state != ErrorState {
		return fmt.Errorf("connect: invalid from state %s", s.state)
	}
	s.startConnectLocked()
	return nil
}

func (s *Simulator) startConnectLocked() {
	s.sessionID = uuid.Must(uuid.NewV7()).String()
	s.setStateLocked(Connecting)

	s.connectTimer = s.sched.AfterFunc(s.cfg.connectDelay(), s.onConnectArrived)
	if s.cfg.ConnectTimeoutMs > 0 {
		s.timeoutTimer = s.sched.AfterFunc(s.cfg.connectTimeout(), s.onConnectTimeout)
	}
}

func (s *Simulator) onConnectArrived() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connecting {
		return
	}
	s.stopTimerLocked(&s.timeoutTimer)
	s.connectTimer = nil

	s.attempts = 0
	s.setStateLocked(Open)
	s.scheduleHeartbeatLocked()
	s.enqueueLocked(Message{
		Type: TypeConnectionConfirmed,
		Data: ConfirmedData{SessionID: s.sessionID},
	}, s.cfg.messageDelay())
}

func (s *Simulator) onConnectTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connecting {
		return
	}
	s.stopTimerLocked(&s.connectTimer)
	s.timeoutTimer = nil

	s.logger.Warn("connect attempt timed out", "session", s.sessionID)
	s.setStateLocked(ErrorState)
	s.setStateLocked(Disconnected)
	s.maybeReconnectLocked()
}

// Close performs an orderly shutdown of an Open channel: the state flips
// to Closing synchronously and every pending timer owned by the channel
// (heartbeat, reconnect, progress) is cancelled before the close event
// fires.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		s.logger.Debug("close ignored", "state", s.state.String())
		return
	}

	s.cancelOwnedTimersLocked()
	s.setStateLocked(Closing)
	s.enqueueLocked(Message{Type: TypeConnectionClosing}, s.cfg.messageDelay())
	s.teardownTimer = s.sched.AfterFunc(s.cfg.teardownDelay(), s.onTeardown)
}

func (s *Simulator) onTeardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Closing {
		return
	}
	s.teardownTimer = nil
	s.outbox.Reset()
	s.setStateLocked(Disconnected)
}

// Drop simulates a transport-level connection loss.
// Valid while Open or Connecting; schedules a bounded reconnect when
// configured.
func (s *Simulator) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open && s.state != Connecting {
		s.logger.Debug("drop ignored", "state", s.state.String())
		return
	}

	s.cancelOwnedTimersLocked()
	s.stopTimerLocked(&s.connectTimer)
	s.stopTimerLocked(&s.timeoutTimer)
	s.outbox.Reset()
	s.setStateLocked(Disconnected)
	s.maybeReconnectLocked()
}

// maybeReconnectLocked schedules a reconnect if configured and the attempt
// budget is not exhausted. The counter itself increments when the timer
// fires (on the transition into Connecting).
func (s *Simulator) maybeReconnectLocked() {
	if !s.cfg.AutoReconnect || s.attempts >= s.cfg.MaxReconnectAttempts {
		return
	}
	s.setStateLocked(Reconnecting)
	s.reconnectTimer = s.sched.AfterFunc(s.cfg.reconnectDelay(), s.onReconnect)
}

func (s *Simulator) onReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Reconnecting {
		return
	}
	s.reconnectTimer = nil
	s.attempts++
	s.logger.Info("reconnecting", "attempt", s.attempts, "max", s.cfg.MaxReconnectAttempts)
	s.startConnectLocked()
}

// Send schedules an application message for delivery, subject to loss and
// latency injection. Messages sent while the channel is not Open are
// discarded (there is no transport to carry them).
func (s *Simulator) Send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		s.logger.Debug("send ignored", "state", s.state.String(), "type", string(msg.Type))
		return
	}
	s.enqueueLocked(msg, s.cfg.messageDelay())
}

// SendDelayed is Send with an explicit per-call latency override.
func (s *Simulator) SendDelayed(msg Message, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		s.logger.Debug("send ignored", "state", s.state.String(), "type", string(msg.Type))
		return
	}
	s.enqueueLocked(msg, delay)
}

// InjectError delivers an application-level error message while the
// channel stays Open - a protocol error, distinct from a transport drop.
func (s *Simulator) InjectError(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		s.logger.Debug("inject error ignored", "state", s.state.String())
		return
	}
	s.enqueueLocked(Message{
		Type: TypeError,
		Data: ErrorData{Code: code, Message: message},
	}, s.cfg.messageDelay())
}

// enqueueLocked applies the two delivery injections in order: first
// probabilistic loss, then latency via the FIFO outbox.
func (s *Simulator) enqueueLocked(msg Message, delay time.Duration) {
	s.scheduled++
	if s.lossy() {
		s.dropped++
		s.logger.Debug("message dropped by loss injection", "type", string(msg.Type))
		return
	}
	msg.Seq = s.clock.Next()
	msg.Timestamp = s.now().UTC().Format(time.RFC3339)
	s.outbox.Push(msg, delay)
}

func (s *Simulator) lossy() bool {
	p := s.cfg.MessageLossPercent
	if p <= 0 {
		return false
	}
	if p >= 100 {
		return true
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()*100 < p
}

func (s *Simulator) scheduleHeartbeatLocked() {
	if s.cfg.HeartbeatIntervalMs <= 0 {
		return
	}
	s.heartbeatTimer = s.sched.AfterFunc(s.cfg.heartbeatInterval(), s.onHeartbeat)
}

func (s *Simulator) onHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Heartbeats exist only in the Open state; a stale timer firing after
	// a transition does nothing.
	if s.state != Open {
		return
	}
	s.enqueueLocked(Message{Type: TypeHeartbeat}, s.cfg.messageDelay())
	s.scheduleHeartbeatLocked()
}

// Reset cancels every timer, drops all pending and in-flight state, and
// returns the simulator to Disconnected with the given configuration.
// Subscribers stay attached. Used by the scenario orchestrator between
// test cases.
func (s *Simulator) Reset(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelOwnedTimersLocked()
	s.stopTimerLocked(&s.connectTimer)
	s.stopTimerLocked(&s.timeoutTimer)
	s.stopTimerLocked(&s.teardownTimer)
	s.outbox.Reset()

	s.cfg = cfg
	s.state = Disconnected
	s.attempts = 0
	s.sessionID = ""
	s.scheduled = 0
	s.dropped = 0
	s.shutdown = false
	s.clock = NewClock()

	s.rngMu.Lock()
	s.rng = newRNG(cfg.Seed)
	s.rngMu.Unlock()
}

// Shutdown tears the simulator down for good: all timers cancelled, all
// further operations rejected. Used on harness disposal.
func (s *Simulator) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelOwnedTimersLocked()
	s.stopTimerLocked(&s.connectTimer)
	s.stopTimerLocked(&s.timeoutTimer)
	s.stopTimerLocked(&s.teardownTimer)
	s.outbox.Stop()
	s.state = Disconnected
	s.shutdown = true
}

// cancelOwnedTimersLocked stops the heartbeat, reconnect, and progress
// timers - the set that must be dead before any close event fires.
func (s *Simulator) cancelOwnedTimersLocked() {
	s.stopTimerLocked(&s.heartbeatTimer)
	s.stopTimerLocked(&s.reconnectTimer)
	for id, run := range s.progress {
		run.stop()
		delete(s.progress, id)
	}
}

func (s *Simulator) stopTimerLocked(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (s *Simulator) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("state transition", "from", s.state.String(), "to", next.String())
	s.state = next

	s.subsMu.Lock()
	subs := make([]chan State, len(s.stateSubs))
	copy(subs, s.stateSubs)
	s.subsMu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- next:
		default:
		}
	}
}

// dispatch fans a delivered message out to subscribers.
// Runs on the scheduler goroutine, never under s.mu.
func (s *Simulator) dispatch(msg Message) {
	s.subsMu.Lock()
	subs := make([]chan Message, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
			s.logger.Warn("subscriber buffer full, message lost", "type", string(msg.Type))
		}
	}
}
