package channel

import (
	"fmt"
	"time"
)

// Progress phases, in the fixed order every simulated long-running
// operation moves through.
const (
	PhaseDiscovery  = "discovery"
	PhaseProcessing = "processing"
	PhaseCleanup    = "cleanup"
	PhaseCompleted  = "completed"
)

// ProgressRecord is the structured status of a long-running operation,
// emitted as a channel message on every tick.
//
// INVARIANT: PercentComplete is monotonically non-decreasing while
// IsActive, and equals exactly 100 when Phase is completed.
type ProgressRecord struct {
	SubjectID        string   `json:"subject_id"`
	Phase            string   `json:"phase"`
	PhaseDescription string   `json:"phase_description,omitempty"`
	ElapsedSeconds   int64    `json:"elapsed_time"`
	UnitsFound       int64    `json:"units_found"`
	UnitsProcessed   int64    `json:"units_processed"`
	PercentComplete  int      `json:"percent_complete"`
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	IsActive         bool     `json:"is_active"`
}

func (r ProgressRecord) clone() ProgressRecord {
	c := r
	if r.Errors != nil {
		c.Errors = append([]string(nil), r.Errors...)
	}
	if r.Warnings != nil {
		c.Warnings = append([]string(nil), r.Warnings...)
	}
	return c
}

// ProgressScenario configures a simulated long-running operation.
type ProgressScenario struct {
	// Kind selects the message type: TypeProgress (default),
	// TypeUploadProgress, or TypeRecognitionProgress.
	Kind MessageType

	// TickInterval is the period between emitted updates.
	TickInterval time.Duration

	// UnitsFound is the total reported by the discovery phase.
	// UnitsPerTick is how many units each processing tick completes.
	UnitsFound   int64
	UnitsPerTick int64

	// Warnings, if set, are attached to the record once processing starts.
	Warnings []string
}

func (ps ProgressScenario) normalized() ProgressScenario {
	if ps.Kind == "" {
		ps.Kind = TypeProgress
	}
	if ps.TickInterval <= 0 {
		ps.TickInterval = 100 * time.Millisecond
	}
	if ps.UnitsFound <= 0 {
		ps.UnitsFound = 10
	}
	if ps.UnitsPerTick <= 0 {
		ps.UnitsPerTick = 1
	}
	return ps
}

// Percent waypoints for the non-processing phases. Processing interpolates
// between discoveryPercent and cleanupPercent by units processed.
const (
	discoveryPercent = 10
	cleanupPercent   = 95
)

type progressRun struct {
	rec      ProgressRecord
	scenario ProgressScenario
	ticks    int64
	timer    Timer
	stopped  bool
}

func (r *progressRun) stop() {
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// StartProgress begins a phased progress stream for the given subject.
// The record advances discovery -> processing -> cleanup -> completed on a
// fixed tick, emitting one message per tick, and the run removes itself
// when it completes. Requires an Open channel.
func (s *Simulator) StartProgress(subjectID string, ps ProgressScenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return fmt.Errorf("channel simulator is shut down")
	}
	if s.state != Open {
		return fmt.Errorf("start progress: channel is %s, not open", s.state)
	}
	if _, exists := s.progress[subjectID]; exists {
		return fmt.Errorf("progress already running for subject %q", subjectID)
	}

	run := &progressRun{
		scenario: ps.normalized(),
		rec: ProgressRecord{
			SubjectID:        subjectID,
			Phase:            PhaseDiscovery,
			PhaseDescription: "discovering items",
			IsActive:         true,
		},
	}
	s.progress[subjectID] = run

	// The initial record goes out immediately; subsequent ticks advance it.
	s.enqueueLocked(Message{Type: run.scenario.Kind, Data: run.rec.clone()}, s.cfg.messageDelay())
	run.timer = s.sched.AfterFunc(run.scenario.TickInterval, func() { s.onProgressTick(subjectID) })
	return nil
}

// StopProgress cancels the ticking timer for a subject, leaving the last
// emitted record as-is. Useful for testing interrupted operations.
func (s *Simulator) StopProgress(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.progress[subjectID]
	if !ok {
		return
	}
	run.stop()
	delete(s.progress, subjectID)
}

func (s *Simulator) onProgressTick(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.progress[subjectID]
	if !ok || run.stopped || s.state != Open {
		return
	}

	run.ticks++
	run.rec.ElapsedSeconds = run.ticks * int64(run.scenario.TickInterval/time.Second)
	run.advance()

	s.enqueueLocked(Message{Type: run.scenario.Kind, Data: run.rec.clone()}, s.cfg.messageDelay())

	if run.rec.Phase == PhaseCompleted {
		run.stop()
		delete(s.progress, subjectID)
		return
	}
	run.timer = s.sched.AfterFunc(run.scenario.TickInterval, func() { s.onProgressTick(subjectID) })
}

// advance moves the record one tick forward through the phase sequence.
func (r *progressRun) advance() {
	switch r.rec.Phase {
	case PhaseDiscovery:
		r.rec.UnitsFound = r.scenario.UnitsFound
		r.rec.Phase = PhaseProcessing
		r.rec.PhaseDescription = "processing items"
		r.rec.PercentComplete = discoveryPercent
		if len(r.scenario.Warnings) > 0 {
			r.rec.Warnings = append([]string(nil), r.scenario.Warnings...)
		}
	case PhaseProcessing:
		r.rec.UnitsProcessed += r.scenario.UnitsPerTick
		if r.rec.UnitsProcessed >= r.rec.UnitsFound {
			r.rec.UnitsProcessed = r.rec.UnitsFound
			r.rec.Phase = PhaseCleanup
			r.rec.PhaseDescription = "cleaning up"
			r.rec.PercentComplete = cleanupPercent
			return
		}
		span := int64(cleanupPercent - discoveryPercent)
		r.rec.PercentComplete = discoveryPercent + int(span*r.rec.UnitsProcessed/r.rec.UnitsFound)
	case PhaseCleanup:
		r.rec.Phase = PhaseCompleted
		r.rec.PhaseDescription = "completed"
		r.rec.PercentComplete = 100
		r.rec.IsActive = false
	}
}
