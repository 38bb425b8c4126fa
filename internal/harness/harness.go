package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/fauxwire/internal/channel"
	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
	"github.com/roach88/fauxwire/internal/intercept"
	"github.com/roach88/fauxwire/internal/scenario"
	"github.com/roach88/fauxwire/internal/trace"
)

// Options configures a Harness. The zero value gives a production-shaped
// world: real timers, UUIDv7 ids, wall-clock timestamps, no transcript.
type Options struct {
	// Scheduler drives every channel timer. Nil means real timers.
	Scheduler channel.Scheduler

	// Logger receives structured logs from all components. Nil discards.
	Logger *slog.Logger

	// Now supplies timestamps for records, envelopes, and the transcript.
	// Nil means time.Now.
	Now func() time.Time

	// Sleep applies injected bounded delays in the interceptor.
	// Nil means real sleeping.
	Sleep intercept.SleepFunc

	// IDs generates record ids. Nil means UUIDv7.
	IDs entity.IDGenerator

	// TracePath, when non-empty, opens a SQLite transcript at that path
	// (":memory:" for ephemeral) and records every exchange and channel
	// event.
	TracePath string
}

// Harness is one fully wired simulated world.
type Harness struct {
	Stores    *entity.Stores
	Faults    *fault.Registry
	Routes    *intercept.Registry
	Channel   *channel.Simulator
	Scenarios *scenario.Orchestrator

	// Trace is nil unless Options.TracePath was set.
	Trace *trace.Store

	interceptor  *intercept.Interceptor
	logger       *slog.Logger
	now          func() time.Time
	recorderDone chan struct{}
}

// New constructs a Harness. The world starts empty and disconnected; load a
// scenario (or seed the stores directly) before issuing requests.
func New(opts Options) (*Harness, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ids := opts.IDs
	if ids == nil {
		ids = entity.UUIDv7Generator{}
	}

	stores := entity.NewStores(ids)
	faults := fault.NewRegistry()

	routes := intercept.NewRegistry()
	intercept.RegisterAll(routes, stores, now)

	sim := channel.New(channel.Config{}, channel.Options{
		Scheduler: opts.Scheduler,
		Logger:    logger,
		Now:       now,
	})

	h := &Harness{
		Stores:    stores,
		Faults:    faults,
		Routes:    routes,
		Channel:   sim,
		Scenarios: scenario.NewOrchestrator(stores, faults, sim, logger),
		interceptor: intercept.New(routes, faults, intercept.Options{
			Logger: logger,
			Now:    now,
			Sleep:  opts.Sleep,
		}),
		logger: logger,
		now:    now,
	}

	if opts.TracePath != "" {
		st, err := trace.Open(opts.TracePath)
		if err != nil {
			return nil, fmt.Errorf("harness: %w", err)
		}
		h.Trace = st
		h.recorderDone = make(chan struct{})
		go h.recordChannelActivity(sim.Subscribe(), sim.StateChanges())
	}

	return h, nil
}

// Do issues one simulated request through the interceptor, recording the
// exchange in the transcript when one is configured.
func (h *Harness) Do(ctx context.Context, method, path string, body []byte) (*intercept.Response, error) {
	resp, err := h.interceptor.Do(ctx, method, path, body)

	if h.Trace != nil && resp != nil {
		h.recordExchange(method, path, body, resp)
	}
	return resp, err
}

// LoadScenario applies a named scenario and starts a fresh transcript.
func (h *Harness) LoadScenario(name string) error {
	if err := h.Scenarios.Load(name); err != nil {
		return err
	}
	if h.Trace != nil {
		if err := h.Trace.Clear(context.Background()); err != nil {
			return fmt.Errorf("harness: %w", err)
		}
	}
	return nil
}

// Reset restores the clean empty world. Idempotent.
func (h *Harness) Reset() error {
	return h.LoadScenario(scenario.BuiltinEmpty)
}

// Dispose tears the world down: channel shut down, recorder stopped,
// transcript closed. The harness is unusable afterwards.
func (h *Harness) Dispose() error {
	h.Channel.Shutdown()
	if h.recorderDone != nil {
		close(h.recorderDone)
	}
	if h.Trace != nil {
		return h.Trace.Close()
	}
	return nil
}

// recordExchange appends one request/response pair to the transcript.
// Transcript failures are logged, never surfaced - tracing must not change
// simulated behavior.
func (h *Harness) recordExchange(method, path string, body []byte, resp *intercept.Response) {
	cleanPath := path
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		cleanPath = path[:idx]
	}

	var domain fault.Domain
	var failed bool
	var delayMs int64
	if route, _, ok := h.Routes.Match(method, cleanPath); ok {
		domain = route.Domain
		cfg := h.Faults.Get(domain)
		failed = cfg.ShouldFail
		delayMs = cfg.Delay.Duration.Milliseconds()
	}

	respBody := ""
	if resp.Body != nil {
		if data, err := json.Marshal(resp.Body); err == nil {
			respBody = string(data)
		}
	}

	_, err := h.Trace.RecordExchange(context.Background(), trace.Exchange{
		Method:       method,
		Path:         path,
		Domain:       string(domain),
		Status:       resp.Status,
		RequestBody:  string(body),
		ResponseBody: respBody,
		Failed:       failed,
		DelayMs:      delayMs,
		RecordedAt:   h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("failed to record exchange", "error", err)
	}
}

// recordChannelActivity pumps delivered messages and state transitions into
// the transcript until Dispose.
func (h *Harness) recordChannelActivity(msgs <-chan channel.Message, states <-chan channel.State) {
	ctx := context.Background()
	for {
		select {
		case <-h.recorderDone:
			return
		case m := <-msgs:
			payload := ""
			if data, err := json.Marshal(m); err == nil {
				payload = string(data)
			}
			if _, err := h.Trace.RecordChannelEvent(ctx, trace.ChannelEvent{
				Kind:       trace.KindMessage,
				Detail:     string(m.Type),
				Payload:    payload,
				RecordedAt: h.now().UTC().Format(time.RFC3339),
			}); err != nil {
				h.logger.Warn("failed to record channel message", "error", err)
			}
		case st := <-states:
			if _, err := h.Trace.RecordChannelEvent(ctx, trace.ChannelEvent{
				Kind:       trace.KindState,
				Detail:     st.String(),
				RecordedAt: h.now().UTC().Format(time.RFC3339),
			}); err != nil {
				h.logger.Warn("failed to record channel state", "error", err)
			}
		}
	}
}
