package scenario

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/fauxwire/internal/channel"
	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

// Orchestrator applies scenarios to a world: entity stores, fault registry,
// and channel simulator together. A load is atomic from the caller's point
// of view - no request should ever observe half of one scenario and half of
// another, so concurrent loads are rejected rather than interleaved.
type Orchestrator struct {
	stores *entity.Stores
	faults *fault.Registry
	sim    *channel.Simulator
	logger *slog.Logger

	mu      sync.Mutex
	loading bool
	current string
	custom  map[string]*Scenario
}

// NewOrchestrator wires an orchestrator over the given world. A nil logger
// discards.
func NewOrchestrator(stores *entity.Stores, faults *fault.Registry, sim *channel.Simulator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		stores: stores,
		faults: faults,
		sim:    sim,
		logger: logger,
		custom: make(map[string]*Scenario),
	}
}

// Names returns every loadable scenario name: the builtin catalog in
// presentation order followed by custom definitions sorted by name.
func (o *Orchestrator) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := make([]string, 0, len(BuiltinNames)+len(o.custom))
	names = append(names, BuiltinNames...)

	customs := make([]string, 0, len(o.custom))
	for name := range o.custom {
		customs = append(customs, name)
	}
	sort.Strings(customs)
	return append(names, customs...)
}

// Get returns the definition of a named scenario.
func (o *Orchestrator) Get(name string) (*Scenario, error) {
	if sc, ok := builtins()[name]; ok {
		return sc, nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if sc, ok := o.custom[name]; ok {
		return sc, nil
	}
	return nil, errUnknown(name)
}

// Current returns the name of the last successfully loaded scenario,
// or empty if nothing has been loaded yet.
func (o *Orchestrator) Current() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// DefineCustom registers a scenario under its own name. Names are single
// assignment: redefining a builtin or an existing custom scenario is an
// error rather than a silent overwrite.
func (o *Orchestrator) DefineCustom(sc *Scenario) error {
	if err := sc.validate(); err != nil {
		return err
	}
	if _, isBuiltin := builtins()[sc.Name]; isBuiltin {
		return errRedefined(sc.Name)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.custom[sc.Name]; exists {
		return errRedefined(sc.Name)
	}
	o.custom[sc.Name] = sc
	return nil
}

// DefineCustomFile loads a scenario YAML file and registers it.
func (o *Orchestrator) DefineCustomFile(path string) (*Scenario, error) {
	sc, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := o.DefineCustom(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Load applies the named scenario: entities, session, settings, faults,
// and channel config all replaced in one step. Only one load may run at a
// time; a second concurrent load fails with LOAD_IN_PROGRESS.
func (o *Orchestrator) Load(name string) error {
	sc, err := o.Get(name)
	if err != nil {
		return err
	}

	if err := o.beginLoad(name); err != nil {
		return err
	}
	o.apply(sc)
	o.endLoad(name)

	o.logger.Info("scenario loaded", "scenario", name)
	return nil
}

func (o *Orchestrator) beginLoad(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loading {
		return errLoadInProgress(name)
	}
	o.loading = true
	return nil
}

func (o *Orchestrator) endLoad(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false
	o.current = name
}

// Reset restores the clean world. Equivalent to loading "empty".
func (o *Orchestrator) Reset() error {
	return o.Load(BuiltinEmpty)
}

// apply pushes one scenario into the world. The channel resets last so any
// messages enqueued by store seeding (there are none today) could never
// leak across scenarios.
func (o *Orchestrator) apply(sc *Scenario) {
	o.stores.ResetAll()
	o.stores.Documents.ReplaceAll(sc.Entities.Documents)
	o.stores.Users.ReplaceAll(sc.Entities.Users)
	o.stores.Sources.ReplaceAll(sc.Entities.Sources)
	o.stores.Labels.ReplaceAll(sc.Entities.Labels)
	if q := sc.Entities.Queue; q != nil {
		stats := *q
		if stats.ID == "" {
			stats.ID = entity.QueueStatsID
		}
		o.stores.Queue.ReplaceAll([]entity.QueueStats{stats})
	}
	if sc.Session != nil {
		o.stores.SetSession(*sc.Session)
	}
	if sc.Settings != nil {
		o.stores.MergeSettings(sc.Settings)
	}

	o.faults.SetAll(sc.Faults)

	cfg := sc.channelConfig()
	o.sim.Reset(cfg)
	if cfg.AutoConnect {
		if err := o.sim.Connect(); err != nil {
			o.logger.Warn("auto-connect failed", "error", err)
		}
	}
}
