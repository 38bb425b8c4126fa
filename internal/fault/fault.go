// Package fault holds the per-domain fault-injection configuration for the
// simulated backend: an artificial delay (possibly unbounded, to simulate a
// hang) and an optional forced failure with a configured error code.
//
// Fault configs are pure data. The request interceptor consults them at the
// top of its pipeline; the scenario orchestrator replaces them wholesale on
// reset.
package fault

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Domain identifies a functional area of the simulated backend.
// Each domain carries its own fault configuration.
type Domain string

const (
	Documents   Domain = "documents"
	Auth        Domain = "auth"
	Search      Domain = "search"
	Queue       Domain = "queue"
	Sources     Domain = "sources"
	Labels      Domain = "labels"
	Users       Domain = "users"
	Recognition Domain = "recognition"
	Settings    Domain = "settings"
)

// AllDomains lists every domain in declaration order.
// The registry iterates this list on reset so no domain is missed.
var AllDomains = []Domain{
	Documents, Auth, Search, Queue, Sources,
	Labels, Users, Recognition, Settings,
}

// Valid reports whether d names a known domain.
func (d Domain) Valid() bool {
	for _, known := range AllDomains {
		if d == known {
			return true
		}
	}
	return false
}

// Delay is an injected latency: a bounded duration, or Forever to simulate
// a call that never resolves.
//
// In YAML a delay is either a millisecond count or the string "infinite":
//
//	delay_ms: 250
//	delay_ms: infinite
type Delay struct {
	Duration time.Duration
	Forever  bool
}

// DelayMs returns a bounded delay of the given milliseconds.
func DelayMs(ms int64) Delay {
	return Delay{Duration: time.Duration(ms) * time.Millisecond}
}

// InfiniteDelay returns the never-resolving delay.
func InfiniteDelay() Delay {
	return Delay{Forever: true}
}

// IsZero reports whether no delay is configured.
func (d Delay) IsZero() bool {
	return !d.Forever && d.Duration == 0
}

// UnmarshalYAML accepts either an integer millisecond count or the string
// "infinite".
func (d *Delay) UnmarshalYAML(value *yaml.Node) error {
	var ms int64
	if err := value.Decode(&ms); err == nil {
		if ms < 0 {
			return fmt.Errorf("delay_ms must be non-negative, got %d", ms)
		}
		*d = DelayMs(ms)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("delay_ms must be a millisecond count or %q", "infinite")
	}
	if s != "infinite" {
		return fmt.Errorf("unknown delay %q (expected milliseconds or %q)", s, "infinite")
	}
	*d = InfiniteDelay()
	return nil
}

// MarshalYAML emits the same shapes UnmarshalYAML accepts.
func (d Delay) MarshalYAML() (any, error) {
	if d.Forever {
		return "infinite", nil
	}
	return d.Duration.Milliseconds(), nil
}

// Config is the fault configuration for one domain.
type Config struct {
	// Delay is applied before the failure check and before any handler runs.
	Delay Delay `yaml:"delay_ms,omitempty"`

	// ShouldFail short-circuits the call with ErrorCode/ErrorMessage.
	// The entity store is never touched on a failed call.
	ShouldFail bool `yaml:"should_fail,omitempty"`

	// ErrorCode is the HTTP-like status returned when ShouldFail is set.
	ErrorCode int `yaml:"error_code,omitempty"`

	// ErrorMessage is the message body returned when ShouldFail is set.
	ErrorMessage string `yaml:"error_message,omitempty"`
}

// Default returns the fault config every domain starts with: no delay, no
// failure. ErrorCode defaults to 500 so a scenario that sets only
// should_fail still produces a plausible server error.
func Default() Config {
	return Config{ErrorCode: 500, ErrorMessage: "internal server error"}
}

// normalize fills zero-value failure fields so partial scenario configs
// behave sensibly.
func normalize(c Config) Config {
	if c.ErrorCode == 0 {
		c.ErrorCode = 500
	}
	if c.ErrorMessage == "" {
		c.ErrorMessage = "internal server error"
	}
	return c
}

// Registry holds the current fault config for every domain.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	configs map[Domain]Config
}

// NewRegistry creates a registry with default configs for all domains.
func NewRegistry() *Registry {
	r := &Registry{configs: make(map[Domain]Config, len(AllDomains))}
	r.ResetAll()
	return r
}

// Get returns the current config for a domain.
// Unknown domains get the default config (no fault).
func (r *Registry) Get(d Domain) Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.configs[d]; ok {
		return c
	}
	return Default()
}

// Set replaces the config for one domain.
func (r *Registry) Set(d Domain, c Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[d] = normalize(c)
}

// Reset restores the default config for one domain.
func (r *Registry) Reset(d Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[d] = Default()
}

// ResetAll restores the default config for every domain.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range AllDomains {
		r.configs[d] = Default()
	}
}

// SetAll resets every domain, then applies the given overrides.
// Used by the orchestrator when applying a scenario.
func (r *Registry) SetAll(overrides map[Domain]Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range AllDomains {
		r.configs[d] = Default()
	}
	for d, c := range overrides {
		r.configs[d] = normalize(c)
	}
}

// Snapshot returns a copy of every domain's current config.
func (r *Registry) Snapshot() map[Domain]Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Domain]Config, len(r.configs))
	for d, c := range r.configs {
		out[d] = c
	}
	return out
}
