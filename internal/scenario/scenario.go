package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fauxwire/internal/channel"
	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

// Entities is the seed data a scenario loads into the entity store.
type Entities struct {
	Documents []entity.Document `yaml:"documents,omitempty"`
	Users     []entity.User     `yaml:"users,omitempty"`
	Sources   []entity.Source   `yaml:"sources,omitempty"`
	Labels    []entity.Label    `yaml:"labels,omitempty"`

	// Queue seeds the singleton queue statistics record.
	Queue *entity.QueueStats `yaml:"queue,omitempty"`
}

// Scenario is a complete named world configuration. Loading a scenario
// replaces all entity data, all fault configs, and the channel config in
// one step.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Entities Entities        `yaml:"entities,omitempty"`
	Session  *entity.Session `yaml:"session,omitempty"`
	Settings map[string]any  `yaml:"settings,omitempty"`

	// Faults overrides the default (no-fault) config per domain.
	Faults map[fault.Domain]fault.Config `yaml:"faults,omitempty"`

	// Channel configures the push channel. Nil means all-defaults:
	// instant connects, no heartbeats, no loss.
	Channel *channel.Config `yaml:"channel,omitempty"`
}

// channelConfig returns the effective channel config.
func (s *Scenario) channelConfig() channel.Config {
	if s.Channel == nil {
		return channel.Config{}
	}
	return *s.Channel
}

// Parse decodes and validates a scenario from YAML. The CUE schema runs
// first (ranges, enums), then strict decoding (unknown fields are typos),
// then structural checks the schema cannot express.
func Parse(data []byte) (*Scenario, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// Load reads and parses a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// validate checks constraints on an already-decoded scenario. Programmatic
// definitions go through this too, so it repeats a few checks the YAML
// schema already covers.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	for d := range s.Faults {
		if !d.Valid() {
			return fmt.Errorf("faults: unknown domain %q", d)
		}
	}

	if c := s.Channel; c != nil {
		if c.MessageLossPercent < 0 || c.MessageLossPercent > 100 {
			return fmt.Errorf("channel: message_loss_percent must be in [0,100], got %v", c.MessageLossPercent)
		}
		if c.MaxReconnectAttempts < 0 {
			return fmt.Errorf("channel: max_reconnect_attempts must be non-negative")
		}
	}

	for i, u := range s.Entities.Users {
		if u.Username == "" {
			return fmt.Errorf("entities.users[%d]: username is required", i)
		}
	}
	for i, d := range s.Entities.Documents {
		if d.Name == "" {
			return fmt.Errorf("entities.documents[%d]: name is required", i)
		}
	}
	for i, l := range s.Entities.Labels {
		if l.Name == "" {
			return fmt.Errorf("entities.labels[%d]: name is required", i)
		}
	}
	for i, src := range s.Entities.Sources {
		if src.Name == "" {
			return fmt.Errorf("entities.sources[%d]: name is required", i)
		}
	}

	return nil
}
