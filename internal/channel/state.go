package channel

import "time"

// State is the connection lifecycle state. Exactly one State exists per
// simulated channel.
type State int

const (
	Disconnected State = iota
	Connecting
	Open
	Closing
	Reconnecting
	ErrorState
)

// String renders the state for logs and assertions.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Reconnecting:
		return "reconnecting"
	case ErrorState:
		return "error"
	default:
		return "unknown"
	}
}

// Config is the channel behavior for one scenario. Durations are
// millisecond counts so scenario YAML stays flat.
type Config struct {
	// AutoConnect makes the harness connect the channel on scenario load.
	AutoConnect bool `yaml:"auto_connect,omitempty" json:"auto_connect,omitempty"`

	// AutoReconnect schedules a reconnect after a transport drop, bounded
	// by MaxReconnectAttempts.
	AutoReconnect        bool `yaml:"auto_reconnect,omitempty" json:"auto_reconnect,omitempty"`
	ReconnectDelayMs     int64 `yaml:"reconnect_delay_ms,omitempty" json:"reconnect_delay_ms,omitempty"`
	MaxReconnectAttempts int  `yaml:"max_reconnect_attempts,omitempty" json:"max_reconnect_attempts,omitempty"`

	// ConnectDelayMs is how long a connect attempt takes to reach Open.
	// ConnectTimeoutMs, when non-zero, bounds the attempt: a slower connect
	// transitions Connecting -> ErrorState -> Disconnected.
	ConnectDelayMs   int64 `yaml:"connect_delay_ms,omitempty" json:"connect_delay_ms,omitempty"`
	ConnectTimeoutMs int64 `yaml:"connect_timeout_ms,omitempty" json:"connect_timeout_ms,omitempty"`

	// TeardownDelayMs is the Closing -> Disconnected delay.
	TeardownDelayMs int64 `yaml:"teardown_delay_ms,omitempty" json:"teardown_delay_ms,omitempty"`

	// HeartbeatIntervalMs is the keep-alive period while Open.
	// Zero disables heartbeats.
	HeartbeatIntervalMs int64 `yaml:"heartbeat_interval_ms,omitempty" json:"heartbeat_interval_ms,omitempty"`

	// MessageDelayMs delays every delivered message; MessageLossPercent
	// silently drops messages with the given probability. Loss is applied
	// before latency and never reorders survivors.
	MessageDelayMs     int64   `yaml:"message_delay_ms,omitempty" json:"message_delay_ms,omitempty"`
	MessageLossPercent float64 `yaml:"message_loss_percent,omitempty" json:"message_loss_percent,omitempty"`

	// Seed fixes the loss RNG for reproducible runs. Zero seeds from the
	// wall clock.
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

func (c Config) reconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

func (c Config) connectDelay() time.Duration {
	return time.Duration(c.ConnectDelayMs) * time.Millisecond
}

func (c Config) connectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c Config) teardownDelay() time.Duration {
	return time.Duration(c.TeardownDelayMs) * time.Millisecond
}

func (c Config) heartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

func (c Config) messageDelay() time.Duration {
	return time.Duration(c.MessageDelayMs) * time.Millisecond
}
