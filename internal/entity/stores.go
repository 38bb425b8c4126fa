package entity

import "sync"

// Session is the current authenticated principal for the simulated world.
type Session struct {
	UserID      string   `json:"user_id" yaml:"user_id"`
	Username    string   `json:"username" yaml:"username"`
	Role        string   `json:"role" yaml:"role"`
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	c := s
	if s.Permissions != nil {
		c.Permissions = make([]string, len(s.Permissions))
		copy(c.Permissions, s.Permissions)
	}
	return c
}

// Stores bundles the per-domain collections plus the current session.
// One Stores instance is the entity half of a simulated "world".
type Stores struct {
	Documents *Collection[Document]
	Users     *Collection[User]
	Sources   *Collection[Source]
	Labels    *Collection[Label]
	Queue     *Collection[QueueStats]
	Sync      *Collection[SyncProgress]

	mu       sync.Mutex
	session  Session
	settings map[string]any
}

// DefaultSettings returns the server settings a fresh world starts with.
func DefaultSettings() map[string]any {
	return map[string]any{
		"ocr_language":        "eng",
		"concurrent_ocr_jobs": 4,
		"auto_rotate":         true,
		"enable_compression":  false,
		"max_file_size_mb":    50,
	}
}

// NewStores creates empty collections sharing one id generator.
func NewStores(ids IDGenerator) *Stores {
	return &Stores{
		Documents: NewCollection[Document](ids),
		Users:     NewCollection[User](ids),
		Sources:   NewCollection[Source](ids),
		Labels:    NewCollection[Label](ids),
		Queue:     NewCollection[QueueStats](ids),
		Sync:      NewCollection[SyncProgress](ids),
		settings:  DefaultSettings(),
	}
}

// Settings returns a copy of the current server settings.
func (s *Stores) Settings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// MergeSettings applies the given overrides on top of the current settings
// and returns the merged result.
func (s *Stores) MergeSettings(overrides map[string]any) map[string]any {
	s.mu.Lock()
	for k, v := range overrides {
		s.settings[k] = v
	}
	s.mu.Unlock()
	return s.Settings()
}

// ReplaceSettings swaps the settings wholesale (orchestrator only).
// Nil restores the defaults.
func (s *Stores) ReplaceSettings(settings map[string]any) {
	if settings == nil {
		settings = DefaultSettings()
	} else {
		copied := make(map[string]any, len(settings))
		for k, v := range settings {
			copied[k] = v
		}
		settings = copied
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Session returns a copy of the current session.
func (s *Stores) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// SetSession replaces the current session.
func (s *Stores) SetSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess.Clone()
}

// ResetAll empties every collection and clears the session.
// After ResetAll the Stores are indistinguishable from freshly constructed.
func (s *Stores) ResetAll() {
	s.Documents.ReplaceAll(nil)
	s.Users.ReplaceAll(nil)
	s.Sources.ReplaceAll(nil)
	s.Labels.ReplaceAll(nil)
	s.Queue.ReplaceAll(nil)
	s.Sync.ReplaceAll(nil)
	s.SetSession(Session{})
	s.ReplaceSettings(nil)
}
