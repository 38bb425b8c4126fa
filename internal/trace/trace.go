package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Exchange is one recorded request/response pair.
type Exchange struct {
	Seq          int64  `json:"seq"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	Domain       string `json:"domain"`
	Status       int    `json:"status"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
	Failed       bool   `json:"failed"`
	DelayMs      int64  `json:"delay_ms"`
	RecordedAt   string `json:"recorded_at"`
}

// Channel event kinds.
const (
	KindState   = "state"
	KindMessage = "message"
)

// ChannelEvent is one recorded push-channel occurrence: a state transition
// (Detail is the state name) or a delivered message (Detail is the message
// type, Payload its JSON body).
type ChannelEvent struct {
	Seq        int64  `json:"seq"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	Payload    string `json:"payload,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

// Store is a SQLite-backed transcript of simulated network activity.
//
// Thread-safety: safe for concurrent use; the connection pool is pinned to
// a single connection so writers never trip over SQLITE_BUSY.
type Store struct {
	db *sql.DB
}

// Open creates or opens a transcript database at the given path.
// Use ":memory:" for an ephemeral transcript.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to trace database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordExchange appends an exchange to the transcript and returns its
// assigned sequence number.
func (s *Store) RecordExchange(ctx context.Context, ex Exchange) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges
		(method, path, domain, status, request_body, response_body, failed, delay_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ex.Method, ex.Path, ex.Domain, ex.Status,
		nullable(ex.RequestBody), nullable(ex.ResponseBody),
		ex.Failed, ex.DelayMs, ex.RecordedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("record exchange: %w", err)
	}
	return res.LastInsertId()
}

// RecordChannelEvent appends a channel event to the transcript and returns
// its assigned sequence number.
func (s *Store) RecordChannelEvent(ctx context.Context, ev ChannelEvent) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO channel_events (kind, detail, payload, recorded_at)
		VALUES (?, ?, ?, ?)
	`,
		ev.Kind, ev.Detail, nullable(ev.Payload), ev.RecordedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("record channel event: %w", err)
	}
	return res.LastInsertId()
}

// ListExchanges returns recorded exchanges in sequence order. An empty
// domain returns all domains; limit <= 0 returns everything.
func (s *Store) ListExchanges(ctx context.Context, domain string, limit int) ([]Exchange, error) {
	query := `
		SELECT seq, method, path, domain, status,
		       COALESCE(request_body, ''), COALESCE(response_body, ''),
		       failed, delay_ms, recorded_at
		FROM exchanges`
	var args []any
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY seq"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(
			&ex.Seq, &ex.Method, &ex.Path, &ex.Domain, &ex.Status,
			&ex.RequestBody, &ex.ResponseBody, &ex.Failed, &ex.DelayMs, &ex.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("list exchanges: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// ListChannelEvents returns recorded channel events in sequence order.
// limit <= 0 returns everything.
func (s *Store) ListChannelEvents(ctx context.Context, limit int) ([]ChannelEvent, error) {
	query := `
		SELECT seq, kind, detail, COALESCE(payload, ''), recorded_at
		FROM channel_events ORDER BY seq`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list channel events: %w", err)
	}
	defer rows.Close()

	var out []ChannelEvent
	for rows.Next() {
		var ev ChannelEvent
		if err := rows.Scan(&ev.Seq, &ev.Kind, &ev.Detail, &ev.Payload, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("list channel events: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Clear removes every recorded row. The harness calls this when a scenario
// load should start a fresh transcript.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM exchanges"); err != nil {
		return fmt.Errorf("clear exchanges: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM channel_events"); err != nil {
		return fmt.Errorf("clear channel events: %w", err)
	}
	return nil
}

// nullable maps the empty string to NULL so optional bodies stay NULL in
// the schema.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
