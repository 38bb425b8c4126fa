// Package trace persists a transcript of simulated network activity to
// SQLite: one row per request/response exchange and one row per channel
// event. The transcript survives harness resets only if the caller keeps
// it, and is what the trace CLI command reads back for inspection.
package trace
