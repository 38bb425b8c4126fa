// Package harness assembles the complete simulated backend: entity stores,
// fault registry, request interceptor, push-channel simulator, scenario
// orchestrator, and optional SQLite transcript. One Harness is one isolated
// world; tests create as many as they need.
//
// Construction is explicit composition. Nothing registers itself at import
// time, and all timers run through an injectable scheduler so tests control
// time completely.
package harness
