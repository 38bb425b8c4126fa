// Package scenario defines named world configurations for the simulated
// backend and the orchestrator that applies them atomically.
//
// A scenario bundles entity seed data, per-domain fault configs, and a
// channel config. Scenarios come from two places: the builtin catalog
// (empty, standard, degraded, offline, hang) and custom definitions
// registered at runtime or loaded from YAML files. YAML scenarios are
// validated twice: strict decoding rejects unknown fields, and a CUE
// schema enforces value ranges and enums.
package scenario
