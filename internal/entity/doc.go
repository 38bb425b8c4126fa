// Package entity provides the in-memory collections behind the simulated
// backend: per-domain CRUD with filtering, stable sorting, and offset/limit
// pagination.
//
// Collections are copy-in/copy-out: records handed to a collection are
// cloned on the way in, and records returned from a collection are clones.
// Mutating a returned record never affects stored state, which is what lets
// the scenario orchestrator reuse immutable scenario definitions across
// test runs.
//
// Every read reflects the latest write synchronously - there is no caching
// layer between callers and the backing maps.
package entity
