// Package intercept simulates the request/response surface of the backend.
//
// An Interceptor matches an outgoing call (method + path pattern) against
// an ordered route registry, applies the matched domain's fault
// configuration (delay, forced failure), and only then delegates to the
// handler that reads or writes the entity stores.
//
// Simulated faults are never Go errors: callers receive a *Response with
// an HTTP-like status and an error envelope, exactly as a real backend
// would answer. Go errors escape Do only for harness misuse (no matching
// route) or caller cancellation of an injected hang.
package intercept
