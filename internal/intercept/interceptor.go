package intercept

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/fauxwire/internal/fault"
)

// SleepFunc waits for the given duration or until the context is done.
// Replaceable so tests can run injected delays instantly.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RealSleep waits on a real timer.
func RealSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options configures an Interceptor.
type Options struct {
	// Logger receives one debug line per intercepted call.
	// Nil discards logs.
	Logger *slog.Logger

	// Now supplies envelope timestamps. Nil means time.Now.
	Now func() time.Time

	// Sleep applies injected bounded delays. Nil means RealSleep.
	Sleep SleepFunc
}

// Interceptor applies fault injection and dispatches intercepted calls.
//
// The pipeline order is load-bearing and must not change:
//
//  1. resolve the matched domain's fault config
//  2. apply the configured delay (infinite delay blocks until the caller
//     abandons the call via context)
//  3. if ShouldFail, short-circuit with the configured error envelope -
//     the entity store is never touched
//  4. delegate to the handler
//
// Step 3 before step 4 means fault injection takes priority over semantic
// errors: a forced 503 wins over a would-have-been 404. That matches the
// documented contract.
type Interceptor struct {
	routes *Registry
	faults *fault.Registry
	logger *slog.Logger
	now    func() time.Time
	sleep  SleepFunc
}

// New creates an Interceptor over the given route table and fault registry.
func New(routes *Registry, faults *fault.Registry, opts Options) *Interceptor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = RealSleep
	}
	return &Interceptor{
		routes: routes,
		faults: faults,
		logger: logger,
		now:    now,
		sleep:  sleep,
	}
}

// Do intercepts one call.
//
// Returns a *MisuseError when no route matches (fatal harness
// misconfiguration), ctx.Err() when the caller abandons an injected hang,
// and otherwise the simulated response - including simulated failures.
func (i *Interceptor) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	cleanPath, query := splitQuery(path)

	route, params, ok := i.routes.Match(method, cleanPath)
	if !ok {
		return nil, NewRouteError(method, cleanPath)
	}

	cfg := i.faults.Get(route.Domain)

	// Injected delay runs before the failure check so a scenario can model
	// a slow failure, and before any handler so a hang never mutates state.
	if cfg.Delay.Forever {
		i.logger.Debug("request hanging on infinite delay",
			"method", method, "path", cleanPath, "domain", route.Domain)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if cfg.Delay.Duration > 0 {
		if err := i.sleep(ctx, cfg.Delay.Duration); err != nil {
			return nil, err
		}
	}

	if cfg.ShouldFail {
		i.logger.Debug("request failed by fault injection",
			"method", method, "path", cleanPath, "domain", route.Domain, "code", cfg.ErrorCode)
		return Fail(cfg.ErrorCode, cfg.ErrorMessage, i.now()), nil
	}

	req := &Request{
		Method: method,
		Path:   cleanPath,
		Params: params,
		Query:  query,
		Body:   body,
	}

	resp, err := route.Handler(ctx, req)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("request handled",
		"method", method, "path", cleanPath, "domain", route.Domain, "status", resp.Status)
	return resp, nil
}

// splitQuery separates the query string from a request path.
// A malformed query is treated as empty - the lenient parse matches real
// backend behavior and keeps fault injection reachable for sloppy callers.
func splitQuery(path string) (string, url.Values) {
	idx := strings.IndexByte(path, '?')
	if idx < 0 {
		return path, url.Values{}
	}
	values, err := url.ParseQuery(path[idx+1:])
	if err != nil {
		values = url.Values{}
	}
	return path[:idx], values
}
