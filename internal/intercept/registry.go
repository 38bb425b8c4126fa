package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/fault"
)

// Handler services a matched request against the entity stores and shapes
// the success (or semantic error) envelope.
//
// A non-nil error return means the harness itself is broken, not that the
// simulated backend failed - simulated failures are Response values.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Route binds a method and path pattern to a domain and handler.
// The domain selects which fault configuration governs the call.
type Route struct {
	Method  string
	Pattern Pattern
	Domain  fault.Domain
	Handler Handler
}

// Registry is the ordered dispatch table for intercepted calls.
//
// Routes are matched in registration order, first match wins. The table is
// built by explicit composition at harness construction time - there is no
// import-time side-effect registration.
//
// INVARIANT: route order never changes after construction. Registration
// order is the documented tie-break for overlapping patterns (e.g.
// /documents/recent before /documents/:id).
type Registry struct {
	routes []Route
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a route. The pattern string must be valid (panics
// otherwise - route tables are literals).
func (r *Registry) Register(method, pattern string, domain fault.Domain, h Handler) {
	r.routes = append(r.routes, Route{
		Method:  method,
		Pattern: MustPattern(pattern),
		Domain:  domain,
		Handler: h,
	})
}

// Match finds the first route matching method and path.
func (r *Registry) Match(method, path string) (*Route, map[string]string, bool) {
	for i := range r.routes {
		rt := &r.routes[i]
		if rt.Method != method {
			continue
		}
		if params, ok := rt.Pattern.Match(path); ok {
			return rt, params, true
		}
	}
	return nil, nil, false
}

// Len returns the number of registered routes.
func (r *Registry) Len() int { return len(r.routes) }
