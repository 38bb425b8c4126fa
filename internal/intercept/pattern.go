package intercept

import (
	"fmt"
	"strings"
)

// Pattern matches request paths segment by segment. Segments starting with
// ':' are parameters and match any single non-empty segment:
//
//	/documents/:id      matches /documents/doc-1  with {id: "doc-1"}
//	/sources/:id/sync   matches /sources/s1/sync  with {id: "s1"}
//
// There are no wildcards or optional segments - the simulated API surface
// is small enough that exact arity is a feature (typos fail fast).
type Pattern struct {
	raw      string
	segments []string
}

// ParsePattern parses a pattern string.
func ParsePattern(s string) (Pattern, error) {
	if s == "" || s[0] != '/' {
		return Pattern{}, fmt.Errorf("pattern must start with '/': %q", s)
	}
	segments := splitPath(s)
	for _, seg := range segments {
		if seg == "" {
			return Pattern{}, fmt.Errorf("pattern has empty segment: %q", s)
		}
		if seg == ":" {
			return Pattern{}, fmt.Errorf("pattern has unnamed parameter: %q", s)
		}
	}
	return Pattern{raw: s, segments: segments}, nil
}

// MustPattern parses a pattern string, panicking on error.
// Route tables are built from literals at construction time, so a bad
// pattern is a programming error.
func MustPattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern string.
func (p Pattern) String() string { return p.raw }

// Match tests a request path (without query string) against the pattern.
// On success it returns the bound parameters.
func (p Pattern) Match(path string) (map[string]string, bool) {
	segs := splitPath(path)
	if len(segs) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for i, pat := range p.segments {
		if strings.HasPrefix(pat, ":") {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[pat[1:]] = segs[i]
			continue
		}
		if pat != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// splitPath splits a path on '/', dropping the leading empty segment and a
// single trailing slash.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
