package intercept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_LiteralMatch(t *testing.T) {
	p := MustPattern("/documents")

	params, ok := p.Match("/documents")
	assert.True(t, ok)
	assert.Empty(t, params)

	_, ok = p.Match("/labels")
	assert.False(t, ok)
}

func TestPattern_ParamMatch(t *testing.T) {
	p := MustPattern("/documents/:id")

	params, ok := p.Match("/documents/doc-1")
	require.True(t, ok)
	assert.Equal(t, "doc-1", params["id"])

	_, ok = p.Match("/documents")
	assert.False(t, ok)

	_, ok = p.Match("/documents/doc-1/labels")
	assert.False(t, ok)
}

func TestPattern_MultipleParams(t *testing.T) {
	p := MustPattern("/sources/:id/:action")

	params, ok := p.Match("/sources/s1/sync")
	require.True(t, ok)
	assert.Equal(t, "s1", params["id"])
	assert.Equal(t, "sync", params["action"])
}

func TestPattern_TrailingSlash(t *testing.T) {
	p := MustPattern("/documents")

	_, ok := p.Match("/documents/")
	assert.True(t, ok)
}

func TestParsePattern_Errors(t *testing.T) {
	_, err := ParsePattern("documents")
	assert.Error(t, err)

	_, err = ParsePattern("/documents//x")
	assert.Error(t, err)

	_, err = ParsePattern("/documents/:")
	assert.Error(t, err)
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/documents/recent", "documents", nil)
	reg.Register("GET", "/documents/:id", "documents", nil)

	route, params, ok := reg.Match("GET", "/documents/recent")
	require.True(t, ok)
	assert.Equal(t, "/documents/recent", route.Pattern.String())
	assert.Empty(t, params)

	route, params, ok = reg.Match("GET", "/documents/doc-1")
	require.True(t, ok)
	assert.Equal(t, "/documents/:id", route.Pattern.String())
	assert.Equal(t, "doc-1", params["id"])
}

func TestRegistry_MethodMismatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/documents", "documents", nil)

	_, _, ok := reg.Match("POST", "/documents")
	assert.False(t, ok)
}
