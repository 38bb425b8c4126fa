package harness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fauxwire/internal/scenario"
)

func TestGolden_ScenarioNames(t *testing.T) {
	f := newFixture(t, Options{})
	AssertGolden(t, "scenario_names", f.h.Scenarios.Names())
}

func TestGolden_StandardDocumentsListing(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.h.LoadScenario(scenario.BuiltinStandard))

	resp := f.do(t, "GET", "/documents", nil)
	require.Equal(t, 200, resp.Status)
	AssertGolden(t, "standard_documents", resp.Body)
}

func TestGolden_FaultErrorEnvelope(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.h.LoadScenario(scenario.BuiltinOffline))

	resp := f.do(t, "GET", "/documents", nil)
	require.Equal(t, 503, resp.Status)
	AssertGolden(t, "offline_error", resp.Body)
}
