package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fauxwire/internal/harness"
	"github.com/roach88/fauxwire/internal/scenario"
)

// ScenarioInfo describes one loadable scenario.
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Builtin     bool   `json:"builtin"`
}

// ScenariosResult holds the scenarios listing output.
type ScenariosResult struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios [scenario.yaml...]",
		Short: "List loadable scenarios",
		Long: `List the builtin scenarios, plus any scenario files given as arguments.

Each file argument is validated and registered as a custom scenario
before listing, so the output shows exactly what a harness configured
with those files could load.

Examples:
  fauxwire scenarios
  fauxwire scenarios ./scenarios/outage.yaml --format json`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runScenarios(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	h, err := harness.New(harness.Options{})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build harness", err)
	}
	defer h.Dispose()

	for _, file := range files {
		formatter.VerboseLog("Registering scenario file: %s", file)
		if _, err := h.Scenarios.DefineCustomFile(file); err != nil {
			_ = formatter.Error(ErrCodeScenarioInvalid, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to register scenario", err)
		}
	}

	result := ScenariosResult{}
	for _, name := range h.Scenarios.Names() {
		sc, err := h.Scenarios.Get(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read scenario", err)
		}
		result.Scenarios = append(result.Scenarios, ScenarioInfo{
			Name:        name,
			Description: sc.Description,
			Builtin:     isBuiltinName(name),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, info := range result.Scenarios {
		kind := "builtin"
		if !info.Builtin {
			kind = "custom"
		}
		if info.Description != "" {
			fmt.Fprintf(formatter.Writer, "%-12s %-8s %s\n", info.Name, kind, info.Description)
		} else {
			fmt.Fprintf(formatter.Writer, "%-12s %s\n", info.Name, kind)
		}
	}
	return nil
}

// isBuiltinName reports whether name came from the builtin set rather than
// one of the registered files.
func isBuiltinName(name string) bool {
	for _, b := range scenario.BuiltinNames {
		if b == name {
			return true
		}
	}
	return false
}
