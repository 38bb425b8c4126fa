package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fauxwire/internal/scenario"
)

// ValidationResult holds validation results for one scenario file.
type ValidationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Name   string   `json:"name,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without loading it",
		Long: `Validate a scenario YAML file against the scenario schema.

Performs CUE schema validation (ranges, enums, unknown fields), strict
YAML decoding, and structural checks, without touching any harness
state. Faster than run for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,  // Don't print usage on errors
		SilenceErrors: true,  // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeFileNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read scenario file", err)
	}

	formatter.VerboseLog("Validating %s (%d bytes)", path, len(data))

	sc, err := scenario.Parse(data)
	if err != nil {
		if formatter.Format == "json" {
			result := ValidationResult{
				File:   path,
				Valid:  false,
				Errors: []string{err.Error()},
			}
			response := CLIResponse{
				Status: "error",
				Data:   result,
				Error: &CLIError{
					Code:    ErrCodeScenarioInvalid,
					Message: err.Error(),
				},
			}
			if encErr := encodeIndented(formatter.Writer, response); encErr != nil {
				return encErr
			}
			return NewExitError(ExitFailure, "validation failed")
		}

		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
		return NewExitError(ExitFailure, "validation failed")
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			File:  path,
			Valid: true,
			Name:  sc.Name,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid (scenario %q)\n", path, sc.Name)
	return nil
}
