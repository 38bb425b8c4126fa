package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fauxwire/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Probes   []string
	Settle   time.Duration
	Timeout  time.Duration
}

// ProbeResult holds the outcome of one probe request.
type ProbeResult struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RunResult holds the complete run output.
type RunResult struct {
	Scenario     string        `json:"scenario"`
	Probes       []ProbeResult `json:"probes"`
	ChannelState string        `json:"channel_state"`
	Exchanges    int           `json:"exchanges"`
}

// defaultProbes is the scripted sequence used when no --probe is given.
var defaultProbes = []string{
	"GET /documents",
	"GET /auth/me",
	"GET /queue/stats",
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Load a scenario and exercise probe requests against it",
		Long: `Load a scenario into a fresh harness, issue a sequence of probe
requests, and print the resulting transcript.

The scenario argument is either a builtin name (see "fauxwire scenarios")
or the path to a scenario YAML file. Probes are "METHOD /path" strings,
optionally followed by a JSON body.

Examples:
  fauxwire run standard
  fauxwire run degraded --probe "GET /documents" --probe "GET /search?q=invoice"
  fauxwire run ./scenarios/outage.yaml --db ./run.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path for the SQLite transcript (default in-memory)")
	cmd.Flags().StringArrayVar(&opts.Probes, "probe", nil, `probe request, e.g. "GET /documents" (repeatable)`)
	cmd.Flags().DurationVar(&opts.Settle, "settle", 0, "time to let channel timers run after loading")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "per-probe timeout (bounds infinite-delay faults)")

	return cmd
}

func runRun(opts *RunOptions, scenarioArg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tracePath := opts.Database
	if tracePath == "" {
		tracePath = ":memory:"
	}

	var logger *slog.Logger
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	h, err := harness.New(harness.Options{Logger: logger, TracePath: tracePath})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build harness", err)
	}
	defer h.Dispose()

	name := scenarioArg
	if _, statErr := os.Stat(scenarioArg); statErr == nil {
		sc, defErr := h.Scenarios.DefineCustomFile(scenarioArg)
		if defErr != nil {
			_ = formatter.Error(ErrCodeScenarioInvalid, defErr.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to register scenario", defErr)
		}
		name = sc.Name
	}

	formatter.VerboseLog("Loading scenario %q", name)
	if err := h.LoadScenario(name); err != nil {
		_ = formatter.Error(ErrCodeScenarioInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	if opts.Settle > 0 {
		time.Sleep(opts.Settle)
	}

	probes := opts.Probes
	if len(probes) == 0 {
		probes = defaultProbes
	}

	result := RunResult{Scenario: name}
	for _, probe := range probes {
		method, path, body, parseErr := parseProbe(probe)
		if parseErr != nil {
			return WrapExitError(ExitCommandError, "invalid probe", parseErr)
		}

		pr := ProbeResult{Method: method, Path: path}
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		resp, doErr := h.Do(ctx, method, path, body)
		cancel()

		switch {
		case doErr != nil:
			pr.Error = doErr.Error()
		case resp != nil:
			pr.Status = resp.Status
		}
		result.Probes = append(result.Probes, pr)
	}

	result.ChannelState = h.Channel.State().String()
	if exs, listErr := h.Trace.ListExchanges(context.Background(), "", 0); listErr == nil {
		result.Exchanges = len(exs)
	}

	if formatter.Format == "json" {
		return encodeIndented(formatter.Writer, CLIResponse{Status: "ok", Data: result})
	}
	return outputRunText(formatter, result)
}

// parseProbe splits "METHOD /path [body]" into its parts.
func parseProbe(probe string) (method, path string, body []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(probe), " ", 3)
	if len(parts) < 2 {
		return "", "", nil, fmt.Errorf("probe %q: want \"METHOD /path [body]\"", probe)
	}
	method = strings.ToUpper(parts[0])
	path = parts[1]
	if len(parts) == 3 {
		body = []byte(parts[2])
	}
	return method, path, body, nil
}

// outputRunText outputs the run result as text.
func outputRunText(formatter *OutputFormatter, result RunResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Scenario: %s\n", result.Scenario)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Probes ===")
	for i, pr := range result.Probes {
		if pr.Error != "" {
			fmt.Fprintf(w, "  [%d] %s %s -> error: %s\n", i+1, pr.Method, pr.Path, pr.Error)
			continue
		}
		fmt.Fprintf(w, "  [%d] %s %s -> %d\n", i+1, pr.Method, pr.Path, pr.Status)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "  Channel:   %s\n", result.ChannelState)
	fmt.Fprintf(w, "  Exchanges: %d\n", result.Exchanges)

	return nil
}
