package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fauxwire/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Domain string
	Limit  int
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Exchanges     []trace.Exchange     `json:"exchanges"`
	ChannelEvents []trace.ChannelEvent `json:"channel_events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <db>",
		Short: "Dump a recorded transcript",
		Long: `Dump the exchanges and channel events recorded in a transcript
database, in the order they happened.

Examples:
  fauxwire trace ./run.db
  fauxwire trace ./run.db --domain documents --limit 20
  fauxwire trace ./run.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Domain, "domain", "", "filter exchanges to one fault domain")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows per section (0 = all)")

	return cmd
}

func runTraceDump(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeFileNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "transcript database not found", err)
	}

	st, err := trace.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open transcript", err)
	}
	defer st.Close()

	ctx := context.Background()
	exs, err := st.ListExchanges(ctx, opts.Domain, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list exchanges", err)
	}
	evs, err := st.ListChannelEvents(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list channel events", err)
	}

	result := TraceResult{Exchanges: exs, ChannelEvents: evs}

	if formatter.Format == "json" {
		return encodeIndented(formatter.Writer, CLIResponse{Status: "ok", Data: result})
	}
	return outputTraceText(formatter, result)
}

// outputTraceText outputs the transcript as text.
func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer

	fmt.Fprintln(w, "=== Exchanges ===")
	if len(result.Exchanges) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for _, ex := range result.Exchanges {
			marker := " "
			if ex.Failed {
				marker = "!"
			}
			fmt.Fprintf(w, "  [%d]%s %s %s -> %d (%s)\n", ex.Seq, marker, ex.Method, ex.Path, ex.Status, ex.Domain)
			if formatter.Verbose {
				if ex.DelayMs > 0 {
					fmt.Fprintf(w, "       delay: %dms\n", ex.DelayMs)
				}
				if ex.ResponseBody != "" {
					fmt.Fprintf(w, "       response: %s\n", ex.ResponseBody)
				}
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Channel Events ===")
	if len(result.ChannelEvents) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for _, ev := range result.ChannelEvents {
			fmt.Fprintf(w, "  [%d] %s %s\n", ev.Seq, ev.Kind, ev.Detail)
			if formatter.Verbose && ev.Payload != "" {
				fmt.Fprintf(w, "       payload: %s\n", ev.Payload)
			}
		}
	}

	return nil
}
