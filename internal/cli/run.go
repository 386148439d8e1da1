package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Quiet bool
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Errors   []string             `json:"errors,omitempty"`
	Trace    []harness.TraceEvent `json:"trace"`
	Digest   string               `json:"digest"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and print its trace",
		Long: `Run a YAML scenario against a seeded engine and print one line per
dispatched command, then any failed expectations or assertions.

Exit codes:
  0 - Scenario passed
  1 - An expectation or assertion failed
  2 - Command error (unreadable or invalid scenario, bad catalog)

Examples:
  hwhard run ./scenarios/partial-funding-audit.yaml
  hwhard run ./scenarios/shield-deflection.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCommand(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the verdict")

	return cmd
}

func runScenarioCommand(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, "load scenario", err)
	}
	hopts, err := opts.harnessOptions(f, logger)
	if err != nil {
		return err
	}
	result, err := harness.Run(scenario, hopts...)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, "run scenario", err)
	}

	out := RunResult{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		Errors:   result.Errors,
		Trace:    result.Trace,
		Digest:   finalDigest(result),
	}

	if f.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: out}
		if !out.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeFailed, Message: fmt.Sprintf("scenario %q failed", scenario.Name)}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		s := newStyles(f.Writer)
		w := f.Writer
		fmt.Fprintf(w, "%s %s %s\n", s.mark(out.Pass), s.label.Render(scenario.Name), s.dim.Render(fmt.Sprintf("(%d commands)", len(out.Trace))))
		if !opts.Quiet {
			fmt.Fprintln(w, s.box.Render(formatTrace(out.Trace)))
		}
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s\n", s.bad.Render(e))
		}
	}

	if !out.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed", scenario.Name))
	}
	return nil
}

// harnessOptions builds the harness configuration shared by the scenario
// commands. A scenario's own catalog still wins over --catalog.
func (o *RootOptions) harnessOptions(f *OutputFormatter, logger *slog.Logger) ([]harness.Option, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	hopts := []harness.Option{harness.WithConfig(cfg), harness.WithLogger(logger)}
	if o.Catalog != "" {
		cat, report, err := catalog.LoadDir(o.Catalog, catalog.WithLogger(logger))
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeCatalog, "load catalog", err)
		}
		f.VerboseLog("catalog %s: %d devices, %d events", o.Catalog, report.Devices, report.Events)
		hopts = append(hopts, harness.WithCatalog(cat))
	}
	return hopts, nil
}

// formatTrace renders one line per trace event.
func formatTrace(trace []harness.TraceEvent) string {
	lines := make([]string, 0, len(trace))
	for _, ev := range trace {
		line := fmt.Sprintf("%3d %-16s %-10s month=%-3d budget=%-9v doom=%-5v compliance=%v",
			ev.Seq, ev.Command, ev.Phase, ev.Month, ev.Budget, ev.Doom, ev.Compliance)
		if ev.Crisis != "" {
			line += " crisis=" + ev.Crisis
		}
		if len(ev.Diagnostics) > 0 {
			line += " diagnostics=" + strings.Join(ev.Diagnostics, ",")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func finalDigest(result *harness.Result) string {
	if len(result.Trace) == 0 {
		return ""
	}
	return result.Trace[len(result.Trace)-1].Digest
}
