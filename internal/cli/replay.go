package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/harness"
)

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Scenario      string `json:"scenario"`
	Steps         int    `json:"steps"`
	Deterministic bool   `json:"deterministic"`
	Digest        string `json:"digest,omitempty"`
	DivergedAt    *int   `json:"diverged_at,omitempty"`
	Command       string `json:"command,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <scenario>",
		Short: "Replay a scenario twice and verify determinism",
		Long: `Run a scenario twice with the same seed and compare the canonical
snapshot digest after every command.

Exit codes:
  0 - Both runs produced identical snapshots
  1 - The runs diverged
  2 - Command error (unreadable or invalid scenario, bad catalog)

Examples:
  hwhard replay ./scenarios/partial-funding-audit.yaml
  hwhard replay ./scenarios/partial-funding-audit.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	out := ReplayResult{Scenario: scenario.Name, Deterministic: true}
	err = harness.VerifyDeterminism(scenario, hopts...)
	var divErr *harness.DeterminismError
	switch {
	case errors.As(err, &divErr):
		out.Deterministic = false
		out.DivergedAt = &divErr.Step
		out.Command = divErr.Command
		if err := f.Error(ErrCodeNondeterminism, divErr.Error(), out); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "replay diverged", divErr)
	case err != nil:
		return f.Fail(ExitCommandError, ErrCodeScenario, "replay scenario", err)
	}

	result, err := harness.Run(scenario, hopts...)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, "run scenario", err)
	}
	out.Steps = len(result.Trace)
	out.Digest = finalDigest(result)

	if f.IsJSON() {
		return f.Success(out)
	}
	s := newStyles(f.Writer)
	return f.Success(fmt.Sprintf("%s %s deterministic over %d commands\n  digest %s",
		s.mark(true), s.label.Render(scenario.Name), out.Steps, s.dim.Render(out.Digest)))
}
