package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/blame"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/harness"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/store"
)

// BlameOptions holds flags for the blame command.
type BlameOptions struct {
	*RootOptions
	Scenario string
	Database string
	Save     string
	Seed     float64
}

// BlameResult is the JSON payload of the blame command.
type BlameResult struct {
	Source  string       `json:"source"`
	Entries int          `json:"entries"`
	Blame   blame.Result `json:"blame"`
}

// NewBlameCommand creates the blame command.
func NewBlameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blame",
		Short: "Name the department responsible for a session's fate",
		Long: `Score the crisis history of a session against each department and
print the one that takes the blame, with its statement.

The history comes either from running a scenario (--scenario) or from a
save slot (--db and --save).

Examples:
  hwhard blame --scenario ./scenarios/partial-funding-audit.yaml
  hwhard blame --db ./hwhard.db --save 0192f0c4-...
  hwhard blame --scenario ./run.yaml --seed 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlame(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario whose final history is analysed")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database holding the save")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save id to analyse")
	cmd.Flags().Float64Var(&opts.Seed, "seed", 0, "tie-break seed (default: derived from the history)")
	cmd.MarkFlagsMutuallyExclusive("scenario", "save")
	cmd.MarkFlagsRequiredTogether("db", "save")

	return cmd
}

func runBlame(opts *BlameOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	var (
		history []state.HistoryEntry
		cat     catalog.Catalog
		source  string
		err     error
	)
	switch {
	case opts.Scenario != "":
		history, cat, err = scenarioHistory(opts, f, logger)
		source = opts.Scenario
	case opts.Save != "":
		history, err = saveHistory(commandContext(cmd), opts.Database, opts.Save)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "load save", err)
		}
		cat, err = opts.loadCatalog(f, logger)
		source = opts.Save
	default:
		return f.Fail(ExitCommandError, ErrCodeGeneric, "one of --scenario or --db/--save is required", nil)
	}
	if err != nil {
		return err
	}

	var bopts []blame.Option
	if cmd.Flags().Changed("seed") {
		bopts = append(bopts, blame.WithSeed(opts.Seed))
	}
	out := BlameResult{
		Source:  source,
		Entries: len(history),
		Blame:   blame.Analyze(history, cat, bopts...),
	}

	if f.IsJSON() {
		return f.Success(out)
	}
	s := newStyles(f.Writer)
	return f.Success(fmt.Sprintf("%s %s\n  %q\n  %s",
		out.Blame.Emoji, s.title.Render(string(out.Blame.Department)),
		out.Blame.Statement,
		s.dim.Render(fmt.Sprintf("%d crises analysed, seed %v", out.Entries, out.Blame.Seed))))
}

func scenarioHistory(opts *BlameOptions, f *OutputFormatter, logger *slog.Logger) ([]state.HistoryEntry, catalog.Catalog, error) {
	scenario, err := harness.LoadScenario(opts.Scenario)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeScenario, "load scenario", err)
	}
	hopts, err := opts.harnessOptions(f, logger)
	if err != nil {
		return nil, nil, err
	}
	result, err := harness.Run(scenario, hopts...)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeScenario, "run scenario", err)
	}

	var cat catalog.Catalog
	if scenario.Catalog != "" {
		cat, _, err = catalog.LoadDir(scenario.Catalog, catalog.WithLogger(logger))
		if err != nil {
			return nil, nil, f.Fail(ExitCommandError, ErrCodeCatalog, "load scenario catalog", err)
		}
	} else {
		cat, err = opts.loadCatalog(f, logger)
		if err != nil {
			return nil, nil, err
		}
	}
	return result.Final.History, cat, nil
}

func saveHistory(ctx context.Context, path, id string) ([]state.HistoryEntry, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	p, err := st.LoadSave(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.History, nil
}
