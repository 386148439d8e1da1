package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/canonical"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/engine"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/harness"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/store"
)

// SavesOptions holds flags shared by the saves subcommands.
type SavesOptions struct {
	*RootOptions
	Database string
	Label    string
}

// SaveCreated is the JSON payload of saves create.
type SaveCreated struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Digest string `json:"digest"`
}

// SaveRestored is the JSON payload of saves show.
type SaveRestored struct {
	ID       string         `json:"id"`
	Digest   string         `json:"digest"`
	Snapshot state.Snapshot `json:"snapshot"`
}

// NewSavesCommand creates the saves command group.
func NewSavesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Manage save slots in a SQLite database",
		Long: `List, create and restore save slots.

A save holds the restorable part of a session snapshot together with its
canonical digest; loading a save whose digest no longer matches fails.

Examples:
  hwhard saves list --db ./hwhard.db
  hwhard saves create ./scenarios/partial-funding-audit.yaml --db ./hwhard.db --label audit
  hwhard saves show <id> --db ./hwhard.db`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List saves in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavesList(opts, cmd)
		},
	})

	create := &cobra.Command{
		Use:           "create <scenario>",
		Short:         "Run a scenario and save its final snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavesCreate(opts, args[0], cmd)
		},
	}
	create.Flags().StringVar(&opts.Label, "label", "", "save label (default: scenario name)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:           "show <id>",
		Short:         "Restore a save into a fresh engine and print the snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavesShow(opts, args[0], cmd)
		},
	})

	return cmd
}

func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runSavesList(opts *SavesOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	saves, err := st.ListSaves(commandContext(cmd))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list saves", err)
	}
	if f.IsJSON() {
		return f.Success(saves)
	}
	if len(saves) == 0 {
		return f.Success("No saves.")
	}
	var b strings.Builder
	for _, s := range saves {
		fmt.Fprintf(&b, "%s  %-20s %-10s month=%-3d %s\n", s.ID, s.Label, s.Phase, s.Month, s.DeviceID)
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}

func runSavesCreate(opts *SavesOptions, path string, cmd *cobra.Command) error {
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
	if !result.Pass {
		f.VerboseLog("scenario %q did not pass; saving its final state anyway", scenario.Name)
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	label := opts.Label
	if label == "" {
		label = scenario.Name
	}
	id, err := st.SaveSnapshot(commandContext(cmd), label, result.Final)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "save snapshot", err)
	}
	digest, err := canonical.Digest(result.Final)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "digest snapshot", err)
	}

	out := SaveCreated{ID: id, Label: label, Digest: digest}
	if f.IsJSON() {
		return f.Success(out)
	}
	return f.Success(fmt.Sprintf("Saved %s (%s)", id, label))
}

func runSavesShow(opts *SavesOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	partial, err := st.LoadSave(commandContext(cmd), id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "load save", err)
	}
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	cat, err := opts.loadCatalog(f, logger)
	if err != nil {
		return err
	}

	eng := engine.New(cat, engine.WithConfig(cfg), engine.WithLogger(logger))
	eng.Dispatch(engine.RestoreState{Partial: partial})
	snap := eng.State()
	digest, err := canonical.Digest(snap)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "digest snapshot", err)
	}

	out := SaveRestored{ID: id, Digest: digest, Snapshot: snap}
	if f.IsJSON() {
		return f.Success(out)
	}
	return f.Success(formatSnapshot(newStyles(f.Writer), out))
}

func formatSnapshot(s styles, r SaveRestored) string {
	snap := r.Snapshot
	device := "-"
	if snap.SelectedDevice != nil {
		device = snap.SelectedDevice.ID
	}
	lines := []string{
		fmt.Sprintf("%s %s", s.label.Render("Save"), r.ID),
		fmt.Sprintf("  phase=%s month=%d device=%s funding=%s", snap.Phase, snap.TimelineMonth, device, snap.FundingLevel),
		fmt.Sprintf("  budget=%v doom=%v compliance=%v", snap.Budget, snap.DoomLevel, snap.ComplianceLevel),
		fmt.Sprintf("  tags=[%s] crises=%d deflections=%d", strings.Join(snap.ActiveTags.Slice(), ","), len(snap.History), len(snap.ShieldDeflections)),
	}
	if snap.CurrentCrisis != nil {
		lines = append(lines, "  crisis="+snap.CurrentCrisis.ID)
	}
	if da := snap.DeathAnalysis; da != nil {
		lines = append(lines, fmt.Sprintf("  cause=%s total_cost=%v", da.Cause, da.TotalCost))
	}
	lines = append(lines, "  "+s.dim.Render("digest "+r.Digest))
	return strings.Join(lines, "\n")
}
