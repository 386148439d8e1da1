package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
)

// BatchesOptions holds flags shared by the batches subcommands.
type BatchesOptions struct {
	*RootOptions
	Database string
	Device   string
}

// BatchDetail is the JSON payload of batches show.
type BatchDetail struct {
	ID     string           `json:"id"`
	Report simulator.Report `json:"report"`
	Device *DeviceTally     `json:"device,omitempty"`
}

// DeviceTally counts one device's stored games.
type DeviceTally struct {
	DeviceID string `json:"device_id"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
}

// NewBatchesCommand creates the batches command group.
func NewBatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Inspect simulator batches stored with simulate --db",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List stored batches in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatchesList(opts, cmd)
		},
	})

	show := &cobra.Command{
		Use:           "show <id>",
		Short:         "Print a stored batch report",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatchesShow(opts, args[0], cmd)
		},
	}
	show.Flags().StringVar(&opts.Device, "device", "", "also tally stored games of this device")
	cmd.AddCommand(show)

	return cmd
}

func runBatchesList(opts *BatchesOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	batches, err := st.ListBatches(commandContext(cmd))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list batches", err)
	}
	if f.IsJSON() {
		return f.Success(batches)
	}
	if len(batches) == 0 {
		return f.Success("No batches.")
	}
	var b strings.Builder
	for _, bt := range batches {
		fmt.Fprintf(&b, "%s  games=%-5d seed=%-6d %-13s win=%s score=%d\n",
			bt.ID, bt.NumGames, bt.BaseSeed, bt.Strategy, percent(bt.WinRate), bt.Score)
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}

func runBatchesShow(opts *BatchesOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	report, err := st.ReadBatch(ctx, id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "read batch", err)
	}
	out := BatchDetail{ID: id, Report: report}
	if opts.Device != "" {
		total, wins, err := st.CountGameResults(ctx, id, opts.Device)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "count game results", err)
		}
		out.Device = &DeviceTally{DeviceID: opts.Device, Games: total, Wins: wins}
	}

	if f.IsJSON() {
		return f.Success(out)
	}
	text := renderReport(newStyles(f.Writer), &report)
	if out.Device != nil {
		text += fmt.Sprintf("\n%s: %d of %d games won", out.Device.DeviceID, out.Device.Wins, out.Device.Games)
	}
	return f.Success(text)
}
