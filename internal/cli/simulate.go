package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Games         int
	Seed          int64
	Strategy      string
	Workers       int
	MaxIterations int
	ShipWhenSafe  bool
	Database      string
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	BatchID string            `json:"batch_id,omitempty"`
	Report  *simulator.Report `json:"report"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a Monte-Carlo batch and report balance",
		Long: `Play a batch of seeded games across every catalog device and print
win rates, event statistics, the game-length histogram and the balance score.

The same --games, --seed and --strategy always produce the same report,
whatever the worker count.

Examples:
  hwhard simulate --games 500 --seed 42
  hwhard simulate --strategy lowest-doom --ship-when-safe --format json
  hwhard simulate --games 1000 --db ./hwhard.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Games, "games", "n", 100, "number of games in the batch")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "base seed")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", string(simulator.StrategyRandom), "crisis strategy ("+strategyNames()+")")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent games (default: GOMAXPROCS)")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "command cap per game (default: 1000)")
	cmd.Flags().BoolVar(&opts.ShipWhenSafe, "ship-when-safe", false, "ship while doom is under the quality gate")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the batch in this SQLite database")

	return cmd
}

func strategyNames() string {
	names := make([]string, len(simulator.Strategies))
	for i, s := range simulator.Strategies {
		names[i] = string(s)
	}
	return strings.Join(names, "|")
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	cat, err := opts.loadCatalog(f, logger)
	if err != nil {
		return err
	}

	simOpts := simulator.Options{
		NumGames:      opts.Games,
		BaseSeed:      opts.Seed,
		Strategy:      simulator.Strategy(opts.Strategy),
		MaxIterations: opts.MaxIterations,
		Workers:       opts.Workers,
		ShipWhenSafe:  opts.ShipWhenSafe,
	}
	if err := simOpts.Validate(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid simulation flags", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(cat, simulator.WithConfig(cfg), simulator.WithLogger(logger))
	report, err := sim.Run(ctx, simOpts)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "simulation failed", err)
	}

	result := SimulateResult{Report: report}
	if opts.Database != "" {
		id, err := writeBatch(ctx, opts.Database, report)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "store batch", err)
		}
		result.BatchID = id
		f.VerboseLog("stored batch %s in %s", id, opts.Database)
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	out := renderReport(newStyles(f.Writer), report)
	if result.BatchID != "" {
		out += "\nBatch: " + result.BatchID
	}
	return f.Success(out)
}

func writeBatch(ctx context.Context, path string, report *simulator.Report) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.WriteBatch(ctx, report)
}

// renderReport lays out a batch report for the terminal.
func renderReport(s styles, r *simulator.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n",
		s.title.Render("Balance report"),
		s.dim.Render(fmt.Sprintf("%d games, seed %d, strategy %s", len(r.Games), r.Options.BaseSeed, r.Options.Strategy)))
	scoreStyle := s.ok
	if r.Balance.Score < 50 {
		scoreStyle = s.bad
	}
	fmt.Fprintf(&b, "%s %s   win rate %s   avg crises %.2f\n",
		s.label.Render("Score"), scoreStyle.Render(fmt.Sprintf("%d/100", r.Balance.Score)),
		percent(r.WinRate), r.AvgCrises)

	var devices strings.Builder
	fmt.Fprintf(&devices, "%-20s %6s %6s %8s %7s %7s\n", "device", "games", "wins", "win", "month", "doom")
	for _, d := range r.Devices {
		fmt.Fprintf(&devices, "%-20s %6d %6d %8s %7.1f %7.1f\n",
			d.DeviceID, d.Games, d.Wins, percent(d.WinRate), d.AvgFinalMonth, d.AvgFinalDoom)
	}

	var evs strings.Builder
	fmt.Fprintf(&evs, "%-24s %8s %6s %8s\n", "event", "triggers", "games", "corr")
	for _, e := range r.Events {
		fmt.Fprintf(&evs, "%-24s %8d %6d %+8.2f\n", e.EventID, e.Triggers, e.GamesTriggered, e.WinCorrelation)
	}

	var hist strings.Builder
	for _, bk := range r.Histogram {
		fmt.Fprintf(&hist, "%3d-%-3d %s %d\n", bk.From, bk.To, strings.Repeat("#", bar(bk.Count, len(r.Games))), bk.Count)
	}

	sections := []string{
		strings.TrimRight(b.String(), "\n"),
		s.label.Render("Devices"),
		s.box.Render(strings.TrimRight(devices.String(), "\n")),
		s.label.Render("Events"),
		s.box.Render(strings.TrimRight(evs.String(), "\n")),
		s.label.Render("Game length"),
		s.box.Render(strings.TrimRight(hist.String(), "\n")),
	}
	if len(r.Warnings) > 0 {
		var warns []string
		for _, w := range r.Warnings {
			warns = append(warns, s.warn.Render("! "+w))
		}
		sections = append(sections, s.label.Render("Warnings"), strings.Join(warns, "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// bar scales count to at most 40 columns.
func bar(count, total int) int {
	const width = 40
	if total == 0 {
		return 0
	}
	return count * width / total
}
