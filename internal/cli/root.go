package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Catalog is a directory holding devices.yaml and events.yaml. Empty
	// means the embedded reference catalog.
	Catalog string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hwhard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hwhard",
		Short: "Hardware is Hard - connected product lifecycle simulator",
		Long: `Drive the deterministic product lifecycle engine from the terminal.

Simulate batches of games for balance analysis, run and replay YAML
scenarios, validate catalogs, assign blame and manage save slots.

Tuning knobs are read from HWH_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog directory (default: embedded catalog)")

	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewBlameCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewSavesCommand(opts))
	cmd.AddCommand(NewBatchesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the environment overlay.
func loadConfig(f *OutputFormatter) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, f.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	return cfg, nil
}

// loadCatalog loads the --catalog directory, or the embedded catalog when
// none was given. Dropped entries are logged, not fatal.
func (o *RootOptions) loadCatalog(f *OutputFormatter, logger *slog.Logger) (catalog.Catalog, error) {
	if o.Catalog == "" {
		cat, err := catalog.Default(catalog.WithLogger(logger))
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeCatalog, "load embedded catalog", err)
		}
		return cat, nil
	}
	cat, report, err := catalog.LoadDir(o.Catalog, catalog.WithLogger(logger))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeCatalog, "load catalog", err)
	}
	f.VerboseLog("catalog %s: %d devices, %d events, %d dropped", o.Catalog, report.Devices, report.Events, len(report.Dropped))
	return cat, nil
}
