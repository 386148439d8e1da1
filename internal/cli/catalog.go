package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
)

// CatalogValidation is the JSON payload of catalog validate.
type CatalogValidation struct {
	Source string             `json:"source"`
	Valid  bool               `json:"valid"`
	Report catalog.LoadReport `json:"report"`
}

// CatalogListing is the JSON payload of catalog list.
type CatalogListing struct {
	Devices []catalog.Device    `json:"devices"`
	Events  []catalog.GameEvent `json:"events"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate device and event catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	return cmd
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate a catalog against the schema",
		Long: `Validate devices.yaml and events.yaml against the catalog schema.

Entries that fail the schema or repeat an id are reported as dropped;
trigger conditions that do not parse are reported as warnings. Without a
directory the embedded reference catalog is checked.

Exit codes:
  0 - No entries dropped (warnings allowed)
  1 - One or more entries were dropped
  2 - Command error (files missing, YAML does not parse)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Catalog
			if len(args) == 1 {
				dir = args[0]
			}
			return runCatalogValidate(rootOpts, dir, cmd)
		},
	}
}

func runCatalogValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	var (
		report catalog.LoadReport
		err    error
	)
	source := dir
	if dir == "" {
		source = "embedded"
		var l *catalog.Loader
		l, err = catalog.NewLoader(catalog.WithLogger(logger))
		if err == nil {
			devices, events := catalog.DefaultYAML()
			_, report, err = l.Load(devices, events)
		}
	} else {
		_, report, err = catalog.LoadDir(dir, catalog.WithLogger(logger))
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "load catalog", err)
	}

	out := CatalogValidation{Source: source, Valid: len(report.Dropped) == 0, Report: report}
	if f.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: out}
		if !out.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeCatalog,
				Message: fmt.Sprintf("%d catalog entries dropped", len(report.Dropped)),
			}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		s := newStyles(f.Writer)
		w := f.Writer
		fmt.Fprintf(w, "%s %s: %d devices, %d events\n", s.mark(out.Valid), source, report.Devices, report.Events)
		for _, d := range report.Dropped {
			id := d.ID
			if id == "" {
				id = "?"
			}
			fmt.Fprintf(w, "  %s %s[%d] %s: %s\n", s.bad.Render("dropped"), d.Kind, d.Index, id, d.Reason)
		}
		for _, wn := range report.Warnings {
			fmt.Fprintf(w, "  %s %s %s: %s\n", s.warn.Render("warning"), wn.Kind, wn.ID, wn.Message)
		}
	}

	if !out.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d catalog entries dropped", len(report.Dropped)))
	}
	return nil
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the devices and events of the active catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cat, err := rootOpts.loadCatalog(f, f.Logger())
			if err != nil {
				return err
			}
			out := CatalogListing{Devices: cat.Devices(), Events: cat.Events()}
			if f.IsJSON() {
				return f.Success(out)
			}
			return f.Success(formatCatalog(newStyles(f.Writer), out))
		},
	}
}

func formatCatalog(s styles, c CatalogListing) string {
	var b strings.Builder
	fmt.Fprintln(&b, s.label.Render("Devices"))
	for _, d := range c.Devices {
		fmt.Fprintf(&b, "  %-20s %-10s %-8s budget=%v tags=%s\n",
			d.ID, d.Archetype, d.Difficulty, d.InitialBudget, strings.Join(d.InitialTags, ","))
	}
	fmt.Fprintln(&b, s.label.Render("Events"))
	for _, e := range c.Events {
		line := fmt.Sprintf("  %-24s %d choices", e.ID, len(e.Choices))
		if e.TriggerCondition != "" {
			line += " when " + e.TriggerCondition
		}
		fmt.Fprintln(&b, line)
	}
	return strings.TrimRight(b.String(), "\n")
}
