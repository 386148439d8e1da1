package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool
	Filter    string
	GoldenDir string
}

// ScenarioResult is the outcome of one scenario in a test run.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarises a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
}

// Golden states reported per scenario.
const (
	goldenMatch   = "match"
	goldenUpdated = "updated"
	goldenMissing = "missing"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run every scenario in a directory against golden traces",
		Long: `Run every .yaml scenario in a directory. Each scenario must pass its
expectations and assertions and, when a golden file exists, reproduce it
byte for byte.

Golden files live in <scenarios-dir>/golden/<name>.golden unless --golden
points elsewhere. Use --update to (re)write them from the current traces.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (directory not found, etc.)

Examples:
  hwhard test ./scenarios
  hwhard test ./scenarios --filter "shield-*"
  hwhard test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Update, "update", "u", false, "rewrite golden files from current traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden file directory (default: <scenarios-dir>/golden)")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := f.Logger()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}
	paths, err := harness.FindScenarios(dir)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "find scenarios", err)
	}
	paths, err = filterScenarios(paths, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid filter pattern", err)
	}
	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(dir, "golden")
	}
	hopts, err := opts.harnessOptions(f, logger)
	if err != nil {
		return err
	}

	h := harness.New(hopts...)
	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, path := range paths {
		sr := testScenario(h, path, goldenDir, opts.Update)
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	return outputTest(f, result)
}

func filterScenarios(paths []string, pattern string) ([]string, error) {
	if pattern == "" {
		return paths, nil
	}
	var out []string
	for _, p := range paths {
		base := filepath.Base(p)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// testScenario runs one scenario and checks or rewrites its golden file.
func testScenario(h *harness.Harness, path, goldenDir string, update bool) ScenarioResult {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	sr := ScenarioResult{Name: name, Path: path}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := h.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr
	}
	sr.Errors = result.Errors

	current, err := harness.GoldenBytes(scenario, result)
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Sprintf("golden: %v", err))
		return sr
	}

	goldenPath := filepath.Join(goldenDir, name+".golden")
	switch {
	case update:
		if err := writeGolden(goldenPath, current); err != nil {
			sr.Errors = append(sr.Errors, err.Error())
			return sr
		}
		sr.Golden = goldenUpdated
	default:
		want, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			sr.Golden = goldenMissing
		case err != nil:
			sr.Errors = append(sr.Errors, fmt.Sprintf("read golden: %v", err))
		case !bytes.Equal(bytes.TrimRight(want, "\n"), current):
			sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
		default:
			sr.Golden = goldenMatch
		}
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

func outputTest(f *OutputFormatter, result TestResult) error {
	if f.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeFailed,
				Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
			}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		s := newStyles(f.Writer)
		w := f.Writer
		for _, sr := range result.Scenarios {
			suffix := ""
			if sr.Golden == goldenUpdated {
				suffix = s.dim.Render(" (golden updated)")
			}
			fmt.Fprintf(w, "%s %s%s\n", s.mark(sr.Pass), sr.Name, suffix)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		if result.Failed == 0 {
			fmt.Fprintln(w, s.ok.Render("✓ All scenarios passed"))
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
