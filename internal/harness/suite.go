package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult summarises a directory of scenarios.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one scenario that did not pass.
type SuiteFailure struct {
	Path     string   `json:"path"`
	Scenario string   `json:"scenario,omitempty"`
	Errors   []string `json:"errors"`
}

// FindScenarios returns the .yaml and .yml files directly under dir,
// sorted by name. dir may also be a single file.
func FindScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// RunSuite loads and runs every scenario under dir. Scenarios that fail to
// load count as failures rather than aborting the suite.
func RunSuite(dir string, opts ...Option) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	h := New(opts...)
	res := &SuiteResult{}
	for _, path := range paths {
		res.Total++
		scenario, err := LoadScenario(path)
		if err != nil {
			res.fail(path, "", err.Error())
			continue
		}
		out, err := h.Run(scenario)
		if err != nil {
			res.fail(path, scenario.Name, err.Error())
			continue
		}
		if !out.Pass {
			res.fail(path, scenario.Name, out.Errors...)
			continue
		}
		res.Passed++
	}
	return res, nil
}

func (r *SuiteResult) fail(path, name string, errs ...string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{Path: path, Scenario: name, Errors: errs})
}
