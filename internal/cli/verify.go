package cli

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/blockberries/vesting/fixture"
)

// VerifyResult is the JSON output of the verify command.
type VerifyResult struct {
	Results []fixture.Result `json:"results"`
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Total   int              `json:"total"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <scenario.yaml|dir>...",
		Short: "Run vesting scenarios against the lock",
		Long: `Run YAML vesting scenarios against the vesting lock.

Each scenario builds one transaction and states the result code the
lock must produce. Directories are searched for .yaml and .yml files.

Exit codes:
  0 - All scenarios produced their expected code
  1 - One or more scenarios did not
  2 - Command error (unreadable or malformed scenario files)

Examples:
  vestingd verify ./scenarios
  vestingd verify beneficiary_claims.yaml --format json
  vestingd verify -v ./scenarios`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, rootOpts, args)
		},
	}
}

func runVerify(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	suites, err := loadSuites(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenarios", err)
	}

	out := VerifyResult{Results: []fixture.Result{}}
	for _, s := range suites {
		results, err := s.Run()
		if err != nil {
			return WrapExitError(ExitCommandError, "run scenarios", err)
		}
		out.Results = append(out.Results, results...)
	}
	out.Total = len(out.Results)
	for _, r := range out.Results {
		if r.Pass {
			out.Passed++
		} else {
			out.Failed++
		}
	}

	if opts.Verbose {
		dump := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		for _, r := range out.Results {
			if r.Report != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s/%s:\n", r.Suite, r.Scenario)
				dump.Fdump(cmd.ErrOrStderr(), *r.Report)
			}
		}
	}

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range out.Results {
			if r.Pass {
				fmt.Fprintf(w, "✓ %s/%s\n", r.Suite, r.Scenario)
				continue
			}
			fmt.Fprintf(w, "✗ %s/%s: want %s, got %s\n", r.Suite, r.Scenario, r.Want, r.Got)
			if r.Error != "" {
				fmt.Fprintf(w, "  %s\n", r.Error)
			}
		}
		fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", out.Passed, out.Failed, out.Total)
	}

	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", out.Failed, out.Total))
	}
	return nil
}

func loadSuites(paths []string) ([]*fixture.Suite, error) {
	var suites []*fixture.Suite
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dir, err := fixture.LoadDir(p)
			if err != nil {
				return nil, err
			}
			suites = append(suites, dir...)
			continue
		}
		s, err := fixture.Load(p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}
