package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/internal/app"
	"mercator-hq/paramengine/pkg/cli"
)

var lintFlags struct {
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [NAME...]",
	Short: "Validate and compile parameters",
	Long: `Load parameters from the repository and compile them, reporting every
parameter whose header, level codes or entries are invalid.

With no names, every parameter in the repository is checked.

Examples:
  paramctl lint
  paramctl lint discount shipping
  paramctl lint --format json`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format (text, json)")
}

// LintResult is the outcome of compiling one parameter.
type LintResult struct {
	Parameter string `json:"parameter"`
	Valid     bool   `json:"valid"`
	Entries   int    `json:"entries,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	if lintFlags.format != "text" && lintFlags.format != "json" {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported lint format %q", lintFlags.format), nil)
	}

	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	names := args
	if len(names) == 0 {
		if names, err = a.Repository.List(ctx); err != nil {
			return cli.NewCommandError("lint", err)
		}
	}

	results := lintParameters(ctx, a, names)

	out := stdout(cmd)
	if lintFlags.format == "json" {
		err = outputLintJSON(out, results)
	} else {
		outputLintText(out, results)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("%d of %d parameters failed validation", countInvalid(results), len(results)))
		}
	}
	return nil
}

// lintParameters compiles each parameter directly from the repository,
// bypassing the preparer cache.
func lintParameters(ctx context.Context, a *app.App, names []string) []LintResult {
	results := make([]LintResult, 0, len(names))
	for _, name := range names {
		result := LintResult{Parameter: name}

		batch, err := a.Repository.Load(ctx, name)
		if err == nil {
			param, compileErr := a.Compiler.CompileBatch(ctx, batch, a.Config.Engine.BatchSize)
			if compileErr == nil {
				result.Entries = param.EntryCount()
			}
			err = compileErr
		}

		if err != nil {
			result.Error = err.Error()
		} else {
			result.Valid = true
		}
		results = append(results, result)
	}
	return results
}

func countInvalid(results []LintResult) int {
	n := 0
	for _, r := range results {
		if !r.Valid {
			n++
		}
	}
	return n
}

func outputLintText(w io.Writer, results []LintResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s (%s entries)\n", r.Parameter, cli.Count(r.Entries))
		} else {
			fmt.Fprintf(w, "✗ %s: %s\n", r.Parameter, r.Error)
		}
	}
	invalid := countInvalid(results)
	fmt.Fprintf(w, "\n%d parameters checked, %d valid, %d invalid\n", len(results), len(results)-invalid, invalid)
}

func outputLintJSON(w io.Writer, results []LintResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"results": results,
		"valid":   countInvalid(results) == 0,
	})
}
