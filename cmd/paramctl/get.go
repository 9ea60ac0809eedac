package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/engine"
	"mercator-hq/paramengine/pkg/index"
)

var getFlags struct {
	attrs      []string
	greedy     []string
	extraction string
	format     string
}

var getCmd = &cobra.Command{
	Use:   "get NAME [LEVEL...]",
	Short: "Resolve a parameter",
	Long: `Resolve a parameter and print the matching output rows.

Level values are given positionally. When none are given, every level with a
level creator is derived from the --attr attributes.

Examples:
  paramctl get discount gold EU
  paramctl get discount --attr tier=gold --attr region=EU
  paramctl get discount gold EU --greedy region --extraction best
  paramctl get discount gold EU --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringArrayVar(&getFlags.attrs, "attr", nil, "context attribute as key=value (repeatable)")
	getCmd.Flags().StringSliceVar(&getFlags.greedy, "greedy", nil, "levels to traverse greedily, * for all")
	getCmd.Flags().StringVar(&getFlags.extraction, "extraction", "", "result extraction policy (all, best)")
	getCmd.Flags().StringVarP(&getFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

func runGet(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(getFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error(), err)
	}

	pctx, err := queryContext(args[1:])
	if err != nil {
		return cli.NewConfigError("", err.Error(), err)
	}

	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	value, err := a.Engine.Get(ctx, args[0], pctx)
	if err != nil {
		return cli.NewCommandError("get", err)
	}

	return cli.NewFormatter(format).FormatTo(stdout(cmd), valueTable(value))
}

// queryContext builds the query context from positional level values and
// the get flags.
func queryContext(levels []string) (*engine.ParamContext, error) {
	pctx := engine.NewParamContext()
	if len(levels) > 0 {
		values := make([]any, len(levels))
		for i, l := range levels {
			values[i] = l
		}
		pctx = pctx.WithLevelValues(values...)
	}

	for _, attr := range getFlags.attrs {
		key, value, ok := strings.Cut(attr, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("attribute %q must have the form key=value", attr)
		}
		pctx.Set(key, value)
	}

	if len(getFlags.greedy) > 0 {
		overrides := index.NewOverrides()
		for _, level := range getFlags.greedy {
			if level == "*" {
				overrides.SetAllGreedy()
				continue
			}
			overrides.SetGreedy(level)
		}
		pctx = pctx.WithOverrides(overrides)
	}

	if getFlags.extraction != "" {
		extraction, ok := index.ParseExtraction(getFlags.extraction)
		if !ok {
			return nil, fmt.Errorf("unknown extraction policy %q", getFlags.extraction)
		}
		pctx = pctx.WithExtraction(extraction)
	}
	return pctx, nil
}

// valueTable renders a result. Anonymous output levels are named by their
// column position.
func valueTable(value *engine.ParamValue) *cli.Table {
	columns := make([]string, len(value.Columns()))
	for i, c := range value.Columns() {
		columns[i] = levelName(c, i)
	}

	table := cli.NewTable(columns...)
	for _, row := range value.Rows() {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		table.Append(cells...)
	}
	return table
}
