package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/prepared"
)

var inspectFlags struct {
	levels bool
	format string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [NAME...]",
	Short: "Show compiled parameter statistics",
	Long: `Compile parameters and print their shape and index statistics.

With --levels, print the resolved type, matcher and traversal strategy of
every level of each parameter instead.

Examples:
  paramctl inspect
  paramctl inspect discount --levels
  paramctl inspect --format csv`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectFlags.levels, "levels", false, "show per-level details")
	inspectCmd.Flags().StringVarP(&inspectFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(inspectFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error(), err)
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
			return cli.NewCommandError("inspect", err)
		}
	}

	params := make([]*prepared.Parameter, 0, len(names))
	for _, name := range names {
		param, err := a.Preparer.Get(ctx, name)
		if err != nil {
			return cli.NewCommandError("inspect", err)
		}
		params = append(params, param)
	}

	var table *cli.Table
	if inspectFlags.levels {
		table = levelsTable(params)
	} else {
		table = summaryTable(params)
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), table)
}

func summaryTable(params []*prepared.Parameter) *cli.Table {
	table := cli.NewTable("parameter", "in", "out", "entries", "cacheable", "nodes", "depth", "version", "compiled")
	for _, p := range params {
		nodes, depth := "-", "-"
		if ix := p.Index(); ix != nil {
			stats := ix.Stats()
			nodes = cli.Count(stats.Nodes)
			depth = strconv.Itoa(stats.Depth)
		}
		table.Append(
			p.Name,
			strconv.Itoa(p.InputLevels),
			strconv.Itoa(p.OutputLevels()),
			cli.Count(p.EntryCount()),
			strconv.FormatBool(p.Cacheable),
			nodes,
			depth,
			p.Version.String()[:8],
			cli.Age(p.CompiledAt),
		)
	}
	return table
}

func levelsTable(params []*prepared.Parameter) *cli.Table {
	table := cli.NewTable("parameter", "level", "name", "kind", "type", "matcher", "strategy", "array", "creator")
	for _, p := range params {
		traversal := p.Traversal()
		for i, l := range p.Levels {
			kind, strategy := "output", "-"
			if i < p.InputLevels {
				kind = "input"
				if i < len(traversal.Levels) {
					strategy = traversal.Levels[i].Strategy.String()
				}
			}
			typeCode := "-"
			if l.Type != nil {
				typeCode = l.Type.Code()
			}
			matcherCode := l.MatcherCode
			if matcherCode == "" {
				matcherCode = "-"
			}
			creator := l.LevelCreator
			if creator == "" {
				creator = "-"
			}
			table.Append(
				p.Name,
				strconv.Itoa(i),
				levelName(l.Name, i),
				kind,
				typeCode,
				matcherCode,
				strategy,
				strconv.FormatBool(l.Array),
				creator,
			)
		}
	}
	return table
}

func levelName(name string, pos int) string {
	if name == "" {
		return fmt.Sprintf("#%d", pos)
	}
	return name
}
