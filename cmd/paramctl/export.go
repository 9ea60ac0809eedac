package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/repository"
)

var exportFlags struct {
	out      string
	comma    string
	compress bool
	progress bool
}

var exportCmd = &cobra.Command{
	Use:   "export [NAME...]",
	Short: "Export parameters as CSV",
	Long: `Export parameters from the configured repository as CSV.

With --out, each parameter is written to <out>/<parameter>.csv, or to
<parameter>.csv.zst with --compress. Without --out, exactly one parameter must
be named and it is written to stdout.

Examples:
  paramctl export discount > discount.csv
  paramctl export --out backup/
  paramctl export --out backup/ --compress discount shipping`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "output directory")
	exportCmd.Flags().StringVar(&exportFlags.comma, "comma", "", "CSV separator (defaults to repository.csv.comma)")
	exportCmd.Flags().BoolVar(&exportFlags.compress, "compress", false, "write zstd compressed files")
	exportCmd.Flags().BoolVar(&exportFlags.progress, "progress", false, "show a progress bar on stderr")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlags.out == "" && len(args) != 1 {
		return cli.NewConfigError("out", "exactly one parameter can be written to stdout; use --out for more", nil)
	}

	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	comma, err := csvComma(exportFlags.comma, a.Config.Repository.CSV.Comma)
	if err != nil {
		return err
	}

	if exportFlags.out == "" {
		batch, err := a.Repository.Load(ctx, args[0])
		if err != nil {
			return cli.NewCommandError("export", err)
		}
		if _, err := repository.WriteCSV(ctx, stdout(cmd), batch, comma); err != nil {
			return cli.NewCommandError("export", err)
		}
		return nil
	}

	logger := a.Logger()
	dst, err := repository.NewCSVDir(exportFlags.out, comma, exportFlags.compress, logger)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	names := args
	if len(names) == 0 {
		if names, err = a.Repository.List(ctx); err != nil {
			return cli.NewCommandError("export", err)
		}
	}

	var progress cli.ProgressReporter = cli.NoProgress{}
	if exportFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "export", "params")
	}

	sources := []copySource{{reader: a.Repository, names: names}}
	exported, err := copyAll(ctx, sources, dst, logger, len(names), progress)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	fmt.Fprintf(stdout(cmd), "exported %s parameters to %s\n", cli.Count(exported), exportFlags.out)
	return nil
}
