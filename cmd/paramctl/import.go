package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/internal/app"
	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/repository"
)

var importFlags struct {
	comma    string
	progress bool
}

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import CSV tables into the repository",
	Long: `Import parameters from CSV files into the configured repository.

Each PATH is a <parameter>.csv or <parameter>.csv.zst file, or a directory
whose CSV files are all imported. Existing parameters with the same name are
replaced.

Examples:
  paramctl import tables/discount.csv
  paramctl import tables/ --comma ,
  paramctl import dump/*.csv.zst --progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFlags.comma, "comma", "", "CSV separator (defaults to repository.csv.comma)")
	importCmd.Flags().BoolVar(&importFlags.progress, "progress", false, "show a progress bar on stderr")
}

// copySource is a repository and the parameters to take from it.
type copySource struct {
	reader repository.Reader
	names  []string
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	comma, err := csvComma(importFlags.comma, a.Config.Repository.CSV.Comma)
	if err != nil {
		return err
	}

	logger := a.Logger()
	sources, total, err := copySources(ctx, args, comma, logger)
	if err != nil {
		return cli.NewCommandError("import", err)
	}

	var progress cli.ProgressReporter = cli.NoProgress{}
	if importFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "import", "params")
	}

	imported, err := copyAll(ctx, sources, a.Repository, logger, total, progress)
	if err != nil {
		return cli.NewCommandError("import", err)
	}

	// cached compilations of replaced parameters are stale
	a.Preparer.InvalidateAll()

	fmt.Fprintf(stdout(cmd), "imported %s parameters\n", cli.Count(imported))
	return nil
}

// copySources resolves import paths to CSV directories. A file path selects
// one parameter of its directory.
func copySources(ctx context.Context, paths []string, comma rune, logger *slog.Logger) ([]copySource, int, error) {
	sources := make([]copySource, 0, len(paths))
	total := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, 0, err
		}

		dir, names := path, []string(nil)
		if !info.IsDir() {
			name, ok := parameterName(filepath.Base(path))
			if !ok {
				return nil, 0, fmt.Errorf("%s: expected a .csv or .csv%s file", path, repository.ZstdExt)
			}
			dir, names = filepath.Dir(path), []string{name}
		}

		src, err := repository.NewCSVDir(dir, comma, false, logger)
		if err != nil {
			return nil, 0, err
		}
		if names == nil {
			if names, err = src.List(ctx); err != nil {
				return nil, 0, err
			}
		}
		sources = append(sources, copySource{reader: src, names: names})
		total += len(names)
	}
	return sources, total, nil
}

// copyAll copies every source parameter into dst one at a time so progress
// can be reported.
func copyAll(ctx context.Context, sources []copySource, dst repository.Writer, logger *slog.Logger, total int, progress cli.ProgressReporter) (int, error) {
	progress.Start(int64(total))
	copied := 0
	for _, src := range sources {
		for _, name := range src.names {
			if _, err := repository.Copy(ctx, src.reader, dst, logger, name); err != nil {
				progress.Error(err)
				return copied, err
			}
			copied++
			progress.Update(int64(copied))
		}
	}
	progress.Finish()
	return copied, nil
}

// parameterName strips the CSV extensions from a file name.
func parameterName(file string) (string, bool) {
	for _, ext := range []string{".csv" + repository.ZstdExt, ".csv"} {
		if name, ok := strings.CutSuffix(file, ext); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

// csvComma returns the flag separator, falling back to the configured one.
func csvComma(flag, configured string) (rune, error) {
	s := flag
	if s == "" {
		s = configured
	}
	comma, err := app.Comma(s)
	if err != nil {
		return 0, cli.NewConfigError("comma", err.Error(), err)
	}
	return comma, nil
}
