/*
Package cli provides command-line utilities shared by the paramctl commands.

Output Formatting:

Commands render results as text, JSON or CSV. Tabular results use Table:

	table := cli.NewTable("parameter", "entries")
	table.Append("discount", cli.Count(1200))
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Progress Reporting:

Import and export report progress per parameter:

	progress := cli.NewProgressReporter(os.Stderr, "Importing", "params")
	progress.Start(int64(len(names)))
	progress.Update(1)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Errors:

ExitCode maps a ConfigError to exit status 2 and any other error to 1.
*/
package cli
