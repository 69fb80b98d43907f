package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/hncrawl/internal/config"
	"github.com/nao1215/hncrawl/internal/database"
	hnlog "github.com/nao1215/hncrawl/internal/log"
	"github.com/nao1215/hncrawl/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl runs from the archive database",
		Long: `History lists the runs, cycles, submissions and saved files recorded by
the crawl command. The archive is only a record: a new crawl always starts
with an empty set of seen submissions.

Examples:
  # Summary of every run
  hncrawl history

  # Everything recorded for one submission
  hncrawl history --submission 38012345 -v

  # Markdown report of run 3
  hncrawl history --run 3 --markdown > run3.md

  # Print the summary and keep a Markdown copy
  hncrawl history --save history.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run", "r", 0,
		"Only show the run with this id")
	cmd.Flags().Int64P("submission", "s", 0,
		"Only show data for this submission id")
	cmd.Flags().String("db-dir", "",
		"Archive database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().String("save", "",
		"Also write a Markdown report to this file")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	dbDir    string
	filter   database.Filter
	json     bool
	markdown bool
	save     string
	verbose  bool
}

func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)

	if opts.filter.RunID, err = cmd.Flags().GetInt64("run"); err != nil {
		return opts, err
	}
	if opts.filter.SubmissionID, err = cmd.Flags().GetInt64("submission"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.save, err = cmd.Flags().GetString("save"); err != nil {
		return opts, err
	}
	opts.verbose = getVerboseFlag(cmd)
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	logger := hnlog.NewSecureLogger(cmd.ErrOrStderr(), opts.verbose)
	logger.Debug("opening archive", "db_dir", opts.dbDir, "run", opts.filter.RunID, "submission", opts.filter.SubmissionID)

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no crawl history yet (run 'hncrawl crawl' first): %w", err)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	h, err := report.Collect(cmd.Context(), db, opts.filter)
	if err != nil {
		return err
	}

	logger.Debug("history collected", "runs", len(h.Runs), "submissions", len(h.Submissions), "resources", len(h.Resources))

	w := newHistoryWriter(cmd.OutOrStdout(), opts)
	if opts.save != "" {
		f, err := os.Create(opts.save) //nolint:gosec // path comes from the command line
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.save, err)
		}
		defer f.Close()
		w = report.NewMultiWriter(w, report.NewMarkdownWriter(f))
	}

	if _, err := w.Write(h); err != nil {
		return err
	}
	if opts.save != "" {
		logger.Info("markdown report saved", "path", opts.save)
	}
	return nil
}

// newHistoryWriter picks the writer for the requested format.
func newHistoryWriter(w io.Writer, opts historyOptions) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(opts.verbose))
	}
}
