package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/reconcile"
)

var (
	importFile      string
	importFormat    string
	importOutput    string
	importRejects   string
	importDryRun    bool
	importSkipDupes bool
	importUserID    string
	importMigrate   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV or XLSX lead file into the leads store",
	Long:  "Parses the file, validates and scores every row, inserts new leads in pages and merges duplicates into the leads they match. Prints a run summary.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importFormat != "json" && importFormat != "yaml" {
			return eris.Errorf("import: unsupported --format %q (want json or yaml)", importFormat)
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		opts := reconcile.Options{
			SkipDuplicates: cfg.Import.SkipDuplicates,
			UserID:         cfg.Import.UserID,
		}
		if cmd.Flags().Changed("skip-duplicates") {
			opts.SkipDuplicates = importSkipDupes
		}
		if cmd.Flags().Changed("user-id") {
			opts.UserID = importUserID
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if importMigrate {
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "import: migrate")
			}
		}

		engine := reconcile.New(st,
			reconcile.WithPageSize(cfg.Import.PageSize),
			reconcile.WithRateLimit(cfg.Import.WritesPerSecond),
		)

		var sum *reconcile.Summary
		var runErr error
		if importDryRun {
			sum, runErr = engine.Preview(ctx, importFile, opts)
		} else {
			sum, runErr = engine.Import(ctx, importFile, opts)
		}

		if err := writeReport(sum); err != nil {
			return err
		}
		if runErr != nil {
			return eris.Wrap(runErr, "import")
		}

		zap.L().Info("import complete",
			zap.String("file", importFile),
			zap.String("run_id", sum.RunID),
			zap.Int("inserted", sum.Inserted),
			zap.Int("updated", sum.Updated),
			zap.Int("invalid", sum.Invalid),
			zap.Bool("no_changes", sum.NoChanges),
		)
		return nil
	},
}

// writeReport prints the summary and the rejects file. It runs for failed
// runs too, so partial results are never lost.
func writeReport(sum *reconcile.Summary) error {
	if sum == nil {
		return nil
	}

	out := os.Stdout
	if importOutput != "" {
		f, err := os.Create(importOutput)
		if err != nil {
			return eris.Wrap(err, "import: create output file")
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	if err := writeSummary(out, sum, importFormat); err != nil {
		return err
	}

	if importRejects != "" && len(sum.InvalidRows) > 0 {
		if err := writeRejectsFile(importRejects, sum.InvalidRows); err != nil {
			return err
		}
		zap.L().Info("rejects written", zap.String("path", importRejects), zap.Int("rows", len(sum.InvalidRows)))
	}
	return nil
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to CSV or XLSX file (required)")
	importCmd.Flags().BoolVar(&importSkipDupes, "skip-duplicates", false, "leave matched leads untouched (archived referrals are still reactivated)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "classify rows and report without writing")
	importCmd.Flags().StringVar(&importUserID, "user-id", "", "importer recorded on new leads")
	importCmd.Flags().StringVar(&importFormat, "format", "json", "summary format: json or yaml")
	importCmd.Flags().StringVar(&importOutput, "output", "", "write the summary to this file instead of stdout")
	importCmd.Flags().StringVar(&importRejects, "rejects", "", "write invalid rows to this CSV file")
	importCmd.Flags().BoolVar(&importMigrate, "migrate", false, "create the leads table before importing")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
