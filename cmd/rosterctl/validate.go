package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/ingest"
)

type validateOptions struct {
	file     string
	asJSON   bool
	showRows bool
}

func newValidateCmd(global *globalOptions, cfg *config.Config) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a roster file and print the import report",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := validateFile(cmd.Context(), opts.file, importer.Options{
				Workers:           global.workers,
				ParallelThreshold: cfg.Import.ParallelThreshold,
			})
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), filepath.Base(opts.file), report, opts.showRows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Roster file, .csv or .xlsx (required)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full report as JSON")
	cmd.Flags().BoolVar(&opts.showRows, "rows", false, "List the users that would be uploaded")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// validateFile runs the import pipeline over a file on disk. File-level
// rejections carry exitValidation.
func validateFile(ctx context.Context, path string, opts importer.Options) (*importer.ImportReport, error) {
	format, err := ingest.FormatFromFilename(path)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("open roster: %w", err))
	}
	defer f.Close()

	start := time.Now()
	rows, err := ingest.Parse(f, format)
	if err != nil {
		return nil, withCode(exitValidation, fmt.Errorf("read %s: %w", filepath.Base(path), err))
	}

	report, err := importer.RunWithOptions(ctx, rows, opts)
	if err != nil {
		if importer.IsFileLevel(err) {
			return nil, withCode(exitValidation, err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, withCode(exitFailure, err)
		}
		return nil, err
	}

	slog.Debug("roster validated",
		"file", path,
		"total_rows", report.TotalRows,
		"valid_rows", report.ValidCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
