package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/uploader"
)

type uploadOptions struct {
	file     string
	endpoint string
	token    string
	timeout  time.Duration
	yes      bool
}

func newUploadCmd(global *globalOptions, cfg *config.Config) *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Validate a roster file and upload the valid users in one batch",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.endpoint) == "" {
				return withCode(exitUsage, errors.New("--endpoint is required (or set BATCH_UPLOAD_URL)"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			report, err := validateFile(cmd.Context(), opts.file, importer.Options{
				Workers:           global.workers,
				ParallelThreshold: cfg.Import.ParallelThreshold,
			})
			if err != nil {
				return err
			}
			printReport(out, filepath.Base(opts.file), report, false)

			if report.ValidCount() == 0 {
				return withCode(exitValidation, errors.New("no valid rows to upload"))
			}

			if !opts.yes {
				ok, err := confirm(cmd.InOrStdin(), out,
					fmt.Sprintf("Upload %d users to %s?", report.ValidCount(), opts.endpoint))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Upload cancelled.")
					return nil
				}
			}

			up := uploader.NewHTTPUploader(opts.endpoint, opts.token, opts.timeout)
			if err := up.Upload(cmd.Context(), report.ValidUsers); err != nil {
				var rejected *uploader.RejectedError
				if errors.As(err, &rejected) {
					return withCode(exitUpload, fmt.Errorf("upload rejected (%d): %w", rejected.StatusCode, err))
				}
				return withCode(exitUpload, err)
			}

			fmt.Fprintf(out, "Uploaded %d users.\n", report.ValidCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Roster file, .csv or .xlsx (required)")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", cfg.BatchUpload.URL, "Bulk user endpoint")
	cmd.Flags().StringVar(&opts.token, "token", cfg.BatchUpload.Token, "Bearer token for the endpoint")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", cfg.BatchUpload.Timeout, "Upload request timeout")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
