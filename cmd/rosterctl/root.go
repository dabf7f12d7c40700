package main

import (
	"errors"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/workforce-ai/roster-import/internal/config"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitValidation = 3
	exitUpload     = 4
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCodeOf(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

type globalOptions struct {
	verbose bool
	workers int
}

func newRootCmd() *cobra.Command {
	var global globalOptions
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Validate and upload learner/teacher roster files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if global.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	workers := cfg.Import.ValidationWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	cmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Log progress to stderr")
	cmd.PersistentFlags().IntVar(&global.workers, "workers", workers, "Goroutines used to validate large files")

	cmd.AddCommand(newValidateCmd(&global, cfg))
	cmd.AddCommand(newUploadCmd(&global, cfg))
	return cmd
}
