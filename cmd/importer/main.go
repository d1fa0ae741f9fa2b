// Command athletix-import runs the import pipelines from the command line:
// decode a legacy file, inspect how its header is understood, import start
// lists or results, and generate a schedule.
//
// With the default memory store nothing is persisted, which makes every
// command a dry run. Pass --store postgres to write to DATABASE_URL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/athletix/internal/config"
	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/logging"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitRowErrors  = 3
	exitStoreError = 4
)

// codedError carries the process exit code of a failed command.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

type rootOptions struct {
	envFile  string
	store    string
	logLevel string
}

// loaded is the configuration resolved by the root command before any
// subcommand runs.
type loaded struct {
	cfg *config.Config
}

func newRootCmd() (*cobra.Command, *loaded) {
	var opts rootOptions
	state := &loaded{}

	root := &cobra.Command{
		Use:           "athletix-import",
		Short:         "Import athletics start lists and results from CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return withCode(exitUsage, fmt.Errorf("load %s: %w", opts.envFile, err))
				}
			}
			// The flag decides the backend so that a stray STORE_BACKEND in
			// the environment never turns a dry run into a write.
			if err := os.Setenv("STORE_BACKEND", opts.store); err != nil {
				return err
			}
			if opts.logLevel != "" {
				if err := os.Setenv("LOG_LEVEL", opts.logLevel); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return withCode(exitUsage, err)
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))
			state.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "Load environment variables from this file first")
	root.PersistentFlags().StringVar(&opts.store, "store", config.BackendMemory, "Record store: memory (dry run) or postgres")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		newNormalizeCmd(state),
		newParseCmd(state),
		newImportCmd(state),
		newScheduleCmd(state),
	)
	return root, state
}

// writeJSON prints v indented, the report format of every command.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, _ := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
	}
	os.Exit(exitCode(err))
}

// errorText prints errors with a support code as "Message (Code: X). Action"
// and everything else, usage errors included, verbatim.
func errorText(err error) string {
	if !core.IsUserFacing(err) {
		return err.Error()
	}
	return core.FormatUserError(err)
}
