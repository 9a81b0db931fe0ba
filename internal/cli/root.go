// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the storeio command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"code.hybscloud.com/storeio"
	"code.hybscloud.com/storeio/internal/backend"
	"code.hybscloud.com/storeio/internal/config"
	"code.hybscloud.com/storeio/runner"
	"code.hybscloud.com/storeio/store"
)

// RootOptions holds global flags and the state shared by subcommands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	logger *zap.Logger
	store  *store.Store
	runner *runner.Runner
}

// NewRootCommand creates the root command for the storeio CLI.
// The caller owns cleanup; [Execute] runs it and releases the store.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute runs the storeio CLI with the process arguments. The store and
// logger opened for the command are released on every path, including
// command failures.
func Execute(ctx context.Context) error {
	opts := &RootOptions{}
	return opts.execute(ctx, newRootCommand(opts))
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storeio",
		Short: "storeio - effect-tracked object store",
		Long: `storeio inspects and edits an object store through effect-tracked
computations. Read commands run in read-only sessions; write commands run in
writable sessions that commit on success and retry on conflict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewTruncateCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))

	return cmd
}

// execute runs cmd, then closes whatever the run opened. cobra skips
// post-run hooks when a command fails, so cleanup cannot live there.
func (o *RootOptions) execute(ctx context.Context, cmd *cobra.Command) (err error) {
	defer func() {
		if cerr := o.close(); cerr != nil && err == nil {
			err = WrapExitError(ExitFailure, "close store", cerr)
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func (o *RootOptions) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	return o.start(ctx, cfg)
}

// start builds the logger, store and runner described by cfg.
func (o *RootOptions) start(ctx context.Context, cfg config.Config) error {
	backoff, err := cfg.BackoffDuration()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	o.logger, err = cfg.NewLogger(o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "init logger", err)
	}
	o.store, err = backend.Open(ctx, cfg, o.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	o.runner = runner.New(o.store,
		runner.WithLogger(o.logger.Named("runner")),
		runner.WithMaxRetries(cfg.Runner.MaxRetries),
		runner.WithBackoff(backoff))
	return nil
}

// close releases the store and flushes the logger. It is safe to call more
// than once.
func (o *RootOptions) close() error {
	var err error
	if o.store != nil {
		err = o.store.Close()
		o.store, o.runner = nil, nil
	}
	if o.logger != nil {
		_ = o.logger.Sync()
		o.logger = nil
	}
	return err
}

// read runs m and maps its failure to an exit code.
func read[A any](cmd *cobra.Command, o *RootOptions, m storeio.IO[storeio.Read, A]) (A, error) {
	a, err := runner.Read(cmd.Context(), o.runner, m)
	return a, classify(err)
}

// write runs m and maps its failure to an exit code.
func write[A any](cmd *cobra.Command, o *RootOptions, m storeio.IO[storeio.Write, A]) (A, error) {
	a, err := runner.Write(cmd.Context(), o.runner, m)
	return a, classify(err)
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInvalidObject):
		return WrapExitError(ExitCommandError, "invalid input", err)
	default:
		return WrapExitError(ExitFailure, "operation failed", err)
	}
}
