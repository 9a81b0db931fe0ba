// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"code.hybscloud.com/storeio/ops"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	Update bool
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <type> <key> <json>",
		Short: "Store a record",
		Long: `Store a JSON record under a type and key.

Without --update an existing key is an error.

Example:
  storeio put Dog 42 '{"id":"42","name":"Rex"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := json.RawMessage(args[2])
			if !json.Valid(payload) {
				return &ExitError{Code: ExitCommandError, Message: "payload is not valid JSON"}
			}
			rec, err := write(cmd, opts.RootOptions, ops.RawPut(args[0], args[1], payload, opts.Update))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().BoolVarP(&opts.Update, "update", "u", false, "replace an existing record")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <key>",
		Short: "Print a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := read(cmd, opts, ops.RawGet(args[0], args[1]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "Print every record of a type, ordered by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := read(cmd, opts, ops.RawList(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recs)
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <key>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := write(cmd, opts, ops.RawRemove(args[0], args[1])); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"type": args[0], "key": args[1]})
		},
	}
}

// NewTruncateCommand creates the truncate command.
func NewTruncateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <type>",
		Short: "Remove every record of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := write(cmd, opts, ops.RawTruncate(args[0])); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"type": args[0]})
		},
	}
}

// NewTypesCommand creates the types command.
func NewTypesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the object types holding records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := read(cmd, opts, ops.RawTypes())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), types)
		},
	}
}
