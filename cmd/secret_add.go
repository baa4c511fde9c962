package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var secretAddCmd = &cobra.Command{
	Use:   "add <key> <value>",
	Short: "Add or replace a secret",
	Long: `Encrypts value under the vault's group key and stores it as key.
An existing secret with the same key is replaced.

A value of '-' is read from stdin. A value of '@path' is read from the named
file when it exists.

Examples:
  groupenc secret add db_password hunter2
  groupenc secret add tls_key @server.key
  cat token.txt | groupenc secret add api_token -`,
	Args: exactArgs(2, "<key>", "<value>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secret add command")

		value, err := utils.ValueOrContentsOf(args[1], cmd.InOrStdin())
		if err != nil {
			return err
		}

		err = withKeygenSpinner(cmd, func() error {
			_, err := workflows.AddSecret(context.Background(), workflows.AddSecretOptions{
				Env:   newEnv(),
				Name:  args[0],
				Value: string(value),
			})
			return err
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Key Added: "+ui.Highlight.Sprint(args[0]))
		return nil
	},
}
