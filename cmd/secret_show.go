package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var secretShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the value of a secret",
	Long: `Decrypts a secret and prints its value to stdout.

A missing secret prints nothing and is reported as a warning.`,
	Args: exactArgs(1, "<key>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secret show command")

		var result *workflows.ShowSecretResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.ShowSecret(context.Background(), workflows.ShowSecretOptions{
				Env:  newEnv(),
				Name: args[0],
			})
			return err
		})
		if err != nil {
			return err
		}

		if !result.Found {
			Logger.Warnf("No secret named %s", ui.Highlight.Sprint(args[0]))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Value)
		return nil
	},
}
