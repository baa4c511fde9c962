package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var secretRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a secret",
	Args:  exactArgs(1, "<key>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secret remove command")

		var result *workflows.RemoveSecretResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.RemoveSecret(context.Background(), workflows.RemoveSecretOptions{
				Env:  newEnv(),
				Name: args[0],
			})
			return err
		})
		if err != nil {
			return err
		}

		if !result.Removed {
			Logger.Warnf("No secret named %s", ui.Highlight.Sprint(args[0]))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Key Removed: "+ui.Highlight.Sprint(args[0]))
		return nil
	},
}
