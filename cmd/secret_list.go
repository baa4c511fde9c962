package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "List secret names",
	Long: `Prints the name of every secret, one per line, sorted by their index in the
vault.

Names can only be recovered when allow_listing is enabled. With hashed names
nothing is printed.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secret list command")

		var result *workflows.ListSecretsResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.ListSecrets(context.Background(), workflows.ListSecretsOptions{Env: newEnv()})
			return err
		})
		if err != nil {
			return err
		}

		if !result.Listable && result.Total > 0 {
			Logger.Warnf("%d secret(s) stored with hashed names; enable %s to list names",
				result.Total, ui.Code.Sprint("allow_listing"))
		}

		out := cmd.OutOrStdout()
		for _, name := range result.Names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}
