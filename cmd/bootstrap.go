package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create your identity and the vault if they do not exist",
	Long: `Makes sure you have a keypair and that the vault file exists.

Missing keys are generated and written to the private and public key files.
A missing vault is created with you as its only member. Running bootstrap
again changes nothing.

Every other command bootstraps on demand, so this is only needed to prepare
a vault ahead of time.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting bootstrap command")

		var result *workflows.BootstrapResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.Bootstrap(context.Background(), workflows.BootstrapOptions{Env: newEnv()})
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.CreatedVault {
			fmt.Fprintln(out, ui.Success.Sprint("✓")+" Created "+ui.Path.Sprint(result.VaultFile))
		}
		fmt.Fprintln(out, ui.Info.Sprint("→")+" Identity "+ui.Highlight.Sprint(ui.ShortID(result.ID)))
		fmt.Fprintln(out, ui.Success.Sprint("Vault Ready."))
		return nil
	},
}
