package cmd

import (
	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets stored in the vault",
	Long: `Adds, removes, lists and shows secrets.

Secret names are hashed in the vault unless allow_listing is enabled, in which
case they are encrypted and 'secret list' can recover them.`,
}

func init() {
	secretCmd.AddCommand(secretAddCmd)
	secretCmd.AddCommand(secretRemoveCmd)
	secretCmd.AddCommand(secretListCmd)
	secretCmd.AddCommand(secretShowCmd)
}
