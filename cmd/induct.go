package cmd

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var inductCmd = &cobra.Command{
	Use:   "induct <identity>",
	Short: "Give another identity access to the vault",
	Long: `Wraps the vault's group key for a new member.

identity is a public key in PEM, OpenSSH or authorized_keys form, as printed
by 'groupenc id'. Use '@path' to read it from a file or '-' for stdin.
Inducting an existing member refreshes their wrapped key.

Examples:
  groupenc induct @bob.pub
  ssh-keygen -e -m PKCS8 -f ~/.ssh/id_rsa.pub | groupenc induct -`,
	Args: exactArgs(1, "<identity>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting induct command")

		material, err := utils.ValueOrContentsOf(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		var result *workflows.InductResult
		err = withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.Induct(context.Background(), workflows.InductOptions{
				Env:      newEnv(),
				Identity: material,
			})
			return err
		})
		if err != nil {
			return err
		}

		if result.AlreadyMember {
			Logger.Infof("%s was already a member; wrapped key refreshed", result.ID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Inducted: "+ui.Highlight.Sprint(ui.ShortID(result.ID)))
		return nil
	},
}
