package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print your public key",
	Long: `Prints your public key in PEM form. Hand it to an existing member so they
can run 'groupenc induct' for you.

With --verbose the fingerprint and membership status are also shown.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *workflows.ShowIDResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.ShowID(context.Background(), workflows.ShowIDOptions{Env: newEnv()})
			return err
		})
		if err != nil {
			return err
		}

		Logger.Infof("Fingerprint %s", result.ID)
		if !result.HasPrivateKey {
			Logger.Warnf("Only a public key is available; you cannot decrypt this vault")
		} else if !result.Member {
			Logger.Infof("Not a member of %s yet", ui.Path.Sprint(cfg.VaultFile))
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(result.PublicKey, "\n"))
		return nil
	},
}
