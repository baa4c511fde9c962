package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	disownIdentity string
	disownConfirm  bool
)

func init() {
	disownCmd.Flags().StringVar(&disownIdentity, "identity", "", "public key of the member to remove (default: yourself)")
	disownCmd.Flags().BoolVar(&disownConfirm, "confirm", false, "confirm removing yourself")
}

// resetDisownCommandState resets the disown command's global state for testing.
func resetDisownCommandState() {
	disownIdentity = ""
	disownConfirm = false
}

var disownCmd = &cobra.Command{
	Use:   "disown",
	Short: "Remove a member from the vault",
	Long: `Removes a member's public key and wrapped group key.

Without --identity you remove yourself, which requires --confirm. A disowned
member keeps whatever they already read; run 'groupenc rotate' afterwards so
secrets written from then on are out of their reach.

Examples:
  groupenc disown --identity @bob.pub
  groupenc disown --confirm`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting disown command")

		var material []byte
		if disownIdentity != "" {
			var err error
			material, err = utils.ValueOrContentsOf(disownIdentity, cmd.InOrStdin())
			if err != nil {
				return err
			}
		}

		var result *workflows.DisownResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.Disown(context.Background(), workflows.DisownOptions{
				Env:      newEnv(),
				Identity: material,
				Confirm:  disownConfirm,
			})
			return err
		})
		if errors.Is(err, kerrors.ErrConfirmationRequired) {
			return fmt.Errorf("%w: pass %s to remove yourself from %s",
				err, ui.Flag.Sprint("--confirm"), cfg.VaultFile)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !result.Removed {
			Logger.Warnf("%s is not a member", ui.ShortID(result.ID))
			return nil
		}
		fmt.Fprintln(out, ui.Success.Sprint("✓")+" Disowned: "+ui.Highlight.Sprint(ui.ShortID(result.ID)))
		if result.RemainingMembers == 0 {
			Logger.Warnf("The vault has no members left; its secrets can no longer be read")
		} else if !result.Self {
			fmt.Fprintln(out, ui.Info.Sprint("→")+" Run "+ui.Code.Sprint("groupenc rotate")+" to lock them out of new secrets")
		}
		return nil
	},
}
