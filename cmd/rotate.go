package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var rotateForce bool

func init() {
	rotateCmd.Flags().BoolVar(&rotateForce, "force", false, "skip confirmation prompt")
}

// resetRotateCommandState resets the rotate command's global state for testing.
func resetRotateCommandState() {
	rotateForce = false
}

// confirmRotate prompts the user to confirm the group key rotation.
func confirmRotate(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s This will replace the group key and re-encrypt every secret.\n", ui.Warning.Sprint("Warning:"))
	fmt.Fprintln(out, "  Every member must pull the updated vault file afterwards.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Do you want to continue? [y/N]: ")

	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Replace the vault's group key",
	Long: `Generates a new group key, re-encrypts every secret under it and wraps it
for every current member.

Run this after disowning someone: they keep the old group key, so only
secrets written after the rotation are out of their reach. Nothing is written
unless every secret re-encrypts cleanly.

Examples:
  # Rotate the group key (with confirmation prompt)
  groupenc rotate

  # Rotate without confirmation prompt
  groupenc rotate --force`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")

		if !rotateForce && !confirmRotate(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warning.Sprint("⚠")+" Group key rotation cancelled.")
			return nil
		}

		_, cleanup := startSpinner(cmd, "Rotating group key...")
		result, err := workflows.Rotate(context.Background(), workflows.RotateOptions{Env: newEnv()})
		cleanup()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Rotated. "+
			ui.Muted.Sprintf("%d secrets, %d members", result.SecretsReEncrypted, result.MembersRewrapped))

		Logger.Infof("Re-encrypted %d secret(s) for %d member(s)", result.SecretsReEncrypted, result.MembersRewrapped)
		return nil
	},
}
