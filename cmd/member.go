package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/vault"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var memberOutput string

func init() {
	memberListCmd.Flags().StringVarP(&memberOutput, "output", "o", "text", "output format: text, json or yaml")

	memberCmd.AddCommand(memberListCmd)
}

// resetMemberCommandState resets the member command's global state for testing.
func resetMemberCommandState() {
	memberOutput = "text"
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Inspect vault membership",
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the identities that can read the vault",
	Long: `Prints the fingerprint of every member. The json and yaml formats include
each member's public key, ready to be passed to 'groupenc induct' on another
vault.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting member list command")

		switch memberOutput {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("%w: unknown output format %q", kerrors.ErrInvalidArgument, memberOutput)
		}

		var result *workflows.ListMembersResult
		err := withKeygenSpinner(cmd, func() error {
			var err error
			result, err = workflows.ListMembers(context.Background(), workflows.ListMembersOptions{Env: newEnv()})
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch memberOutput {
		case "json":
			return outputMembersJSON(out, result.Members)
		case "yaml":
			return outputMembersYAML(out, result.Members)
		}

		for _, m := range result.Members {
			line := m.ID
			if m.ID == result.Self {
				line += " " + ui.Muted.Sprint("you")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func outputMembersJSON(w io.Writer, members []vault.Member) error {
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal members to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputMembersYAML(w io.Writer, members []vault.Member) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(members); err != nil {
		return fmt.Errorf("failed to marshal members to YAML: %w", err)
	}
	return enc.Close()
}
