package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guilt/groupenc/internal/audit"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logActor     string
	logOperation string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logActor, "actor", "", "filter by user@host")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logActor = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the vault's audit log",
	Long: `Displays the audit log kept next to the vault file.

Shows who performed what operation and when. Reading the log needs no
identity and never creates the vault.

Examples:
  groupenc log                              # View full log
  groupenc log -n 10                        # Last 10 entries
  groupenc log --reverse                    # Most recent first
  groupenc log --actor alice@laptop         # Filter by actor
  groupenc log --operation induct,disown    # Filter by operation
  groupenc log --since 2024-01-01           # Filter by date
  groupenc log --json                       # JSON output`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		result, err := workflows.Log(context.Background(), workflows.LogOptions{
			Config:     cfg,
			Limit:      logLimit,
			Reverse:    logReverse,
			Actor:      logActor,
			Operations: logOperation,
			Since:      logSince,
			Until:      logUntil,
		})
		if err != nil {
			return err
		}

		Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
		Logger.Debugf("After filtering: %d entries", len(result.Entries))

		out := cmd.OutOrStdout()
		if logJSON {
			return outputLogJSON(out, result.Entries)
		}

		if len(result.Entries) == 0 {
			if result.TotalEntriesBeforeFilter == 0 {
				fmt.Fprintln(out, "No audit log entries found.")
			} else {
				fmt.Fprintln(out, "No audit log entries found matching the filters.")
			}
			return nil
		}

		for _, e := range result.Entries {
			fmt.Fprintf(out, "%-19s  %-25s  %-13s  %s\n",
				workflows.FormatDateTime(e.Timestamp), e.Actor, e.Operation, workflows.FormatDetails(e))
		}
		return nil
	},
}

func outputLogJSON(w io.Writer, entries []audit.Entry) error {
	if entries == nil {
		entries = []audit.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
