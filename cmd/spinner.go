package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/guilt/groupenc/internal/identity"
	"github.com/guilt/groupenc/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// startSpinner creates and starts a spinner on stderr with the given message
// when not in verbose or debug mode and stderr is a terminal. The returned
// cleanup stops the spinner and prints FinalMSG to the command's error
// stream; stdout carries only command data such as keys and secret values.
//
// spinner.FinalMSG values do NOT need trailing newlines.
func startSpinner(cmd *cobra.Command, message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	active := !verbose && !debug && term.IsTerminal(int(os.Stderr.Fd()))
	if active {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		// The spinner always writes to os.Stderr; the final message goes
		// through cmd so it follows SetErr.
		finalMsg := strings.TrimRight(s.FinalMSG, "\n")
		s.FinalMSG = ""
		if active {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), finalMsg)
		}
	}

	return s, cleanup
}

// withKeygenSpinner runs fn behind a spinner when the invocation is about to
// generate a new identity, the only slow step of any command.
func withKeygenSpinner(cmd *cobra.Command, fn func() error) error {
	needed := identity.NeedsBootstrap(identity.LoadOptions{
		PrivateKeyFile: cfg.PrivateKeyFile,
		PublicKeyFile:  cfg.PublicKeyFile,
	})
	if !needed {
		return fn()
	}

	s, cleanup := startSpinner(cmd, fmt.Sprintf("Generating a %d-bit identity...", cfg.KeyBits))
	defer cleanup()

	err := fn()
	if err == nil {
		s.FinalMSG = ui.Success.Sprint("✓") + " Identity written to " + ui.Path.Sprint(cfg.PrivateKeyFile)
	}
	return err
}
