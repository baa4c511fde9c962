package cmd

import (
	"fmt"

	"github.com/guilt/groupenc/internal/configs"
	kerrors "github.com/guilt/groupenc/internal/errors"
	logger "github.com/guilt/groupenc/internal/logging"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/guilt/groupenc/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose        bool
	debug          bool
	configFile     string
	vaultFile      string
	privateKeyFile string
	publicKeyFile  string

	Logger logger.Logger

	// cfg is loaded once per invocation in PersistentPreRunE.
	cfg *configs.Config

	RootCmd = &cobra.Command{
		Use:   "groupenc",
		Short: "groupenc - share secrets with a group of RSA identities",
		Long: `groupenc keeps named secrets in a single JSON vault file that any number
of people can read. Each member holds an RSA keypair; the vault stores one
symmetric group key wrapped for every member.

Usage:
  groupenc <command> [flags]

Run 'groupenc help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
				Err:     cmd.ErrOrStderr(),
			}
			Logger.Debugf("Initializing groupenc with verbose=%t, debug=%t", verbose, debug)

			loaded, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			cfg = loaded
			Logger.Debugf("Vault file: %s", cfg.VaultFile)
			Logger.Debugf("Key files: %s, %s", cfg.PrivateKeyFile, cfg.PublicKeyFile)
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $GROUPENC_CONFIG or <user config dir>/groupenc/config.toml)")
	RootCmd.PersistentFlags().StringVar(&vaultFile, "vault-file", "", "vault file (default "+configs.DefaultVaultFile+")")
	RootCmd.PersistentFlags().StringVar(&privateKeyFile, "private-key-file", "", "private key file (default "+configs.DefaultPrivateKeyFile+")")
	RootCmd.PersistentFlags().StringVar(&publicKeyFile, "public-key-file", "", "public key file (default "+configs.DefaultPublicKeyFile+")")

	RootCmd.AddCommand(bootstrapCmd)
	RootCmd.AddCommand(idCmd)
	RootCmd.AddCommand(secretCmd)
	RootCmd.AddCommand(memberCmd)
	RootCmd.AddCommand(inductCmd)
	RootCmd.AddCommand(disownCmd)
	RootCmd.AddCommand(rotateCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(configCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		Logger.Errorf("%v", err)
		return kerrors.ExitCode(err)
	}
	return 0
}

// loadConfig layers the command-line flags over the file and environment
// configuration.
func loadConfig(flags *pflag.FlagSet) (*configs.Config, error) {
	path, err := resolvedConfigPath()
	if err != nil {
		return nil, err
	}

	c, err := configs.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"vault-file", &c.VaultFile},
		{"private-key-file", &c.PrivateKeyFile},
		{"public-key-file", &c.PublicKeyFile},
	}
	for _, o := range overrides {
		f := flags.Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		if v := f.Value.String(); v != "" {
			*o.dst = v
		}
	}

	if err := c.ExpandPaths(); err != nil {
		return nil, err
	}
	return c, nil
}

// newEnv returns the workflow environment for the current invocation.
func newEnv() workflows.Env {
	return workflows.Env{
		Config:     cfg,
		Passphrase: promptPassphrase,
		Logger:     Logger,
	}
}

func promptPassphrase() ([]byte, error) {
	passphrase, err := utils.ReadPassphrase("Enter passphrase for private key: ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrPassphraseRequired, err)
	}
	return passphrase, nil
}

// exactArgs is cobra.ExactArgs with a precondition error.
func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: %s requires %v", kerrors.ErrMissingArgument, cmd.CommandPath(), names[len(args):])
		}
		if len(args) > n {
			return fmt.Errorf("%w: %s accepts %d argument(s), received %d", kerrors.ErrInvalidArgument, cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configFile = ""
	vaultFile = ""
	privateKeyFile = ""
	publicKeyFile = ""
	cfg = nil
	Logger = logger.Logger{}
	resetMemberCommandState()
	resetDisownCommandState()
	resetRotateCommandState()
	resetLogCommandState()
	resetConfigCommandState()
}
