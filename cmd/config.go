package cmd

import (
	"fmt"

	"github.com/guilt/groupenc/internal/configs"
	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/ui"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/spf13/cobra"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// resetConfigCommandState resets the config command's global state for testing.
func resetConfigCommandState() {
	configInitForce = false
}

// resolvedConfigPath returns the --config path, or the default location.
func resolvedConfigPath() (string, error) {
	if configFile == "" {
		return configs.DefaultConfigPath()
	}
	path, err := utils.ExpandHome(configFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return path, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and write the groupenc config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Long: `Writes the configuration in effect, after environment variables and
flags are applied, to the config file. Later runs pick it up without the
same environment.

An existing file is kept unless --force is given.

Examples:
  GROUPENC_ALLOW_LISTING=true groupenc config init
  groupenc --config ./team.toml --vault-file team.json config init`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		if utils.FileExists(path) && !configInitForce {
			return fmt.Errorf("%w: %s already exists; pass %s to overwrite it",
				kerrors.ErrConfirmationRequired, path, ui.Flag.Sprint("--force"))
		}

		if err := configs.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Config written to "+ui.Path.Sprint(path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, err := resolvedConfigPath(); err == nil {
			Logger.Infof("Config file: %s", path)
		}
		if err := configs.EncodeTOML(cmd.OutOrStdout(), cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	},
}
