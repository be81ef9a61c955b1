package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Long: `Write the resolved settings (defaults, environment and flags) to the config
file named by --config, $ELIZA_CONFIG or ~/.eliza/config.yaml.`,
		Args: cobra.NoArgs,
		Run:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(initCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := initConfig(path, cfg, force); err != nil {
		exitErr("config init", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q}`+"\n", path)
}

// initConfig saves c to path. An existing file is kept unless force is set.
func initConfig(path string, c *config.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return c.Save(path)
}
