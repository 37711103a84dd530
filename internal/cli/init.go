package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/config"
	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration, with an inventory for the local
environment, to ~/.config/sitesettings/config.yaml or the --config path.

Examples:
  sitesettings init
  sitesettings init --config /etc/sitesettings.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return serrors.Validation("config file " + path + " already exists (use --force to overwrite)")
	}

	cfg := config.New()
	if err := deps.ConfigLoader.Save(cfg, path); err != nil {
		return serrors.WriteFailure(path, err)
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"path":    path,
		},
		"Config written to %s", path,
	)
}
