package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/publish"
)

var (
	forceRemove bool
	removeOut   string
)

var removeCmd = &cobra.Command{
	Use:     "remove <sid>",
	Aliases: []string{"rm"},
	Short:   "Remove the settings files of a site",
	Long: `Remove settings.local_pre.php, settings.php and settings.local_post.php
of a site. The sites/default directory itself is kept.

Examples:
  sitesettings remove p1abc
  sitesettings rm p1abc --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().StringVarP(&removeOut, "out", "o", "", "Output root (overrides output_root)")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	sid := args[0]
	if err := publish.ValidateSID(sid); err != nil {
		return err
	}

	cfg, err := loadConfig(publishOverrides(removeOut, false, false))
	if err != nil {
		return err
	}
	pub := deps.PublisherFactory.Create(cfg, cfg.OutputRoot, deps.Executor)

	if !forceRemove && !confirm("Remove the settings files of %s from %s?", sid, pub.Dir(sid)) {
		output.Info("Removal cancelled")
		return nil
	}

	if err := pub.Remove(sid); err != nil {
		return fmt.Errorf("failed to remove settings of %s: %w", sid, err)
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"sid":     sid,
			"dir":     pub.Dir(sid),
			"removed": true,
		},
		"Settings of %s removed", sid,
	)
}
