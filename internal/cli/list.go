package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/publish"
	"github.com/ksyq12/sitesettings/internal/template"
)

var listOut string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sites with published settings files",
	Long: `List every site below the output root that has at least one settings
file, and which of the three files are present.

Examples:
  sitesettings list
  sitesettings ls --out /data/code
  sitesettings list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOut, "out", "o", "", "Output root (overrides output_root)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(publishOverrides(listOut, false, false))
	if err != nil {
		return err
	}

	pub := deps.PublisherFactory.Create(cfg, cfg.OutputRoot, deps.Executor)
	entries, err := pub.List()
	if err != nil {
		return err
	}

	if jsonOutput {
		if entries == nil {
			entries = []publish.Entry{}
		}
		return output.JSON(entries)
	}

	if len(entries) == 0 {
		output.Info("No sites found under %s", cfg.OutputRoot)
		return nil
	}

	complete := len(template.Files())
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state := "complete"
		if len(e.Files) < complete {
			state = "partial"
		}
		rows = append(rows, []string{e.SID, state, strings.Join(e.Files, ", ")})
	}

	output.Table([]string{"SID", "STATE", "FILES"}, rows)
	return nil
}
