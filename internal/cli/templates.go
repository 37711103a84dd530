package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [file]",
	Short: "List the embedded templates or print one",
	Long: `Without arguments, list every template generation and its files.
With a file name, print the raw template source of the selected generation.

Examples:
  sitesettings templates
  sitesettings templates settings.php
  sitesettings templates settings.local_post.php --generation wwwng`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

type templateItem struct {
	Generation string `json:"generation"`
	File       string `json:"file"`
	Default    bool   `json:"default"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	generation := generationFlag
	if generation == "" {
		cfg, err := deps.ConfigLoader.Load(configPath)
		if err != nil {
			return err
		}
		generation = cfg.Generation
	}

	if len(args) == 1 {
		name := strings.TrimSuffix(args[0], ".j2")
		source, err := template.Source(generation, name)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]string{
				"generation": generation,
				"file":       name,
				"source":     source,
			})
		}
		output.Raw(source)
		return nil
	}

	items := make([]templateItem, 0)
	for _, g := range template.Generations() {
		for _, f := range template.Files() {
			items = append(items, templateItem{Generation: g, File: f, Default: g == generation})
		}
	}

	if jsonOutput {
		return output.JSON(items)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		selected := ""
		if item.Default {
			selected = "*"
		}
		rows = append(rows, []string{item.Generation, item.File, selected})
	}
	output.Table([]string{"GENERATION", "FILE", "SELECTED"}, rows)
	return nil
}
