package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/sitectx"
)

var showCmd = &cobra.Command{
	Use:   "show <site-file|->",
	Short: "Show the render context of a site",
	Long: `Show every variable the settings templates are rendered against for a
site. Passwords and keys are masked.

Examples:
  sitesettings show p1abc.yaml
  sitesettings show p1abc.yaml --env prod --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := loadSite(args[0])
	if err != nil {
		return err
	}

	sctx, err := sitectx.Build(s, cfg)
	if err != nil {
		return serrors.WrapSite(serrors.ErrCodeConfig, s.SID, err)
	}
	vars := sctx.Redacted()

	if jsonOutput {
		return output.JSON(vars)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, formatValue(vars[k])})
	}

	output.Print("")
	output.Print("Site:        %s", s.SID)
	output.Print("Environment: %s", cfg.Environment)
	output.Print("Generation:  %s", cfg.Generation)
	output.Print("")
	output.Table([]string{"VARIABLE", "VALUE"}, rows)
	output.Print("")
	return nil
}

// formatValue renders a context value on one line
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+formatValue(val[k]))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(val)
	}
}
