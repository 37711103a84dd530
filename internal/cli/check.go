package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/config"
	"github.com/ksyq12/sitesettings/internal/executor"
	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/platform"
	"github.com/ksyq12/sitesettings/internal/template"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"doctor"},
	Short:   "Check configuration, templates and tools",
	Long: `Run diagnostic checks before rendering.

Checks:
  - Configuration validity and the inventory of every environment
  - Every embedded template parses
  - PHP binary availability (when lint is enabled)
  - Output root is writable

Examples:
  sitesettings check
  sitesettings check --env prod --json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// Check statuses
const (
	checkSuccess = "success"
	checkWarning = "warning"
	checkError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// CheckReport contains all diagnostic results
type CheckReport struct {
	Configuration []CheckResult `json:"configuration"`
	Templates     []CheckResult `json:"templates"`
	System        []CheckResult `json:"system"`
}

// Errors counts the failed checks
func (r *CheckReport) Errors() int {
	n := 0
	for _, group := range [][]CheckResult{r.Configuration, r.Templates, r.System} {
		for _, c := range group {
			if c.Status == checkError {
				n++
			}
		}
	}
	return n
}

var phpVersionPattern = regexp.MustCompile(`PHP (\d+\.\d+\.\d+)`)

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if envFlag != "" {
		if env, err := config.ParseEnvironment(envFlag); err == nil {
			cfg.Environment = env.String()
		} else {
			cfg.Environment = envFlag
		}
	}
	if generationFlag != "" {
		cfg.Generation = generationFlag
	}

	report := &CheckReport{
		Configuration: checkConfiguration(cfg),
		Templates:     checkTemplates(),
		System: []CheckResult{
			checkPHP(commandContext(cmd), deps.Executor, cfg),
			checkOutputRoot(cfg.OutputRoot),
		},
	}

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayCheckResults(report)
	}

	if n := report.Errors(); n > 0 {
		return fmt.Errorf("%d check(s) failed", n)
	}
	return nil
}

func checkConfiguration(cfg *config.Config) []CheckResult {
	results := []CheckResult{checkConfigFile()}

	if err := cfg.Validate(); err != nil {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("Configuration invalid: %v", err),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("Configuration valid (%s, %s)", cfg.Environment, cfg.Generation),
		})
	}

	for _, name := range cfg.ListEnvironments() {
		inv := cfg.Environments[name]
		if err := inv.Validate(); err != nil {
			results = append(results, CheckResult{
				Status:  checkError,
				Message: fmt.Sprintf("Inventory %s invalid: %v", name, err),
			})
			continue
		}
		results = append(results, CheckResult{
			Status: checkSuccess,
			Message: fmt.Sprintf("Inventory %s: %s, database %s:%d, %d slave(s)",
				name, inv.BaseURL, inv.Database.Master, inv.Database.Port, len(inv.Database.Slaves)),
		})
	}

	return results
}

func checkConfigFile() CheckResult {
	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return CheckResult{Status: checkError, Message: "Could not determine config path"}
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return CheckResult{
			Status:  checkWarning,
			Message: fmt.Sprintf("Config file %s not found, using defaults", displayPath(path)),
		}
	}
	return CheckResult{
		Status:  checkSuccess,
		Message: fmt.Sprintf("Config file exists (%s)", displayPath(path)),
	}
}

func checkTemplates() []CheckResult {
	results := []CheckResult{}
	for _, g := range template.Generations() {
		for _, name := range template.Files() {
			if _, err := template.Load(g, name); err != nil {
				results = append(results, CheckResult{
					Status:  checkError,
					Message: fmt.Sprintf("%s/%s: %v", g, name, err),
				})
				continue
			}
			results = append(results, CheckResult{
				Status:  checkSuccess,
				Message: fmt.Sprintf("%s/%s parses", g, name),
			})
		}
	}
	return results
}

func checkPHP(ctx context.Context, exec executor.CommandExecutor, cfg *config.Config) CheckResult {
	status := checkWarning
	suffix := " (lint disabled)"
	if cfg.Lint {
		status = checkError
		suffix = ""
	}

	if cfg.PHPBinary == "" {
		return CheckResult{Status: status, Message: "No php_binary configured" + suffix}
	}
	path, err := exec.LookPath(cfg.PHPBinary)
	if err != nil {
		return CheckResult{Status: status, Message: fmt.Sprintf("PHP binary %s not found%s", cfg.PHPBinary, suffix)}
	}

	version := "unknown"
	if out, err := exec.Execute(ctx, path, "-v"); err == nil {
		if matches := phpVersionPattern.FindStringSubmatch(string(out)); len(matches) >= 2 {
			version = matches[1]
		}
	}
	return CheckResult{Status: checkSuccess, Message: fmt.Sprintf("PHP %s at %s (%s)", version, path, platform.Platform())}
}

func checkOutputRoot(root string) CheckResult {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return CheckResult{Status: checkWarning, Message: fmt.Sprintf("Output root %s does not exist", root)}
	}
	if err != nil {
		return CheckResult{Status: checkError, Message: fmt.Sprintf("Output root %s: %v", root, err)}
	}
	if !info.IsDir() {
		return CheckResult{Status: checkError, Message: fmt.Sprintf("Output root %s is not a directory", root)}
	}

	probe, err := os.CreateTemp(root, ".sitesettings-check-*")
	if err != nil {
		return CheckResult{Status: checkError, Message: fmt.Sprintf("Output root %s is not writable", root)}
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	return CheckResult{Status: checkSuccess, Message: fmt.Sprintf("Output root %s writable", root)}
}

func displayCheckResults(report *CheckReport) {
	sections := []struct {
		title  string
		checks []CheckResult
	}{
		{"Checking configuration...", report.Configuration},
		{"Checking templates...", report.Templates},
		{"Checking system...", report.System},
	}

	for _, s := range sections {
		output.Print("%s", s.title)
		for _, check := range s.checks {
			displayCheck(check)
		}
		output.Print("")
	}

	if n := report.Errors(); n > 0 {
		output.Error("%d problem(s) found", n)
		return
	}
	output.Success("All checks passed")
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case checkSuccess:
		output.Success("%s", check.Message)
	case checkWarning:
		output.Warn("%s", check.Message)
	case checkError:
		output.Error("%s", check.Message)
	}
}

// displayPath shortens paths below $HOME for display
func displayPath(path string) string {
	if home := os.Getenv("HOME"); home != "" && strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
