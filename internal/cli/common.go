package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/config"
	"github.com/ksyq12/sitesettings/internal/input"
	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/site"
)

// loadConfig loads the config, applies the global flag overrides and any
// command specific ones, then validates the result
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if envFlag != "" {
		env, err := config.ParseEnvironment(envFlag)
		if err != nil {
			return nil, err
		}
		cfg.Environment = env.String()
	}
	if generationFlag != "" {
		cfg.Generation = generationFlag
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSite reads and validates a site record from path, or stdin for "-"
func loadSite(path string) (*site.Site, error) {
	data, err := input.ReadDocument(path, deps.Stdin)
	if err != nil {
		return nil, err
	}
	s, err := site.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// commandContext returns the context of cmd, which is nil when a run
// function is called directly from a test
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// confirm asks a yes/no question, defaulting to no
func confirm(format string, args ...interface{}) bool {
	fmt.Fprintf(outputWriter{}, format+" [y/N]: ", args...)
	return input.IsYes(input.ReadAnswer(deps.StdinReader))
}

// outputWriter adapts the output package to io.Writer for prompts
type outputWriter struct{}

func (outputWriter) Write(p []byte) (int, error) {
	output.Raw(string(p))
	return len(p), nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}
