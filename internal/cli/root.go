package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/logger"
)

var (
	jsonOutput     bool
	verbose        bool
	logFormat      string
	configPath     string
	envFlag        string
	generationFlag string
	version        = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitesettings",
	Short: "Render Drupal settings files for hosted sites",
	Long: `sitesettings renders the settings.local_pre.php, settings.php and
settings.local_post.php files of a hosted Drupal site from its site record
and the server inventory of the target environment.

Files are written to <output_root>/<sid>/<sid>/sites/default. All three are
replaced together or not at all.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(verbose)
		format, err := logger.ParseFormat(logFormat)
		if err != nil {
			return err
		}
		logger.SetFormat(format)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight
// renders.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.LogError(err, "command failed")
		stop()
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log line format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/sitesettings/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "", "Target environment (local, dev, test, prod)")
	rootCmd.PersistentFlags().StringVarP(&generationFlag, "generation", "g", "", "Template generation (osr, wwwng)")
}
