package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitesettings/internal/config"
	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/logger"
	"github.com/ksyq12/sitesettings/internal/metrics"
	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/publish"
	"github.com/ksyq12/sitesettings/internal/site"
	"github.com/ksyq12/sitesettings/internal/sitectx"
	"github.com/ksyq12/sitesettings/internal/template"
)

var (
	renderOut         string
	renderDryRun      bool
	renderStdout      bool
	renderFile        string
	renderLint        bool
	renderNoLint      bool
	renderMetricsFile string
)

var renderCmd = &cobra.Command{
	Use:   "render <site-file|->",
	Short: "Render the settings files of one site",
	Long: `Render settings.local_pre.php, settings.php and settings.local_post.php
for the site described by a YAML or JSON site record ("-" reads stdin).

Examples:
  sitesettings render p1abc.yaml
  sitesettings render p1abc.yaml --env prod --out /data/code
  sitesettings render p1abc.yaml --dry-run
  sitesettings render - --stdout --file settings.local_post.php < p1abc.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output root (overrides output_root)")
	renderCmd.Flags().BoolVar(&renderDryRun, "dry-run", false, "Print the rendered files without writing them")
	renderCmd.Flags().BoolVar(&renderStdout, "stdout", false, "Print one rendered file to stdout without writing")
	renderCmd.Flags().StringVar(&renderFile, "file", template.FileSettings, "File printed by --stdout")
	renderCmd.Flags().BoolVar(&renderLint, "lint", false, "Check every file with php -l before publishing")
	renderCmd.Flags().BoolVar(&renderNoLint, "no-lint", false, "Skip php -l even if enabled in the config")
	renderCmd.Flags().StringVar(&renderMetricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	rootCmd.AddCommand(renderCmd)
}

// siteResult is the outcome of rendering one site
type siteResult struct {
	Source     string   `json:"source"`
	SID        string   `json:"sid,omitempty"`
	Status     string   `json:"status"`
	Code       string   `json:"code,omitempty"`
	Error      string   `json:"error,omitempty"`
	Dir        string   `json:"dir,omitempty"`
	Files      []string `json:"files,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Site result statuses
const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

// previewFile is a rendered file shown by --dry-run
type previewFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// publishOverrides applies the flags shared by render and batch
func publishOverrides(out string, lint, noLint bool) func(*config.Config) {
	return func(cfg *config.Config) {
		if out != "" {
			cfg.OutputRoot = filepath.Clean(out)
		}
		if lint {
			cfg.Lint = true
		}
		if noLint {
			cfg.Lint = false
		}
	}
}

// renderFiles builds the context of s and renders every settings file
func renderFiles(cfg *config.Config, s *site.Site) ([]template.Rendered, error) {
	sctx, err := sitectx.Build(s, cfg)
	if err != nil {
		return nil, serrors.WrapSite(serrors.ErrCodeConfig, s.SID, err)
	}
	files, err := template.RenderAll(cfg.Generation, sctx.Vars())
	if err != nil {
		return nil, serrors.WrapSite(serrors.ErrCodeInternal, s.SID, err)
	}
	return files, nil
}

// publishSite renders s and hands the result to pub. The outcome is
// recorded in rec.
func publishSite(ctx context.Context, cfg *config.Config, pub publish.Publisher, rec *metrics.Recorder, s *site.Site) ([]string, error) {
	start := time.Now()

	paths, err := func() ([]string, error) {
		rendered, err := renderFiles(cfg, s)
		if err != nil {
			return nil, err
		}
		files := make([]publish.File, 0, len(rendered))
		for _, r := range rendered {
			files = append(files, publish.File{Name: r.Name, Content: []byte(r.Content)})
		}
		paths, err := pub.Publish(ctx, s.SID, files)
		if err != nil {
			return nil, serrors.WrapSite(serrors.ErrCodeWriteFailure, s.SID, err)
		}
		return paths, nil
	}()

	rec.ObserveRender(cfg.Generation, err, time.Since(start))
	if err != nil {
		logger.LogError(err, "render failed")
		return nil, err
	}
	rec.AddPublished(len(paths))
	logger.InfoFields("rendered site", logger.Fields{
		"sid":         s.SID,
		"generation":  cfg.Generation,
		"environment": cfg.Environment,
		"files":       len(paths),
	})
	return paths, nil
}

// writeMetrics writes rec to path when path is set
func writeMetrics(rec *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		logger.LogError(err, "failed to write metrics textfile")
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderStdout && renderDryRun {
		return serrors.Validation("--stdout and --dry-run cannot be combined")
	}

	cfg, err := loadConfig(publishOverrides(renderOut, renderLint, renderNoLint))
	if err != nil {
		return err
	}
	s, err := loadSite(args[0])
	if err != nil {
		return err
	}

	if renderStdout || renderDryRun {
		return previewSite(cfg, s)
	}

	rec := metrics.New()
	defer writeMetrics(rec, renderMetricsFile)

	pub := deps.PublisherFactory.Create(cfg, cfg.OutputRoot, deps.Executor)
	start := time.Now()
	paths, err := publishSite(commandContext(cmd), cfg, pub, rec, s)
	if err != nil {
		return err
	}

	result := siteResult{
		Source:     args[0],
		SID:        s.SID,
		Status:     statusOK,
		Dir:        pub.Dir(s.SID),
		Files:      paths,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if jsonOutput {
		return output.JSON(result)
	}

	output.Success("Rendered %s (%s, %s)", s.SID, cfg.Generation, cfg.Environment)
	for _, p := range paths {
		output.Print("  %s", p)
	}
	return nil
}

// previewSite prints rendered files instead of publishing them
func previewSite(cfg *config.Config, s *site.Site) error {
	rendered, err := renderFiles(cfg, s)
	if err != nil {
		return err
	}

	if renderStdout {
		for _, r := range rendered {
			if r.Name == renderFile {
				output.Raw(r.Content)
				return nil
			}
		}
		return serrors.NotFound("settings file", renderFile)
	}

	dir := deps.PublisherFactory.Create(cfg, cfg.OutputRoot, deps.Executor).Dir(s.SID)
	previews := make([]previewFile, 0, len(rendered))
	for _, r := range rendered {
		previews = append(previews, previewFile{
			Name:    r.Name,
			Path:    filepath.Join(dir, r.Name),
			Content: r.Content,
		})
	}

	if jsonOutput {
		return output.JSON(previews)
	}
	output.Info("Dry run: nothing is written")
	for _, p := range previews {
		output.File(p.Path, p.Content)
	}
	return nil
}
