package cli

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ksyq12/sitesettings/internal/config"
	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/logger"
	"github.com/ksyq12/sitesettings/internal/metrics"
	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/publish"
	"github.com/ksyq12/sitesettings/internal/site"
)

var (
	batchOut         string
	batchJobs        int
	batchFailFast    bool
	batchLint        bool
	batchNoLint      bool
	batchMetricsFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch <site-file>...",
	Short: "Render the settings files of many sites",
	Long: `Render every given site record concurrently. Each site is published
independently: a failure leaves that site's files untouched and does not
affect the others. The command exits non-zero if any site failed.

Examples:
  sitesettings batch sites/*.yaml
  sitesettings batch sites/*.yaml --jobs 8 --env prod
  sitesettings batch sites/*.yaml --fail-fast --metrics-textfile /var/lib/node_exporter/sitesettings.prom`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Output root (overrides output_root)")
	batchCmd.Flags().IntVarP(&batchJobs, "jobs", "j", runtime.NumCPU(), "Number of sites rendered in parallel")
	batchCmd.Flags().BoolVar(&batchFailFast, "fail-fast", false, "Skip remaining sites after the first failure")
	batchCmd.Flags().BoolVar(&batchLint, "lint", false, "Check every file with php -l before publishing")
	batchCmd.Flags().BoolVar(&batchNoLint, "no-lint", false, "Skip php -l even if enabled in the config")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	rootCmd.AddCommand(batchCmd)
}

// batchReport is the JSON result of a batch run
type batchReport struct {
	BatchID     string       `json:"batch_id"`
	Generation  string       `json:"generation"`
	Environment string       `json:"environment"`
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Results     []siteResult `json:"results"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchJobs < 1 {
		return serrors.Validation("--jobs must be at least 1")
	}

	cfg, err := loadConfig(publishOverrides(batchOut, batchLint, batchNoLint))
	if err != nil {
		return err
	}

	report := batchReport{
		BatchID:     uuid.NewString(),
		Generation:  cfg.Generation,
		Environment: cfg.Environment,
		Total:       len(args),
	}
	logger.InfoFields("starting batch", logger.Fields{
		"batch_id": report.BatchID,
		"sites":    len(args),
		"jobs":     batchJobs,
	})

	rec := metrics.New()
	defer writeMetrics(rec, batchMetricsFile)

	pub := deps.PublisherFactory.Create(cfg, cfg.OutputRoot, deps.Executor)
	report.Results = renderBatch(commandContext(cmd), cfg, pub, rec, args)

	for _, r := range report.Results {
		switch r.Status {
		case statusOK:
			report.Succeeded++
		case statusFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayBatchReport(report)
	}

	if report.Failed > 0 || report.Skipped > 0 {
		return fmt.Errorf("batch %s: %d of %d sites failed, %d skipped", report.BatchID, report.Failed, report.Total, report.Skipped)
	}
	return nil
}

// renderBatch loads every source, rejects sids claimed by more than one
// record, then publishes the rest with at most batchJobs in flight.
// Results keep the order of sources.
func renderBatch(ctx context.Context, cfg *config.Config, pub publish.Publisher, rec *metrics.Recorder, sources []string) []siteResult {
	results := make([]siteResult, len(sources))
	sites := loadBatch(cfg, rec, sources, results)

	if batchFailFast && slices.ContainsFunc(results, func(r siteResult) bool { return r.Status == statusFailed }) {
		for i, s := range sites {
			if s != nil {
				results[i] = siteResult{Source: sources[i], SID: s.SID, Status: statusSkipped}
			}
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchJobs)

	for i, s := range sites {
		if s == nil {
			continue
		}
		g.Go(func() error {
			results[i] = renderSource(gctx, cfg, pub, rec, sources[i], s)
			if results[i].Status == statusFailed && batchFailFast {
				return fmt.Errorf("%s failed", sources[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// loadBatch parses every source in order. Sources that fail to load, and
// every source sharing a sid with another, get a failed result and a nil
// site.
func loadBatch(cfg *config.Config, rec *metrics.Recorder, sources []string, results []siteResult) []*site.Site {
	sites := make([]*site.Site, len(sources))
	bySID := make(map[string][]int, len(sources))

	for i, source := range sources {
		start := time.Now()
		s, err := loadSite(source)
		if err != nil {
			rec.ObserveRender(cfg.Generation, err, time.Since(start))
			logger.LogError(err, "invalid site record")
			results[i] = failedResult(siteResult{Source: source}, err, start)
			continue
		}
		sites[i] = s
		bySID[s.SID] = append(bySID[s.SID], i)
	}

	for sid, idx := range bySID {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			err := serrors.Validation(fmt.Sprintf("sid %s is claimed by %d site records in this batch", sid, len(idx)))
			rec.ObserveRender(cfg.Generation, err, 0)
			logger.ErrorFields("duplicate sid in batch", logger.Fields{"sid": sid, "source": sources[i]})
			results[i] = failedResult(siteResult{Source: sources[i], SID: sid}, err, time.Now())
			sites[i] = nil
		}
	}
	return sites
}

// renderSource renders and publishes one loaded site record
func renderSource(ctx context.Context, cfg *config.Config, pub publish.Publisher, rec *metrics.Recorder, source string, s *site.Site) siteResult {
	result := siteResult{Source: source, SID: s.SID}
	if ctx.Err() != nil {
		result.Status = statusSkipped
		return result
	}

	start := time.Now()
	paths, err := publishSite(ctx, cfg, pub, rec, s)
	if err != nil {
		return failedResult(result, err, start)
	}

	result.Status = statusOK
	result.Dir = pub.Dir(s.SID)
	result.Files = paths
	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

func failedResult(result siteResult, err error, start time.Time) siteResult {
	result.Status = statusFailed
	result.Code = string(serrors.CodeOf(err))
	result.Error = err.Error()
	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

func displayBatchReport(report batchReport) {
	headers := []string{"SOURCE", "SID", "STATUS", "FILES", "DETAIL"}
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			r.Source,
			r.SID,
			r.Status,
			strconv.Itoa(len(r.Files)),
			r.Error,
		})
	}
	output.Table(headers, rows)
	output.Print("")

	summary := fmt.Sprintf("Batch %s: %d rendered, %d failed, %d skipped (%s, %s)",
		report.BatchID, report.Succeeded, report.Failed, report.Skipped, report.Generation, report.Environment)
	if report.Failed > 0 || report.Skipped > 0 {
		output.Error("%s", summary)
		return
	}
	output.Success("%s", summary)
}
