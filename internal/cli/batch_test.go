package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/publish"
)

func writeBadSite(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("sid: BAD\n"), 0644); err != nil {
		t.Fatalf("failed to write site: %v", err)
	}
	return path
}

func TestRunBatch(t *testing.T) {
	t.Run("all sites succeed", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
		dir := t.TempDir()
		args := []string{writeSite(t, dir, "p1aaa"), writeSite(t, dir, "p1bbb"), writeSite(t, dir, "p1ccc")}

		if err := runBatch(nil, args); err != nil {
			t.Fatalf("runBatch failed: %v", err)
		}

		got := mockPub.PublishedSIDs()
		if len(got) != 3 {
			t.Fatalf("expected 3 published sites, got %v", got)
		}
		if !strings.Contains(buf.String(), "3 rendered, 0 failed, 0 skipped") {
			t.Errorf("unexpected summary:\n%s", buf.String())
		}
	})

	t.Run("one failure does not stop the others", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
		jsonOutput = true
		dir := t.TempDir()
		args := []string{writeSite(t, dir, "p1aaa"), writeBadSite(t, dir), writeSite(t, dir, "p1ccc")}

		err := runBatch(nil, args)
		if err == nil {
			t.Fatal("expected error")
		}

		var report batchReport
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}
		if _, err := uuid.Parse(report.BatchID); err != nil {
			t.Errorf("batch id %q is not a uuid", report.BatchID)
		}
		if !strings.Contains(err.Error(), report.BatchID) {
			t.Errorf("error should name the batch, got %v", err)
		}
		if report.Total != 3 || report.Succeeded != 2 || report.Failed != 1 || report.Skipped != 0 {
			t.Errorf("unexpected counts %+v", report)
		}

		wantStatus := []string{statusOK, statusFailed, statusOK}
		for i, r := range report.Results {
			if r.Source != args[i] {
				t.Errorf("result %d source = %s, want %s", i, r.Source, args[i])
			}
			if r.Status != wantStatus[i] {
				t.Errorf("result %d status = %s, want %s", i, r.Status, wantStatus[i])
			}
		}
		if report.Results[1].Code != string(serrors.ErrCodeValidation) {
			t.Errorf("expected VALIDATION code, got %s", report.Results[1].Code)
		}
		if len(mockPub.PublishCalls) != 2 {
			t.Errorf("expected 2 Publish calls, got %d", len(mockPub.PublishCalls))
		}
	})

	t.Run("fail fast skips remaining sites", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
		jsonOutput = true
		batchJobs = 1
		batchFailFast = true
		dir := t.TempDir()
		args := []string{writeBadSite(t, dir), writeSite(t, dir, "p1bbb"), writeSite(t, dir, "p1ccc")}

		if err := runBatch(nil, args); err == nil {
			t.Fatal("expected error")
		}

		var report batchReport
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if report.Failed != 1 || report.Skipped != 2 {
			t.Errorf("expected 1 failed and 2 skipped, got %+v", report)
		}
		if len(mockPub.PublishCalls) != 0 {
			t.Errorf("skipped sites must not be published, got %d calls", len(mockPub.PublishCalls))
		}
	})

	t.Run("duplicate sids are rejected before publishing", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
		jsonOutput = true
		dir := t.TempDir()
		first := writeSite(t, dir, "p1aaa")
		data, err := os.ReadFile(first)
		if err != nil {
			t.Fatalf("failed to read site: %v", err)
		}
		second := filepath.Join(dir, "p1aaa-copy.yaml")
		if err := os.WriteFile(second, data, 0644); err != nil {
			t.Fatalf("failed to write site: %v", err)
		}
		args := []string{first, writeSite(t, dir, "p1bbb"), second}

		if err := runBatch(nil, args); err == nil {
			t.Fatal("expected error")
		}

		var report batchReport
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if report.Succeeded != 1 || report.Failed != 2 {
			t.Errorf("expected 1 rendered and 2 failed, got %+v", report)
		}
		for _, i := range []int{0, 2} {
			r := report.Results[i]
			if r.Status != statusFailed || r.SID != "p1aaa" || r.Code != string(serrors.ErrCodeValidation) {
				t.Errorf("result %d = %+v, want failed p1aaa with VALIDATION code", i, r)
			}
			if !strings.Contains(r.Error, "p1aaa") {
				t.Errorf("result %d error should name the sid, got %q", i, r.Error)
			}
		}
		if got := mockPub.PublishedSIDs(); len(got) != 1 || got[0] != "p1bbb" {
			t.Errorf("expected only p1bbb published, got %v", got)
		}
	})

	t.Run("jobs must be positive", func(t *testing.T) {
		setupCLI(t, NewMockDeps().Build())
		batchJobs = 0

		if err := runBatch(nil, []string{"a.yaml"}); !serrors.Is(err, serrors.ErrInvalidSite) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("metrics textfile", func(t *testing.T) {
		setupCLI(t, NewMockDeps().Build())
		batchMetricsFile = filepath.Join(t.TempDir(), "sitesettings.prom")
		dir := t.TempDir()

		_ = runBatch(nil, []string{writeSite(t, dir, "p1aaa"), writeBadSite(t, dir)})

		data, err := os.ReadFile(batchMetricsFile)
		if err != nil {
			t.Fatalf("metrics textfile not written: %v", err)
		}
		for _, want := range []string{
			`sitesettings_renders_total{generation="osr",result="ok"} 1`,
			`sitesettings_renders_total{generation="osr",result="validation"} 1`,
			"sitesettings_files_published_total 3",
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected %q in metrics:\n%s", want, data)
			}
		}
	})
}

func TestRunBatchJobsLimit(t *testing.T) {
	var inFlight, maxInFlight int32
	mockPub := publish.NewMockPublisher("/data/code")
	mockPub.PublishFunc = func(sid string, files []publish.File) ([]string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&maxInFlight)
			if n <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return []string{sid}, nil
	}
	setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
	batchJobs = 2

	dir := t.TempDir()
	var args []string
	for _, sid := range []string{"p1a", "p1b", "p1c", "p1d", "p1e", "p1f"} {
		args = append(args, writeSite(t, dir, sid))
	}

	if err := runBatch(nil, args); err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}
	if got := atomic.LoadInt32(&maxInFlight); got > 2 {
		t.Errorf("expected at most 2 sites in flight, got %d", got)
	}
	if len(mockPub.PublishCalls) != 6 {
		t.Errorf("expected 6 Publish calls, got %d", len(mockPub.PublishCalls))
	}
}
