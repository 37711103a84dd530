package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

func TestResult(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: "ok"},
		{name: "missing variable", err: serrors.MissingVariable("settings.php.j2", 3, "sid"), want: "missing_variable"},
		{name: "write failure", err: serrors.WriteFailure("/data", errors.New("denied")), want: "write_failure"},
		{name: "plain error", err: errors.New("boom"), want: "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Result(tc.err); got != tc.want {
				t.Errorf("Result() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestObserveRender(t *testing.T) {
	rec := New()
	rec.ObserveRender("osr", nil, 10*time.Millisecond)
	rec.ObserveRender("osr", nil, 20*time.Millisecond)
	rec.ObserveRender("osr", serrors.MissingVariable("t", 1, "sid"), time.Millisecond)
	rec.AddPublished(6)

	if got := testutil.ToFloat64(rec.renders.WithLabelValues("osr", "ok")); got != 2 {
		t.Errorf("ok renders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.renders.WithLabelValues("osr", "missing_variable")); got != 1 {
		t.Errorf("failed renders = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.published); got != 6 {
		t.Errorf("published = %v, want 6", got)
	}
	if got := testutil.CollectAndCount(rec.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	rec := New()
	rec.ObserveRender("wwwng", nil, time.Millisecond)

	path := filepath.Join(t.TempDir(), "sitesettings.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	for _, want := range []string{
		`sitesettings_renders_total{generation="wwwng",result="ok"} 1`,
		"sitesettings_render_duration_seconds_count{generation=\"wwwng\"} 1",
		"sitesettings_last_run_timestamp_seconds",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}

	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); !serrors.Is(err, serrors.ErrWriteFailure) {
		t.Errorf("expected write failure, got %v", err)
	}
}
