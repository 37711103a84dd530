package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ksyq12/sitesettings/internal/publish"
)

func TestRunList(t *testing.T) {
	entries := []publish.Entry{
		{SID: "p1aaa", Dir: "/data/code/p1aaa/p1aaa/sites/default", Files: []string{"settings.local_pre.php", "settings.php", "settings.local_post.php"}},
		{SID: "p1bbb", Dir: "/data/code/p1bbb/p1bbb/sites/default", Files: []string{"settings.php"}},
	}

	t.Run("table", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		mockPub.ListFunc = func() ([]publish.Entry, error) { return entries, nil }
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())

		if err := runList(nil, []string{}); err != nil {
			t.Fatalf("runList failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got:\n%s", buf.String())
		}
		if !strings.Contains(lines[1], "p1aaa") || !strings.Contains(lines[1], "complete") {
			t.Errorf("unexpected row %q", lines[1])
		}
		if !strings.Contains(lines[2], "p1bbb") || !strings.Contains(lines[2], "partial") {
			t.Errorf("unexpected row %q", lines[2])
		}
	})

	t.Run("json", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		mockPub.ListFunc = func() ([]publish.Entry, error) { return entries, nil }
		buf := setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())
		jsonOutput = true

		if err := runList(nil, []string{}); err != nil {
			t.Fatalf("runList failed: %v", err)
		}

		var got []publish.Entry
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 || got[1].SID != "p1bbb" {
			t.Errorf("unexpected entries %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		buf := setupCLI(t, NewMockDeps().Build())

		if err := runList(nil, []string{}); err != nil {
			t.Fatalf("runList failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No sites found under /data/code") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("empty json", func(t *testing.T) {
		buf := setupCLI(t, NewMockDeps().Build())
		jsonOutput = true

		if err := runList(nil, []string{}); err != nil {
			t.Fatalf("runList failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty array, got %q", buf.String())
		}
	})

	t.Run("out override", func(t *testing.T) {
		factory := &MockPublisherFactory{}
		setupCLI(t, NewMockDeps().WithPublisherFactory(factory).Build())
		listOut = "/srv/code"

		if err := runList(nil, []string{}); err != nil {
			t.Fatalf("runList failed: %v", err)
		}
		if len(factory.Roots) != 1 || factory.Roots[0] != "/srv/code" {
			t.Errorf("unexpected roots %v", factory.Roots)
		}
	})

	t.Run("publisher error", func(t *testing.T) {
		mockPub := publish.NewMockPublisher("/data/code")
		mockPub.ListFunc = func() ([]publish.Entry, error) { return nil, errors.New("permission denied") }
		setupCLI(t, NewMockDeps().WithPublisher(mockPub).Build())

		if err := runList(nil, []string{}); err == nil {
			t.Error("expected error")
		}
	})
}
