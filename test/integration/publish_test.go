//go:build integration

package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/sitesettings/internal/config"
	"github.com/ksyq12/sitesettings/internal/executor"
	"github.com/ksyq12/sitesettings/internal/publish"
	"github.com/ksyq12/sitesettings/internal/site"
	"github.com/ksyq12/sitesettings/internal/sitectx"
	"github.com/ksyq12/sitesettings/internal/template"
)

const siteRecord = `id: 5a1b2c
sid: p1int
path: integration
pool: poolb-express
status: launched
profile: express
statistics: st1
db_password: dbsecret
settings:
  siteimprove_site: 42
  cse_creator: creator
  cse_id: engine
`

// testConfig returns a prod config writing below a fresh temp directory
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Environment = "prod"
	cfg.OutputRoot = filepath.Join(t.TempDir(), "code")
	cfg.FilesRoot = "/data/files"
	cfg.SAMLPassword = "samlsecret"
	cfg.Environments["prod"] = &config.Inventory{
		BaseURL:           "https://www.example.edu",
		Database:          config.Database{Master: "db1", Port: 3307, Slaves: []string{"db2", "db3"}},
		MemcacheServers:   []string{"mem1:11211", "mem2:11211"},
		VarnishServers:    []string{"10.0.0.10"},
		VarnishControl:    "varn1:6082",
		VarnishControlKey: "vkey",
	}
	return cfg
}

// renderSite renders every settings file of the test site
func renderSite(t *testing.T, cfg *config.Config) []publish.File {
	t.Helper()
	s, err := site.Parse([]byte(siteRecord))
	if err != nil {
		t.Fatalf("Failed to parse site: %v", err)
	}
	sctx, err := sitectx.Build(s, cfg)
	if err != nil {
		t.Fatalf("Failed to build context: %v", err)
	}
	rendered, err := template.RenderAll(cfg.Generation, sctx.Vars())
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	files := make([]publish.File, 0, len(rendered))
	for _, r := range rendered {
		files = append(files, publish.File{Name: r.Name, Content: []byte(r.Content)})
	}
	return files
}

func TestPublishIntegration(t *testing.T) {
	for _, generation := range template.Generations() {
		t.Run(generation, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Generation = generation
			pub := publish.NewLocal(cfg.OutputRoot)

			paths, err := pub.Publish(context.Background(), "p1int", renderSite(t, cfg))
			if err != nil {
				t.Fatalf("Failed to publish: %v", err)
			}
			if len(paths) != 3 {
				t.Fatalf("Expected 3 files, got %d", len(paths))
			}

			post, err := os.ReadFile(filepath.Join(pub.Dir("p1int"), template.FileLocalPost))
			if err != nil {
				t.Fatalf("Failed to read settings.local_post.php: %v", err)
			}
			for _, host := range []string{"db1", "db2", "db3"} {
				if !strings.Contains(string(post), "'host' => '"+host+"',") {
					t.Errorf("Expected database host %s", host)
				}
			}

			pre, err := os.ReadFile(filepath.Join(pub.Dir("p1int"), template.FileLocalPre))
			if err != nil {
				t.Fatalf("Failed to read settings.local_pre.php: %v", err)
			}
			for _, want := range []string{
				`$conf["cu_path"] = "integration";`,
				`$conf["google_cse_cx"] = "creator:engine";`,
			} {
				if !strings.Contains(string(pre), want) {
					t.Errorf("Expected settings.local_pre.php to contain %q", want)
				}
			}

			entries, err := pub.List()
			if err != nil {
				t.Fatalf("Failed to list: %v", err)
			}
			if len(entries) != 1 || entries[0].SID != "p1int" || len(entries[0].Files) != 3 {
				t.Errorf("Unexpected entries %+v", entries)
			}

			if err := pub.Remove("p1int"); err != nil {
				t.Fatalf("Failed to remove: %v", err)
			}
			if exists, _ := pub.Exists("p1int"); exists {
				t.Error("settings.php should be gone after Remove")
			}
		})
	}
}

func TestPHPLint(t *testing.T) {
	if !isPHPAvailable() {
		t.Skip("PHP is not available")
	}

	for _, generation := range template.Generations() {
		t.Run(generation, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Generation = generation
			pub := publish.NewLocalWithLint(cfg.OutputRoot, "php", executor.NewSystemExecutor())

			if _, err := pub.Publish(context.Background(), "p1int", renderSite(t, cfg)); err != nil {
				t.Fatalf("Rendered settings should pass php -l: %v", err)
			}
		})
	}

	t.Run("Syntax error is rejected", func(t *testing.T) {
		cfg := testConfig(t)
		pub := publish.NewLocalWithLint(cfg.OutputRoot, "php", executor.NewSystemExecutor())

		files := renderSite(t, cfg)
		files[1].Content = []byte("<?php\n$broken = ;\n")

		if _, err := pub.Publish(context.Background(), "p1int", files); err == nil {
			t.Fatal("Expected lint failure")
		}
		if exists, _ := pub.Exists("p1int"); exists {
			t.Error("Nothing should be published when lint fails")
		}
	})
}

func isPHPAvailable() bool {
	_, err := exec.LookPath("php")
	return err == nil
}
