package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ksyq12/sitesettings/internal/output"
	"github.com/ksyq12/sitesettings/internal/template"
)

const testSiteYAML = `id: 5a1b2c
sid: p1abc
path: mysite
pool: poolb-express
status: launched
profile: express
statistics: st1
db_password: dbsecret
`

// resetFlags restores every command flag variable to its default
func resetFlags() {
	jsonOutput = false
	verbose = false
	logFormat = "text"
	configPath = ""
	envFlag = ""
	generationFlag = ""

	renderOut = ""
	renderDryRun = false
	renderStdout = false
	renderFile = template.FileSettings
	renderLint = false
	renderNoLint = false
	renderMetricsFile = ""

	batchOut = ""
	batchJobs = runtime.NumCPU()
	batchFailFast = false
	batchLint = false
	batchNoLint = false
	batchMetricsFile = ""

	listOut = ""
	removeOut = ""
	forceRemove = false
	forceInit = false
}

// setupCLI installs d as the package dependencies, resets flags and
// captures output for the duration of the test
func setupCLI(t *testing.T, d *Dependencies) *bytes.Buffer {
	t.Helper()

	color.NoColor = true
	oldDeps := deps
	deps = d
	resetFlags()

	var buf bytes.Buffer
	restore := output.SetOutput(&buf)

	t.Cleanup(func() {
		restore()
		deps = oldDeps
		resetFlags()
	})
	return &buf
}

// writeSite writes a site record for sid into dir and returns its path
func writeSite(t *testing.T, dir, sid string) string {
	t.Helper()
	doc := strings.Replace(testSiteYAML, "sid: p1abc", "sid: "+sid, 1)
	path := filepath.Join(dir, sid+".yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write site: %v", err)
	}
	return path
}
