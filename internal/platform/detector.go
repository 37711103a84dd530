// Package platform provides platform-specific detection of the tools used to
// check rendered settings files.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// fallbackPHP is resolved through PATH when no known location exists
const fallbackPHP = "php"

// PHPPaths returns the usual php binary locations for goos, most specific
// first.
func PHPPaths(goos string) []string {
	switch goos {
	case "darwin":
		// Apple Silicon Homebrew, then Intel Homebrew
		return []string{"/opt/homebrew/bin/php", "/usr/local/bin/php"}
	case "linux":
		return []string{"/usr/bin/php", "/usr/local/bin/php"}
	default:
		return nil
	}
}

// DetectPHP returns the php binary for the current platform. It falls back to
// "php" when none of the known locations exist.
func DetectPHP() string {
	return detectPHP(runtime.GOOS, pathExists)
}

func detectPHP(goos string, exists func(string) bool) string {
	for _, p := range PHPPaths(goos) {
		if exists(p) {
			return p
		}
	}
	return fallbackPHP
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
