package cli

import (
	"io"
	"os"

	"github.com/ksyq12/sitesettings/internal/config"
	"github.com/ksyq12/sitesettings/internal/executor"
	"github.com/ksyq12/sitesettings/internal/input"
	"github.com/ksyq12/sitesettings/internal/publish"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PublisherFactory PublisherFactory
	Executor         executor.CommandExecutor
	StdinReader      input.Reader
	Stdin            io.Reader
}

// ConfigLoader handles configuration loading and saving. An empty path
// selects the default location.
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
}

// PublisherFactory creates the publisher for an output root
type PublisherFactory interface {
	Create(cfg *config.Config, root string, exec executor.CommandExecutor) publish.Publisher
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PublisherFactory: &realPublisherFactory{},
	Executor:         executor.NewSystemExecutor(),
	StdinReader:      input.NewStdinReader(),
	Stdin:            os.Stdin,
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func (r *realConfigLoader) Save(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

type realPublisherFactory struct{}

func (r *realPublisherFactory) Create(cfg *config.Config, root string, exec executor.CommandExecutor) publish.Publisher {
	if cfg.Lint {
		return publish.NewLocalWithLint(root, cfg.PHPBinary, exec)
	}
	return publish.NewLocal(root)
}
