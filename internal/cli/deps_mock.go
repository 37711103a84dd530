package cli

import (
	"io"
	"strings"

	"github.com/ksyq12/sitesettings/internal/config"
	"github.com/ksyq12/sitesettings/internal/executor"
	"github.com/ksyq12/sitesettings/internal/input"
	"github.com/ksyq12/sitesettings/internal/publish"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	LoadPaths []string
	SavePaths []string
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config, path string) error {
	m.SavePaths = append(m.SavePaths, path)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockPublisherFactory is a test double for PublisherFactory. It records
// the root each publisher was created for.
type MockPublisherFactory struct {
	Publisher publish.Publisher
	Roots     []string
}

func (m *MockPublisherFactory) Create(cfg *config.Config, root string, exec executor.CommandExecutor) publish.Publisher {
	m.Roots = append(m.Roots, root)
	if m.Publisher != nil {
		return m.Publisher
	}
	return publish.NewMockPublisher(root)
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			PublisherFactory: &MockPublisherFactory{},
			Executor:         &executor.MockExecutor{},
			StdinReader:      input.NewStringReader("y\n"),
			Stdin:            strings.NewReader(""),
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithPublisher makes every created publisher pub
func (b *MockDependenciesBuilder) WithPublisher(pub publish.Publisher) *MockDependenciesBuilder {
	b.deps.PublisherFactory = &MockPublisherFactory{Publisher: pub}
	return b
}

// WithPublisherFactory sets a custom publisher factory
func (b *MockDependenciesBuilder) WithPublisherFactory(factory PublisherFactory) *MockDependenciesBuilder {
	b.deps.PublisherFactory = factory
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithStdinInput sets the answers read by confirmation prompts
func (b *MockDependenciesBuilder) WithStdinInput(inputs ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(inputs...)
	return b
}

// WithStdinDocument sets the document read for the "-" site path
func (b *MockDependenciesBuilder) WithStdinDocument(r io.Reader) *MockDependenciesBuilder {
	b.deps.Stdin = r
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
