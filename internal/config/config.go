package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/platform"
	"github.com/ksyq12/sitesettings/internal/template"
)

// Config represents the application configuration
type Config struct {
	Environment  string                `yaml:"environment"`
	Generation   string                `yaml:"generation"`
	OutputRoot   string                `yaml:"output_root"`
	FilesRoot    string                `yaml:"files_root"`
	Atlas        Atlas                 `yaml:"atlas"`
	SMTP         SMTP                  `yaml:"smtp"`
	SAMLPassword string                `yaml:"saml_password,omitempty"`
	Lint         bool                  `yaml:"lint"`
	PHPBinary    string                `yaml:"php_binary"`
	Environments map[string]*Inventory `yaml:"environments"`
}

// Atlas holds the inventory API credentials written into every site
type Atlas struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	LoggingURL string `yaml:"logging_url,omitempty"`
}

// SMTP holds outgoing mail settings
type SMTP struct {
	ClientHostname string `yaml:"client_hostname"`
	Password       string `yaml:"password,omitempty"`
}

// configDir is the default config directory
const configDir = ".config/sitesettings"
const configFile = "config.yaml"

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Environment: string(EnvLocal),
		Generation:  template.GenerationOSR,
		OutputRoot:  "/data/code",
		FilesRoot:   "/data/files",
		Atlas: Atlas{
			URL: "https://inventory.local/atlas",
		},
		SMTP: SMTP{
			ClientHostname: "express.local",
		},
		PHPBinary: platform.DetectPHP(),
		Environments: map[string]*Inventory{
			string(EnvLocal): LocalInventory(),
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeConfig, "failed to read config", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeConfig, "failed to parse config", err)
	}

	if cfg.Environments == nil {
		cfg.Environments = make(map[string]*Inventory)
	}
	if err := cfg.canonicalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// canonicalize rewrites environment names and inventory keys to their
// canonical form.
func (c *Config) canonicalize() error {
	if env, err := ParseEnvironment(c.Environment); err == nil {
		c.Environment = env.String()
	}

	envs := make(map[string]*Inventory, len(c.Environments))
	for name, inv := range c.Environments {
		env, err := ParseEnvironment(name)
		if err != nil {
			return serrors.Wrap(serrors.ErrCodeConfig, "invalid environments entry", err)
		}
		if _, dup := envs[env.String()]; dup {
			return serrors.Wrap(serrors.ErrCodeConfig, "invalid environments entry",
				fmt.Errorf("environment %s defined more than once", env))
		}
		if inv == nil {
			inv = &Inventory{}
		}
		envs[env.String()] = inv
	}
	c.Environments = envs
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials live in this file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Env returns the selected environment
func (c *Config) Env() (Environment, error) {
	env, err := ParseEnvironment(c.Environment)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrCodeConfig, "invalid environment", err)
	}
	return env, nil
}

// Inventory returns the server inventory of env
func (c *Config) Inventory(env Environment) (*Inventory, error) {
	inv, exists := c.Environments[env.String()]
	if !exists {
		return nil, serrors.NotFound("inventory for environment", env.String())
	}
	return inv, nil
}

// ListEnvironments returns the environments that have an inventory, sorted
func (c *Config) ListEnvironments() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration before any site is rendered
func (c *Config) Validate() error {
	env, err := c.Env()
	if err != nil {
		return err
	}
	if !template.ValidGeneration(c.Generation) {
		return configError("unknown generation %q (valid: %s)", c.Generation, strings.Join(template.Generations(), ", "))
	}
	if err := validateRoot("output_root", c.OutputRoot); err != nil {
		return err
	}
	if err := validateRoot("files_root", c.FilesRoot); err != nil {
		return err
	}
	if c.Atlas.URL == "" {
		return configError("atlas.url is required")
	}
	if strings.HasSuffix(c.Atlas.URL, "/") {
		return configError("atlas.url %q should not have a trailing slash", c.Atlas.URL)
	}
	for _, secret := range []struct{ name, value string }{
		{"atlas.username", c.Atlas.Username},
		{"atlas.password", c.Atlas.Password},
		{"smtp.password", c.SMTP.Password},
		{"saml_password", c.SAMLPassword},
	} {
		if ch, bad := phpUnsafeChar(secret.value); bad {
			return configError("%s must not contain %s", secret.name, ch)
		}
	}
	if c.Lint && c.PHPBinary == "" {
		return configError("php_binary is required when lint is enabled")
	}

	inv, err := c.Inventory(env)
	if err != nil {
		return err
	}
	if err := inv.Validate(); err != nil {
		return serrors.Wrap(serrors.ErrCodeConfig, fmt.Sprintf("invalid inventory for %s", env), err)
	}
	return nil
}

func validateRoot(name, path string) error {
	if !strings.HasPrefix(path, "/") {
		return configError("%s %q should begin with a slash", name, path)
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return configError("%s %q should not have a trailing slash", name, path)
	}
	return nil
}

// phpUnsafe are the characters that end or interpolate the PHP string
// literals credentials are rendered into.
const phpUnsafe = `'"\$`

// phpUnsafeChar reports the first character of value that cannot appear in
// a rendered PHP string literal. The value itself is never echoed.
func phpUnsafeChar(value string) (string, bool) {
	i := strings.IndexAny(value, phpUnsafe)
	if i < 0 {
		return "", false
	}
	return strconv.Quote(value[i : i+1]), true
}

func configError(format string, args ...any) error {
	return &serrors.SettingsError{
		Code:    serrors.ErrCodeConfig,
		Message: fmt.Sprintf(format, args...),
	}
}
