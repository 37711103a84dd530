package config

import (
	"fmt"
	"strings"
)

// Environment is a deployment environment. The set is closed; aliases are
// resolved once by ParseEnvironment.
type Environment string

// Environment constants
const (
	EnvLocal Environment = "local"
	EnvDev   Environment = "dev"
	EnvTest  Environment = "test"
	EnvProd  Environment = "prod"
)

var environmentAliases = map[string]Environment{
	"development":   EnvDev,
	"production":    EnvProd,
	"express_local": EnvLocal,
}

// ValidEnvironments returns all environments in promotion order
func ValidEnvironments() []Environment {
	return []Environment{EnvLocal, EnvDev, EnvTest, EnvProd}
}

// ParseEnvironment resolves an environment name or alias
func ParseEnvironment(s string) (Environment, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, env := range ValidEnvironments() {
		if name == string(env) {
			return env, nil
		}
	}
	if env, ok := environmentAliases[name]; ok {
		return env, nil
	}
	return "", fmt.Errorf("unknown environment %q (valid: local, dev, test, prod)", s)
}

// IsValidEnvironment checks if the given name or alias is an environment
func IsValidEnvironment(s string) bool {
	_, err := ParseEnvironment(s)
	return err == nil
}

// String returns the canonical environment name
func (e Environment) String() string {
	return string(e)
}

// IsLocal reports whether e is the local development environment
func (e Environment) IsLocal() bool {
	return e == EnvLocal
}
