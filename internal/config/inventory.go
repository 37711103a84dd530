package config

import (
	"fmt"
	"net/url"
)

// Inventory holds the servers of one environment
type Inventory struct {
	BaseURL           string   `yaml:"base_url"`
	Database          Database `yaml:"database"`
	MemcacheServers   []string `yaml:"memcache_servers,omitempty"`
	VarnishServers    []string `yaml:"varnish_servers,omitempty"`
	VarnishControl    string   `yaml:"varnish_control,omitempty"`
	VarnishControlKey string   `yaml:"varnish_control_key,omitempty"`
}

// Database is the replication topology sites connect to
type Database struct {
	Master string   `yaml:"master"`
	Port   int      `yaml:"port"`
	Slaves []string `yaml:"slaves,omitempty"`
}

const defaultDatabasePort = 3306

// LocalInventory returns the inventory of a local development stack
func LocalInventory() *Inventory {
	return &Inventory{
		BaseURL: "https://express.local",
		Database: Database{
			Master: "localhost",
			Port:   defaultDatabasePort,
		},
		MemcacheServers: []string{"localhost:11211"},
		VarnishServers:  []string{"localhost"},
		VarnishControl:  "localhost:6082",
	}
}

// Domain returns the host part of the base URL
func (inv *Inventory) Domain() string {
	u, err := url.Parse(inv.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Validate checks the inventory for missing or malformed values
func (inv *Inventory) Validate() error {
	u, err := url.Parse(inv.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", inv.BaseURL)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("base_url %q must not have a path", inv.BaseURL)
	}
	if inv.Database.Master == "" {
		return fmt.Errorf("database master is required")
	}
	if inv.Database.Port < 1 || inv.Database.Port > 65535 {
		return fmt.Errorf("database port %d out of range", inv.Database.Port)
	}
	if ch, bad := phpUnsafeChar(inv.VarnishControlKey); bad {
		return fmt.Errorf("varnish_control_key must not contain %s", ch)
	}
	return nil
}
