// Package site loads and validates site records.
package site

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

// Site represents a site record from the inventory
type Site struct {
	ID         string   `json:"id"`
	SID        string   `json:"sid"`
	Path       *string  `json:"path,omitempty"`
	Pool       string   `json:"pool"`
	Status     string   `json:"status"`
	Type       string   `json:"type"`
	Profile    string   `json:"profile"`
	Statistics string   `json:"statistics,omitempty"`
	DBPassword string   `json:"db_password"`
	Settings   Settings `json:"settings"`
}

// Settings holds per-site values written into the settings files
type Settings struct {
	PageCacheMaximumAge        *int   `json:"page_cache_maximum_age,omitempty"`
	SiteimproveSite            *int   `json:"siteimprove_site,omitempty"`
	SiteimproveGroup           *int   `json:"siteimprove_group,omitempty"`
	CSECreator                 string `json:"cse_creator,omitempty"`
	CSEID                      string `json:"cse_id,omitempty"`
	GoogleTagClientContainerID string `json:"google_tag_client_container_id,omitempty"`
}

// Status constants
const (
	StatusPending    = "pending"
	StatusAvailable  = "available"
	StatusInstalling = "installing"
	StatusInstalled  = "installed"
	StatusLaunching  = "launching"
	StatusLaunched   = "launched"
	StatusLocked     = "locked"
	StatusTakeDown   = "take_down"
	StatusDown       = "down"
	StatusRestore    = "restore"
)

// TypeExpress is the default site type
const TypeExpress = "express"

// PoolHomepage is the pool serving the site mounted at the domain root
const PoolHomepage = "poolb-homepage"

// DefaultPageCacheMaximumAge is used when a site does not set one
const DefaultPageCacheMaximumAge = 10800

// IsLaunched reports whether the site is served at its own path
func (s *Site) IsLaunched() bool {
	return s.Status == StatusLaunched || s.Status == StatusLaunching
}

// PageCacheMaximumAge returns the configured value or the default
func (s *Site) PageCacheMaximumAge() int {
	if s.Settings.PageCacheMaximumAge != nil {
		return *s.Settings.PageCacheMaximumAge
	}
	return DefaultPageCacheMaximumAge
}

//go:embed schema/site.schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/ksyq12/sitesettings/site.schema.json"

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Parse decodes a YAML or JSON site document, validates it against the site
// schema and applies defaults.
func Parse(content []byte) (*Site, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeInternal, "failed to load site schema", err)
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeValidation, "invalid site document", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeValidation, "invalid site document", err)
	}
	if document == nil {
		return nil, serrors.Validation("empty site document")
	}

	if err := sch.Validate(document); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeValidation, "site failed schema validation", flattenValidation(err))
	}

	var s Site
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeValidation, "invalid site document", err)
	}
	if s.Type == "" {
		s.Type = TypeExpress
	}
	return &s, nil
}

// flattenValidation turns a schema validation error tree into one line per
// failing location.
func flattenValidation(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
