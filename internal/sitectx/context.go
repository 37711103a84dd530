// Package sitectx builds the render context of one site: the typed set of
// values the settings templates are rendered against.
//
// A Context is built once per provisioning event from a site record and the
// configured server inventory, then handed to the renderer as a plain
// mapping. Optional values are left out of the mapping when unset, so a
// template that prints one without testing it first fails loudly instead of
// producing an empty string.
package sitectx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ksyq12/sitesettings/internal/config"
	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/site"
)

// Context holds every value a settings template may reference
type Context struct {
	Profile    string
	SID        string
	DBPassword string

	AtlasID           string
	AtlasURL          string
	AtlasUsername     string
	AtlasPassword     string
	AtlasStatus       string
	AtlasStatisticsID string
	AtlasLoggingURL   string

	Path     string
	Pool     string
	PoolFull string
	Status   string
	SiteType string

	Environment     config.Environment
	Database        config.Database
	MemcacheServers []string
	ReverseProxies  []string

	VarnishControl    string
	VarnishControlKey string

	PageCacheMaximumAge int
	TmpPath             string
	TmpFilesDirectory   string

	SMTPClientHostname string
	BaseURL            string
	Domain             string

	// Optional values
	SAMLPassword               string
	SMTPPassword               string
	SiteimproveSite            *int
	SiteimproveGroup           *int
	GoogleCSECSX               string
	GoogleTagClientContainerID string
}

// Build resolves the render context of s for the configured environment
func Build(s *site.Site, cfg *config.Config) (Context, error) {
	if s == nil {
		return Context{}, serrors.Validation("site record is required")
	}
	env, err := cfg.Env()
	if err != nil {
		return Context{}, err
	}
	inv, err := cfg.Inventory(env)
	if err != nil {
		return Context{}, err
	}

	ctx := Context{
		Profile:    s.Profile,
		SID:        s.SID,
		DBPassword: s.DBPassword,

		AtlasID:           s.ID,
		AtlasURL:          strings.TrimSuffix(cfg.Atlas.URL, "/") + "/",
		AtlasUsername:     cfg.Atlas.Username,
		AtlasPassword:     cfg.Atlas.Password,
		AtlasStatus:       s.Status,
		AtlasStatisticsID: s.Statistics,
		AtlasLoggingURL:   cfg.Atlas.LoggingURL,

		Path:     sitePath(s),
		Pool:     s.Pool,
		PoolFull: s.Pool,
		Status:   s.Status,
		SiteType: s.Type,

		Environment: env,
		Database: config.Database{
			Master: inv.Database.Master,
			Port:   inv.Database.Port,
			Slaves: append([]string{}, inv.Database.Slaves...),
		},
		MemcacheServers: append([]string{}, inv.MemcacheServers...),
		ReverseProxies:  append([]string{}, inv.VarnishServers...),

		VarnishControl:    inv.VarnishControl,
		VarnishControlKey: inv.VarnishControlKey,

		PageCacheMaximumAge: s.PageCacheMaximumAge(),
		TmpPath:             "/tmp/" + s.SID,
		TmpFilesDirectory:   fmt.Sprintf("%s/%s/tmp", cfg.FilesRoot, s.SID),

		SMTPClientHostname: cfg.SMTP.ClientHostname,
		BaseURL:            strings.TrimSuffix(inv.BaseURL, "/"),
		Domain:             inv.Domain(),

		SAMLPassword:               cfg.SAMLPassword,
		SMTPPassword:               cfg.SMTP.Password,
		SiteimproveSite:            s.Settings.SiteimproveSite,
		SiteimproveGroup:           s.Settings.SiteimproveGroup,
		GoogleTagClientContainerID: s.Settings.GoogleTagClientContainerID,
	}
	if s.Settings.CSECreator != "" && s.Settings.CSEID != "" {
		ctx.GoogleCSECSX = s.Settings.CSECreator + ":" + s.Settings.CSEID
	}
	return ctx, nil
}

// sitePath is the URL path a site is served at. The homepage pool serves
// the domain root.
func sitePath(s *site.Site) string {
	switch {
	case s.Pool == site.PoolHomepage:
		return ""
	case s.Path != nil:
		return *s.Path
	default:
		return s.SID
	}
}

// Vars returns the template mapping. Each call returns a fresh map.
func (c Context) Vars() map[string]any {
	vars := map[string]any{
		"profile":             c.Profile,
		"sid":                 c.SID,
		"pw":                  c.DBPassword,
		"atlas_id":            c.AtlasID,
		"atlas_url":           c.AtlasURL,
		"atlas_username":      c.AtlasUsername,
		"atlas_password":      c.AtlasPassword,
		"atlas_status":        c.AtlasStatus,
		"atlas_statistics_id": c.AtlasStatisticsID,
		"path":                c.Path,
		"pool":                c.Pool,
		"pool_full":           c.PoolFull,
		"status":              c.Status,
		"site_type":           c.SiteType,
		"environment":         c.Environment.String(),
		"database_servers": map[string]any{
			"master": c.Database.Master,
			"port":   c.Database.Port,
			"slaves": append([]string{}, c.Database.Slaves...),
		},
		"memcache_servers":       append([]string{}, c.MemcacheServers...),
		"reverse_proxies":        append([]string{}, c.ReverseProxies...),
		"varnish_control":        c.VarnishControl,
		"varnish_control_key":    c.VarnishControlKey,
		"page_cache_maximum_age": c.PageCacheMaximumAge,
		"tmp_path":               c.TmpPath,
		"tmp_files_directory":    c.TmpFilesDirectory,
		"smtp_client_hostname":   c.SMTPClientHostname,
		"base_url":               c.BaseURL,
		"domain":                 c.Domain,
	}

	setString(vars, "atlas_logging_url", c.AtlasLoggingURL)
	setString(vars, "saml_pw", c.SAMLPassword)
	setString(vars, "smtp_password", c.SMTPPassword)
	setString(vars, "google_cse_csx", c.GoogleCSECSX)
	setString(vars, "google_tag_client_container_id", c.GoogleTagClientContainerID)
	if c.SiteimproveSite != nil {
		vars["siteimprove_site"] = strconv.Itoa(*c.SiteimproveSite)
	}
	if c.SiteimproveGroup != nil {
		vars["siteimprove_group"] = strconv.Itoa(*c.SiteimproveGroup)
	}
	return vars
}

func setString(vars map[string]any, key, value string) {
	if value != "" {
		vars[key] = value
	}
}

// secretKeys are masked by Redacted
var secretKeys = []string{"pw", "saml_pw", "atlas_password", "smtp_password", "varnish_control_key"}

const redacted = "********"

// Redacted returns the template mapping with credentials masked, for
// display and logs.
func (c Context) Redacted() map[string]any {
	vars := c.Vars()
	for _, k := range secretKeys {
		if v, ok := vars[k].(string); ok && v != "" {
			vars[k] = redacted
		}
	}
	return vars
}
