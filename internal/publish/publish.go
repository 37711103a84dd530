package publish

import (
	"context"
	"regexp"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

// Publisher is the interface that settings file destinations must implement
type Publisher interface {
	// Name returns the publisher name
	Name() string

	// Dir returns the directory the settings files of sid are written to
	Dir(sid string) string

	// Publish writes files for sid. Either every file is replaced or none is.
	Publish(ctx context.Context, sid string, files []File) ([]string, error)

	// Remove deletes the settings files of sid
	Remove(sid string) error

	// List returns every site with at least one settings file
	List() ([]Entry, error)

	// Exists checks if settings.php has been published for sid
	Exists(sid string) (bool, error)
}

// File is one rendered settings file
type File struct {
	Name    string
	Content []byte
}

// Entry describes the published state of one site
type Entry struct {
	SID   string   `json:"sid"`
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

var sidPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateSID rejects sids that cannot safely be used as a path component.
func ValidateSID(sid string) error {
	if !sidPattern.MatchString(sid) {
		return serrors.Validation("invalid sid " + sid + ": must match " + sidPattern.String())
	}
	return nil
}
