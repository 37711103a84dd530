package template

import (
	"embed"
	"io/fs"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

//go:embed osr/*.j2
var osrTemplates embed.FS

//go:embed wwwng/*.j2
var wwwngTemplates embed.FS

// getTemplateFS returns the template directory for the given generation
func getTemplateFS(generation string) (fs.FS, error) {
	switch generation {
	case GenerationOSR:
		return fs.Sub(osrTemplates, GenerationOSR)
	case GenerationWWWNG:
		return fs.Sub(wwwngTemplates, GenerationWWWNG)
	default:
		return nil, serrors.NotFound("template generation", generation)
	}
}
