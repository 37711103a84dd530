package template

import (
	"fmt"
	"io/fs"
	"sync"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
	"github.com/ksyq12/sitesettings/internal/jinja"
)

// Template generations
const (
	GenerationOSR   = "osr"
	GenerationWWWNG = "wwwng"
)

// Settings file names, in the order Drupal includes them.
const (
	FileLocalPre  = "settings.local_pre.php"
	FileSettings  = "settings.php"
	FileLocalPost = "settings.local_post.php"
)

const templateExt = ".j2"

// Rendered is one rendered settings file
type Rendered struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

var cache sync.Map // "generation/name" -> *jinja.Template

// Generations returns all available template generations
func Generations() []string {
	return []string{GenerationOSR, GenerationWWWNG}
}

// ValidGeneration reports whether generation names an embedded template set
func ValidGeneration(generation string) bool {
	for _, g := range Generations() {
		if g == generation {
			return true
		}
	}
	return false
}

// Files returns the settings file names in include order
func Files() []string {
	return []string{FileLocalPre, FileSettings, FileLocalPost}
}

// Source returns the raw template text for a settings file
func Source(generation, name string) (string, error) {
	tfs, err := getTemplateFS(generation)
	if err != nil {
		return "", err
	}
	content, err := fs.ReadFile(tfs, name+templateExt)
	if err != nil {
		return "", serrors.NotFound("template", fmt.Sprintf("%s/%s", generation, name))
	}
	return string(content), nil
}

// Load returns the parsed template for a settings file. Parsed templates are
// cached and shared between renders.
func Load(generation, name string) (*jinja.Template, error) {
	key := generation + "/" + name
	if t, ok := cache.Load(key); ok {
		return t.(*jinja.Template), nil
	}

	source, err := Source(generation, name)
	if err != nil {
		return nil, err
	}
	tmpl, err := jinja.Parse(name+templateExt, source)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(key, tmpl)
	return actual.(*jinja.Template), nil
}

// Render renders one settings file of a generation against vars
func Render(generation, name string, vars map[string]any) (string, error) {
	tmpl, err := Load(generation, name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(vars)
}

// RenderAll renders every settings file of a generation in include order.
// The first failure aborts; no partial result is returned.
func RenderAll(generation string, vars map[string]any) ([]Rendered, error) {
	files := Files()
	out := make([]Rendered, 0, len(files))
	for _, name := range files {
		content, err := Render(generation, name, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, Rendered{Name: name, Content: content})
	}
	return out, nil
}

// Check parses every template of every generation
func Check() error {
	for _, g := range Generations() {
		for _, name := range Files() {
			if _, err := Load(g, name); err != nil {
				return fmt.Errorf("%s: %w", g, err)
			}
		}
	}
	return nil
}
