package jinja

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolalohinski/gonja/exec"
	"github.com/nikolalohinski/gonja/tokens"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

var (
	undefinedName = regexp.MustCompile(`Unable to evaluate name "([^"]+)"`)
	undefinedAttr = regexp.MustCompile(`Unable to evaluate (\S+): (?:attribute|item) \S+ not found`)
	lineRef       = regexp.MustCompile(`(?:\bline |\bLine[:=] ?)(\d+)`)
)

// Template is a parsed template, safe for concurrent rendering.
type Template struct {
	name string
	tpl  *exec.Template
}

// Parse compiles source. Syntax errors are reported as malformed template
// errors carrying the template name and line. A single trailing newline is
// dropped from the source, as Jinja2 does by default.
func Parse(name, source string) (*Template, error) {
	source = strings.TrimSuffix(source, "\n")
	tpl, err := environment().FromString(source)
	if err != nil {
		return nil, serrors.MalformedTemplate(name, lastLine(err.Error()), err.Error())
	}
	if line := openInlineIf(source); line > 0 {
		return nil, serrors.MalformedTemplate(name, line, "inline if without else: the implicit else is undefined")
	}
	return &Template{name: name, tpl: tpl}, nil
}

// openInlineIf returns the line of the first {{ a if b }} expression that
// has no else branch, or 0. The whole stream is drained so the lexer
// goroutine exits.
func openInlineIf(source string) int {
	var (
		inVar   bool
		pending *tokens.Token
		found   int
	)
	s := tokens.Lex(source)
	for !s.End() {
		tok := s.Next()
		switch tok.Type {
		case tokens.VariableBegin:
			inVar, pending = true, nil
		case tokens.VariableEnd:
			if pending != nil && found == 0 {
				found = pending.Line
			}
			inVar, pending = false, nil
		case tokens.Name:
			if !inVar {
				continue
			}
			switch tok.Val {
			case "if":
				pending = tok
			case "else":
				pending = nil
			}
		}
	}
	return found
}

// Name returns the name the template was parsed with.
func (t *Template) Name() string {
	return t.name
}

// Render evaluates the template against vars and returns the output.
// Nothing is returned on error.
func (t *Template) Render(vars map[string]any) (string, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	out, err := t.tpl.Execute(vars)
	if err != nil {
		return "", t.renderError(err)
	}
	return out, nil
}

// Execute renders into w. Output is written only if rendering succeeds.
func (t *Template) Execute(w io.Writer, vars map[string]any) error {
	out, err := t.Render(vars)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// renderError maps a gonja execution error to a settings error. Strict
// undefined failures become missing variable errors.
func (t *Template) renderError(err error) error {
	msg := err.Error()
	line := lastLine(msg)
	if m := undefinedAttr.FindStringSubmatch(msg); m != nil {
		return serrors.MissingVariable(t.name, line, m[1])
	}
	if m := undefinedName.FindStringSubmatch(msg); m != nil {
		return serrors.MissingVariable(t.name, line, m[1])
	}
	return serrors.MalformedTemplate(t.name, line, strings.TrimPrefix(msg, "Unable to Execute template: "))
}

// lastLine returns the innermost line number gonja reported, or 0.
func lastLine(msg string) int {
	matches := lineRef.FindAllStringSubmatch(msg, -1)
	if len(matches) == 0 {
		return 0
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0
	}
	return n
}

// Render parses and renders source in one step.
func Render(name, source string, vars map[string]any) (string, error) {
	tmpl, err := Parse(name, source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(vars)
}
