// Package template provides plan templates for common kinds of work.
// Templates pre-fill the steps, body and initial status of a new plan.
package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DirName is the workspace directory, under .planbook, holding custom templates.
const DirName = "templates"

const ext = ".yaml"

//go:embed templates/*.yaml
var builtinFS embed.FS

// ErrNotFound is returned for an unknown template name.
var ErrNotFound = errors.New("template not found")

// Template pre-fills a new plan.
type Template struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status,omitempty"`
	Body        string   `yaml:"body,omitempty"`
	Steps       []string `yaml:"steps,omitempty"`

	// Source is "built-in" or the file the template was read from.
	Source string `yaml:"-"`
}

// BuiltInTemplates returns all built-in template names.
func BuiltInTemplates() []string {
	return []string{"bug-fix", "feature", "refactor", "docs", "test", "chore"}
}

// Library resolves templates from a workspace directory first and the
// built-in set second.
type Library struct {
	dir string
}

// NewLibrary returns a library reading custom templates from dir. An empty dir
// means built-ins only.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the directory custom templates are read from.
func (l *Library) Dir() string {
	return l.dir
}

// Load returns the named template. A workspace file shadows a built-in of the
// same name.
func (l *Library) Load(name string) (*Template, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ext)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if l.dir != "" {
		file := filepath.Join(l.dir, name+ext)
		data, err := os.ReadFile(file)
		if err == nil {
			return parse(data, name, file)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}

	return LoadBuiltIn(name)
}

// List returns every available template sorted by name.
func (l *Library) List() ([]*Template, error) {
	byName := make(map[string]*Template)
	for _, name := range BuiltInTemplates() {
		tpl, err := LoadBuiltIn(name)
		if err != nil {
			return nil, err
		}
		byName[name] = tpl
	}

	if l.dir != "" {
		matches, err := doublestar.Glob(os.DirFS(l.dir), "*"+ext)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scan templates: %w", err)
		}
		for _, m := range matches {
			name := strings.TrimSuffix(m, ext)
			tpl, err := l.Load(name)
			if err != nil {
				return nil, err
			}
			byName[name] = tpl
		}
	}

	out := make([]*Template, 0, len(byName))
	for _, tpl := range byName {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LoadBuiltIn loads a built-in template by name.
func LoadBuiltIn(name string) (*Template, error) {
	data, err := builtinFS.ReadFile(path.Join("templates", name+ext))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return parse(data, name, "built-in")
}

func parse(data []byte, name, source string) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	// The file name wins over a mismatched name field.
	tpl.Name = name
	tpl.Body = strings.TrimRight(tpl.Body, "\n")
	tpl.Source = source
	return &tpl, nil
}

// MergeSteps returns the template steps followed by extra.
func (t *Template) MergeSteps(extra []string) []string {
	out := make([]string, 0, len(t.Steps)+len(extra))
	out = append(out, t.Steps...)
	return append(out, extra...)
}

// GetDescription returns a one-line summary of what the template does.
func (t *Template) GetDescription() string {
	desc := t.Description
	if desc == "" {
		desc = "No description available"
	}

	var details []string
	if n := len(t.Steps); n > 0 {
		details = append(details, fmt.Sprintf("%d steps", n))
	}
	if t.Status != "" {
		details = append(details, "starts "+t.Status)
	}
	if len(details) > 0 {
		return fmt.Sprintf("%s (%s)", desc, strings.Join(details, ", "))
	}
	return desc
}
