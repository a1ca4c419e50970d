// Package registry provides the static catalog of theme definitions.
package registry

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/opencode-ai/themekit/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultThemeID is the theme used when no valid selection exists.
const DefaultThemeID = "neutral-pro"

// Registry errors.
var (
	ErrEmptyRegistry  = errors.New("registry requires at least one theme")
	ErrDuplicateTheme = errors.New("duplicate theme id")
	ErrInvalidTheme   = errors.New("invalid theme definition")
	ErrUnknownDefault = errors.New("default theme is not registered")
)

//go:embed builtin/themes.yaml
var builtinFS embed.FS

type catalogFile struct {
	Themes []models.ThemeDefinition `yaml:"themes"`
}

// Registry is an immutable, ordered set of theme definitions.
type Registry struct {
	defaultID string
	order     []string
	themes    map[string]models.ThemeDefinition
}

// New validates defs and builds a registry. The first definition is the
// default unless defaultID names another registered theme.
func New(defaultID string, defs ...models.ThemeDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		order:  make([]string, 0, len(defs)),
		themes: make(map[string]models.ThemeDefinition, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidTheme, def.ID, err)
		}
		if _, exists := r.themes[def.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTheme, def.ID)
		}
		r.themes[def.ID] = def.Clone()
		r.order = append(r.order, def.ID)
	}

	if defaultID == "" {
		defaultID = r.order[0]
	}
	if _, ok := r.themes[defaultID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDefault, defaultID)
	}
	r.defaultID = defaultID

	return r, nil
}

// Parse decodes a YAML catalog into definitions, preserving file order.
func Parse(data []byte) ([]models.ThemeDefinition, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse theme catalog: %w", err)
	}
	return catalog.Themes, nil
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the catalog compiled into the binary.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		data, err := builtinFS.ReadFile("builtin/themes.yaml")
		if err != nil {
			panic(fmt.Sprintf("read builtin themes: %v", err))
		}
		defs, err := Parse(data)
		if err != nil {
			panic(err)
		}
		reg, err := New(DefaultThemeID, defs...)
		if err != nil {
			panic(fmt.Sprintf("builtin themes: %v", err))
		}
		builtin = reg
	})
	return builtin
}

// GetThemeConfig returns the definition for id, or the default definition
// when id is unknown.
func (r *Registry) GetThemeConfig(id string) models.ThemeDefinition {
	if def, ok := r.themes[id]; ok {
		return def.Clone()
	}
	return r.themes[r.defaultID].Clone()
}

// GetAllThemes returns every definition in registration order.
func (r *Registry) GetAllThemes() []models.ThemeDefinition {
	out := make([]models.ThemeDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.themes[id].Clone())
	}
	return out
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.themes[id]
	return ok
}

// DefaultID returns the fallback theme id.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Next returns the id registered after id, wrapping around.
func (r *Registry) Next(id string) string {
	for i, candidate := range r.order {
		if candidate == id {
			return r.order[(i+1)%len(r.order)]
		}
	}
	return r.defaultID
}
