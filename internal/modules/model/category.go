package model

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryConfig parameterizes the editor engine for one content category.
// All admin screens run the same flow; only these knobs differ.
type CategoryConfig struct {
	Slug  string `yaml:"slug"`
	Table string `yaml:"table"`
	// Translatable fields beyond title/description, stored in
	// LocaleRecord.Extra.
	TranslatableFields []string `yaml:"translatable_fields"`
	// Allowed subcategory values. Empty means the category carries no
	// taxonomy and subcategory must stay unset.
	Taxonomy       []string `yaml:"taxonomy"`
	MaxImages      int      `yaml:"max_images"`
	RequiresImage  bool     `yaml:"requires_image"`
	Orderable      bool     `yaml:"orderable"`
	Bookable       bool     `yaml:"bookable"`
	InsertFirst    bool     `yaml:"insert_first"`
	DefaultVisible bool     `yaml:"default_visible"`
}

func (c CategoryConfig) HasTaxonomy() bool { return len(c.Taxonomy) > 0 }

func (c CategoryConfig) AllowsSubcategory(s string) bool {
	for _, t := range c.Taxonomy {
		if t == s {
			return true
		}
	}
	return false
}

// Registry holds every configured category in declaration order.
type Registry struct {
	bySlug map[string]CategoryConfig
	order  []string
}

type registryFile struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// LoadRegistry parses the embedded category registry.
func LoadRegistry() (*Registry, error) {
	return ParseRegistry(categoriesYAML)
}

func ParseRegistry(b []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse category registry: %w", err)
	}
	r := &Registry{bySlug: make(map[string]CategoryConfig, len(f.Categories))}
	for _, c := range f.Categories {
		if c.Slug == "" || c.Table == "" {
			return nil, fmt.Errorf("category entry missing slug or table")
		}
		if _, dup := r.bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate category slug %q", c.Slug)
		}
		if c.MaxImages <= 0 {
			c.MaxImages = 1
		}
		r.bySlug[c.Slug] = c
		r.order = append(r.order, c.Slug)
	}
	return r, nil
}

func (r *Registry) Get(slug string) (CategoryConfig, bool) {
	c, ok := r.bySlug[slug]
	return c, ok
}

func (r *Registry) All() []CategoryConfig {
	out := make([]CategoryConfig, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}
