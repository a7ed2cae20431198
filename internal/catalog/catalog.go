// Package catalog holds the fixed set of procedure types the wizard offers,
// their starter templates and the static deployment checklist.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultCatalog []byte

// Template is a starter prompt for a procedure type.
type Template struct {
	Title  string `yaml:"title" json:"title"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

// Procedure is one selectable option on the first step.
type Procedure struct {
	ID          string     `yaml:"id"`
	Label       string     `yaml:"label"`
	Description string     `yaml:"description"`
	Templates   []Template `yaml:"templates"`
}

// Catalog is the option set plus the review checklist.
type Catalog struct {
	Procedures []Procedure `yaml:"procedures"`
	Checklist  []string    `yaml:"checklist"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(c.Procedures) == 0 {
		return nil, fmt.Errorf("catalog has no procedures")
	}
	seen := make(map[string]bool, len(c.Procedures))
	for i, p := range c.Procedures {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("procedure %d has no id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate procedure id %q", id)
		}
		seen[id] = true
		c.Procedures[i].ID = id
	}
	return &c, nil
}

// Find returns the procedure with the given id.
func (c *Catalog) Find(id string) (Procedure, bool) {
	for _, p := range c.Procedures {
		if p.ID == id {
			return p, true
		}
	}
	return Procedure{}, false
}

// Label returns the display label for id, or id itself when it is unknown.
func (c *Catalog) Label(id string) string {
	if p, ok := c.Find(id); ok && p.Label != "" {
		return p.Label
	}
	return id
}

// Templates returns the starter templates for id. Unknown ids have none.
func (c *Catalog) Templates(id string) []Template {
	p, _ := c.Find(id)
	return p.Templates
}

// IDs returns procedure ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Procedures))
	for i, p := range c.Procedures {
		ids[i] = p.ID
	}
	return ids
}
